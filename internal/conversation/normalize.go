// Package conversation implements the dialog state machine and the
// Portuguese date/time/weekday normalizers it relies on.
package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/memorae-app/memorae/internal/speech"
)

// monthsPt maps folded month names to calendar months.
var monthsPt = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

var monthAlternation = "janeiro|fevereiro|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro"

// "dia 4 de dezembro", "4 de dezembro", "4 dezembro" — accents already
// folded away before matching.
var dayMonthRe = regexp.MustCompile(`(?:dia\s*)?(\d{1,2})\s*(?:de\s+)?(` + monthAlternation + `)\b`)

// NormalizeDate turns a spoken Portuguese date into YYYY-MM-DD, relative
// to now. If the day/month has already passed this year the date rolls
// over to next year. Returns false when the text carries no usable date
// or names an impossible calendar day.
func NormalizeDate(text string, now time.Time) (string, bool) {
	folded := speech.Fold(strings.TrimSpace(text))
	if folded == "" {
		return "", false
	}

	if m := dayMonthRe.FindStringSubmatch(folded); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthsPt[m[2]]

		date := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
		// time.Date normalizes overflow ("31 de fevereiro" becomes March);
		// a shifted day or month means the spoken date never existed.
		if date.Day() != day || date.Month() != month {
			return "", false
		}

		if date.Before(now) && month <= now.Month() {
			date = time.Date(now.Year()+1, month, day, 0, 0, 0, 0, now.Location())
			if date.Day() != day || date.Month() != month {
				return "", false
			}
		}
		return date.Format("2006-01-02"), true
	}

	if strings.Contains(folded, "hoje") {
		return now.Format("2006-01-02"), true
	}
	if strings.Contains(folded, "amanha") {
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	}

	return "", false
}

// ContainsDateWords reports whether the text names a date-like expression
// (month name, hoje, amanhã). Used to reject date answers leaking into the
// time slot.
func ContainsDateWords(text string) bool {
	folded := speech.Fold(text)
	if strings.Contains(folded, "hoje") || strings.Contains(folded, "amanha") {
		return true
	}
	for name := range monthsPt {
		if strings.Contains(folded, name) {
			return true
		}
	}
	return false
}

// hourWords maps spoken hour numbers to values. Compound forms come first
// when scanning so "vinte e duas" is not read as "vinte".
var hourWords = []struct {
	word string
	val  int
}{
	{"vinte e tres", 23},
	{"vinte e duas", 22},
	{"vinte e dois", 22},
	{"vinte e uma", 21},
	{"vinte e um", 21},
	{"dezesseis", 16},
	{"dezessete", 17},
	{"dezoito", 18},
	{"dezenove", 19},
	{"meio-dia", 12},
	{"meio dia", 12},
	{"meia-noite", 0},
	{"meia noite", 0},
	{"quatorze", 14},
	{"catorze", 14},
	{"quinze", 15},
	{"treze", 13},
	{"vinte", 20},
	{"quatro", 4},
	{"cinco", 5},
	{"doze", 12},
	{"onze", 11},
	{"duas", 2},
	{"dois", 2},
	{"tres", 3},
	{"seis", 6},
	{"sete", 7},
	{"oito", 8},
	{"nove", 9},
	{"zero", 0},
	{"uma", 1},
	{"dez", 10},
	{"um", 1},
}

// A digit hour needs clock context ("8h30", "14:45", "20 horas", "8h");
// a bare number is only taken as the hour once nothing else claims it,
// otherwise the 45 in "oito e 45" would be read as the hour.
var digitClockRe = regexp.MustCompile(`\b(\d{1,2})(?:[:h](\d{1,2})|\s*h(?:oras?)?\b)`)
var bareDigitRe = regexp.MustCompile(`\b(\d{1,2})\b`)
var digitMinutesRe = regexp.MustCompile(`\be\s+(\d{1,2})\b`)

// NormalizeTime turns a spoken Portuguese time into HH:MM. Handles digits
// ("20 horas", "8h30") and number words ("oito horas", "vinte horas"),
// plus day-period markers: "da manhã" keeps 1–11 and maps hour 12 to 00,
// "da tarde"/"da noite" push 1–11 into the afternoon/evening.
func NormalizeTime(text string) (string, bool) {
	folded := speech.Fold(strings.TrimSpace(text))
	if folded == "" {
		return "", false
	}

	// Digits with clock context: "8h30", "14:45", "20 horas".
	if m := digitClockRe.FindStringSubmatchIndex(folded); m != nil {
		hour, _ := strconv.Atoi(folded[m[2]:m[3]])
		if m[4] >= 0 {
			minute, _ := strconv.Atoi(folded[m[4]:m[5]])
			return renderTime(hour, minute, folded), true
		}
		return renderTime(hour, parseMinutes(folded[m[1]:]), folded), true
	}

	// Word numbers: earliest occurrence wins, longest form first on ties.
	best := -1
	bestEnd := 0
	hour := 0
	for _, hw := range hourWords {
		idx := strings.Index(folded, hw.word)
		if idx < 0 {
			continue
		}
		if best == -1 || idx < best {
			best = idx
			bestEnd = idx + len(hw.word)
			hour = hw.val
		}
	}
	if best >= 0 {
		return renderTime(hour, parseMinutes(folded[bestEnd:]), folded), true
	}

	// Last resort: a bare number with no marker at all ("às 20").
	if m := bareDigitRe.FindStringSubmatchIndex(folded); m != nil {
		hour, _ := strconv.Atoi(folded[m[2]:m[3]])
		return renderTime(hour, parseMinutes(folded[m[1]:]), folded), true
	}
	return "", false
}

// parseMinutes reads a trailing minutes expression: "e trinta", "e meia",
// "e quinze", or "e 45".
func parseMinutes(rest string) int {
	switch {
	case strings.Contains(rest, "meia"):
		return 30
	case strings.Contains(rest, "trinta"):
		return 30
	case strings.Contains(rest, "quinze"):
		return 15
	}
	if m := digitMinutesRe.FindStringSubmatch(rest); m != nil {
		minute, _ := strconv.Atoi(m[1])
		return minute
	}
	return 0
}

// renderTime applies day-period inference and clamps to a valid clock.
func renderTime(hour, minute int, folded string) string {
	hasManha := strings.Contains(folded, "manha")
	hasTarde := strings.Contains(folded, "tarde")
	hasNoite := strings.Contains(folded, "noite")

	if hasManha {
		if hour == 12 {
			hour = 0
		}
	} else if hasTarde || hasNoite {
		if hour >= 1 && hour <= 11 {
			hour += 12
		}
	}
	hour = clamp(hour%24, 0, 23)
	minute = clamp(minute, 0, 59)
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// weekdaysPt maps folded weekday tokens (plain and -feira forms) to the
// English tokens the backend contract expects.
var weekdaysPt = map[string]string{
	"segunda":       "monday",
	"segunda-feira": "monday",
	"terca":         "tuesday",
	"terca-feira":   "tuesday",
	"quarta":        "wednesday",
	"quarta-feira":  "wednesday",
	"quinta":        "thursday",
	"quinta-feira":  "thursday",
	"sexta":         "friday",
	"sexta-feira":   "friday",
	"sabado":        "saturday",
	"domingo":       "sunday",
}

// NormalizeWeekdays extracts weekday tokens from spoken text: first
// occurrence order, no duplicates. Returns nil when no weekday is named.
func NormalizeWeekdays(text string) []string {
	folded := speech.Fold(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';'
	})

	var out []string
	seen := make(map[string]bool)
	for _, f := range fields {
		day, ok := weekdaysPt[strings.Trim(f, ".!?")]
		if !ok || seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, day)
	}
	return out
}
