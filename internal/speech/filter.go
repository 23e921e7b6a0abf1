package speech

import (
	"sort"
	"strings"
	"unicode"

	"github.com/memorae-app/memorae/internal/logger"
)

// phraseListening echoes back more than any other prompt: it plays right
// before the microphone opens. It gets its own salvage logic.
const phraseListening = "estou ouvindo"

// systemPhrases are prompts the recognizer sometimes picks up through
// microphone bleed. Stored pre-folded (lowercase, accent-stripped). Full
// prompt texts first, shorter fragments as a safety net; matching runs
// longest-first so a full echo never leaves a "genuine" remainder behind.
var systemPhrases = []string{
	"qual nome gostaria de dar ao lembrete",
	"que dia gostaria de ser lembrado",
	"que horas gostaria de ser lembrado",
	"este e um lembrete que gostaria de repetir",
	"quais dias da semana deseja repetir",
	"me diga o nome do lembrete que deseja editar",
	"me diga o nome do lembrete que deseja excluir",
	"bem-vindo ao sistema memorae",
	"por favor diga",
	"por favor, diga",
	"que dia gostaria",
	"que horas gostaria",
	"qual nome",
	"este e um lembrete",
	"quais dias da semana",
	"me diga o nome",
	"nao entendi",
	"bem-vindo",
	"por favor repita",
	"por favor, repita",
}

// Filter drops transcripts that are echoes of the system's own prompts.
// It errs toward keeping genuine user content: a transcript that merely
// starts or ends with a system phrase has the phrase stripped and the rest
// returned.
type Filter struct {
	log     *logger.Logger
	phrases [][]rune
}

// NewFilter creates a transcript filter with the built-in phrase list.
func NewFilter(log *logger.Logger) *Filter {
	f := &Filter{log: log}
	for _, p := range systemPhrases {
		f.phrases = append(f.phrases, []rune(p))
	}
	sort.Slice(f.phrases, func(i, j int) bool {
		return len(f.phrases[i]) > len(f.phrases[j])
	})
	return f
}

// Filter returns the cleaned transcript and true, or "" and false when the
// transcript is empty or pure echo. Returned content keeps the original
// casing and accents.
func (f *Filter) Filter(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	orig := []rune(text)
	folded := []rune(Fold(text))

	// "estou ouvindo": salvage content after the phrase, then before it.
	if idx := indexRunes(folded, []rune(phraseListening)); idx >= 0 {
		if after := trimFragment(orig[idx+len(phraseListening):]); genuine(after) {
			f.log.Debug("filter: salvaged after listening echo: %q", after)
			return after, true
		}
		if before := trimFragment(orig[:idx]); genuine(before) {
			f.log.Debug("filter: salvaged before listening echo: %q", before)
			return before, true
		}
		f.log.Debug("filter: dropped listening echo: %q", text)
		return "", false
	}

	for _, phrase := range f.phrases {
		if idxRunesEqual(folded, phrase) {
			f.log.Debug("filter: dropped system phrase echo: %q", text)
			return "", false
		}
		if hasPrefixRunes(folded, phrase) {
			extra := trimFragment(orig[len(phrase):])
			if genuine(extra) {
				f.log.Debug("filter: stripped system-phrase prefix, kept %q", extra)
				return extra, true
			}
			return "", false
		}
		if hasSuffixRunes(folded, phrase) {
			extra := trimFragment(orig[:len(folded)-len(phrase)])
			if genuine(extra) {
				f.log.Debug("filter: stripped system-phrase suffix, kept %q", extra)
				return extra, true
			}
			return "", false
		}
	}

	return text, true
}

// genuine reports whether a salvaged fragment carries real content rather
// than recognition crumbs. Anything of three characters or less is noise.
func genuine(s string) bool {
	return len([]rune(s)) > 2
}

// trimFragment removes surrounding whitespace and joining punctuation.
func trimFragment(rs []rune) string {
	return strings.Trim(string(rs), " ,.!?\t\n")
}

// foldTable maps Portuguese accented runes onto their base letters. The
// mapping is rune-for-rune so folded indices line up with the original.
var foldTable = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c',
}

// Fold lowercases and strips Portuguese diacritics, preserving rune count.
func Fold(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if base, ok := foldTable[r]; ok {
			return base
		}
		return r
	}, s)
}

// ── rune-slice helpers ───────────────────────────────────────────

func idxRunesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefixRunes(s, prefix []rune) bool {
	return len(s) >= len(prefix) && idxRunesEqual(s[:len(prefix)], prefix)
}

func hasSuffixRunes(s, suffix []rune) bool {
	return len(s) >= len(suffix) && idxRunesEqual(s[len(s)-len(suffix):], suffix)
}

func indexRunes(hay, needle []rune) int {
	if len(needle) == 0 || len(hay) < len(needle) {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		if idxRunesEqual(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
