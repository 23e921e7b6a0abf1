package display

import (
	_ "embed"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art horizontally centred for the current
// terminal width, at its native size. The tagline holds accented
// Portuguese, so widths are counted in runes, not bytes. To change the
// banner just replace banner.txt.
func RenderBanner() string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")
	if len(lines) == 0 {
		return ""
	}

	maxW := 0
	for _, l := range lines {
		if w := utf8.RuneCountInString(l); w > maxW {
			maxW = w
		}
	}

	pad := 0
	if width := termWidth(); width > maxW {
		pad = (width - maxW) / 2
	}
	indent := strings.Repeat(" ", pad)

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(indent)
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
