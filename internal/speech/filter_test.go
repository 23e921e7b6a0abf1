package speech

import (
	"io"
	"testing"

	"github.com/memorae-app/memorae/internal/logger"
)

func newTestFilter(t *testing.T) *Filter {
	t.Helper()
	return NewFilter(logger.New(logger.LevelOff, io.Discard))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"genuine content untouched", "criar lembrete", "criar lembrete", true},
		{"accents preserved", "Reunião com equipe", "Reunião com equipe", true},

		{"pure listening echo", "estou ouvindo", "", false},
		{"listening echo capitalized", "Estou ouvindo", "", false},
		{"content after listening echo", "Estou ouvindo criar lembrete", "criar lembrete", true},
		{"content before listening echo", "criar lembrete estou ouvindo", "criar lembrete", true},
		{"crumbs around listening echo", "é estou ouvindo", "", false},

		{"exact system phrase", "por favor repita", "", false},
		{"exact phrase accented", "Não entendi", "", false},
		{"full prompt echo", "Qual nome gostaria de dar ao lembrete", "", false},
		{"phrase prefix with crumb", "qual nome ok", "", false},
		{"phrase prefix with content", "qual nome Reunião com equipe", "Reunião com equipe", true},
		{"phrase suffix with content", "Reunião com equipe que dia gostaria", "Reunião com equipe", true},
	}

	f := newTestFilter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := f.Filter(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Filter(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFoldPreservesRuneCount(t *testing.T) {
	in := "Não, obrigado. Reunião às três"
	folded := Fold(in)
	if len([]rune(folded)) != len([]rune(in)) {
		t.Errorf("rune count changed: %d -> %d", len([]rune(in)), len([]rune(folded)))
	}
	if folded != "nao, obrigado. reuniao as tres" {
		t.Errorf("folded = %q", folded)
	}
}
