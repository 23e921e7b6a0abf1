package conversation

import (
	"strings"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/speech"
)

// DetectIntent classifies a top-level command by keyword. Order matters:
// "remover" contains "ver", so delete is checked before list.
func DetectIntent(text string) domain.IntentType {
	folded := speech.Fold(text)
	switch {
	case strings.Contains(folded, "criar"):
		return domain.IntentCreateReminder
	case strings.Contains(folded, "editar"):
		return domain.IntentEditReminder
	case strings.Contains(folded, "excluir"), strings.Contains(folded, "remover"):
		return domain.IntentDeleteReminder
	case strings.Contains(folded, "listar"), strings.Contains(folded, "ver"):
		return domain.IntentListReminders
	}
	return domain.IntentUnknown
}
