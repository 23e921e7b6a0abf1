// lines.go centralises every spoken string and prompt. Fallback texts match
// the recorded assets so the user hears the same words either way.
package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/memorae-app/memorae/internal/audio"
	"github.com/memorae-app/memorae/internal/domain"
)

// ── Prompts (recorded asset + spoken fallback) ───────────────────

func PromptWelcome() domain.Prompt {
	return domain.Prompt{
		Key: audio.KeyWelcome,
		Fallback: "Bem-vindo ao sistema Memorae, sua agenda de lembretes. " +
			`Diga "criar lembrete", "editar lembrete", "excluir lembrete", ou "ver lembretes".`,
		Speed: 1.4,
	}
}

func PromptListening() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyListening,
		Fallback: "Estou ouvindo.",
		Speed:    1.2,
	}
}

func PromptRepeat() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyRepeat,
		Fallback: "Por favor, repita.",
		Speed:    1.2,
	}
}

func PromptReminderName() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyReminderName,
		Fallback: "Qual nome gostaria de dar ao lembrete?",
		Speed:    1.2,
	}
}

func PromptReminderDate() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyReminderDate,
		Fallback: "Que dia gostaria de ser lembrado?",
		Speed:    1.2,
	}
}

func PromptReminderTime() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyReminderTime,
		Fallback: "Que horas gostaria de ser lembrado?",
		Speed:    1.2,
	}
}

func PromptReminderRepeat() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyReminderRepeat,
		Fallback: "Este é um lembrete que gostaria de repetir?",
		Speed:    1.2,
	}
}

// PromptReminderDays has no recorded asset; the queue reports it unknown
// and the fallback text is spoken.
func PromptReminderDays() domain.Prompt {
	return domain.Prompt{
		Key: audio.KeyReminderDays,
		Fallback: "Quais dias da semana deseja repetir? " +
			"Diga: segunda, terça, quarta, quinta, sexta, sábado ou domingo.",
		Speed: 1.2,
	}
}

func PromptEditReminder() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyEditReminder,
		Fallback: "Me diga o nome do lembrete que deseja editar.",
		Speed:    1.2,
	}
}

func PromptDeleteReminder() domain.Prompt {
	return domain.Prompt{
		Key:      audio.KeyDeleteReminder,
		Fallback: "Me diga o nome do lembrete que deseja excluir.",
		Speed:    1.2,
	}
}

// ── Spoken feedback (TTS only) ───────────────────────────────────

func LineDateNotUnderstood() string {
	return `Não entendi a data. Por favor, diga o dia e o mês, como: "Dia quatro de dezembro".`
}

func LineTimeNotUnderstood() string {
	return `Não entendi a hora. Por favor, diga a hora com clareza, como: "oito horas da manhã" ou "vinte horas".`
}

func LineRepeatNotUnderstood() string {
	return `Não entendi. Gostaria de repetir este lembrete? Diga "sim" ou "não".`
}

func LineMissingData() string {
	return "Ainda faltam informações. Por favor, complete todos os dados do lembrete."
}

func LineListNotImplemented() string {
	return "Nenhum lembrete encontrado, pois a funcionalidade de listagem do servidor não foi implementada."
}

func LineEditCaptured(name string) string {
	return fmt.Sprintf("Entendi. Edição do lembrete %s registrada.", name)
}

func LineDeleteCaptured(name string) string {
	return fmt.Sprintf("Entendi. Exclusão do lembrete %s registrada.", name)
}

func LineMicrophoneError() string {
	return "Erro: Permissão do microfone necessária para usar o aplicativo."
}

func LineRecognizerUnavailable() string {
	return "Erro: reconhecimento de fala indisponível neste dispositivo."
}

// LineSaved confirms a completed reminder. The date is read back in
// Portuguese; the time is read exactly as the user said it.
func LineSaved(r *domain.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Seu lembrete %s foi criado para o dia %s às %s.",
		r.Name, SpeakableDate(r.Date), r.Time)
	if r.Repeat && r.RepeatDaysRaw != "" {
		fmt.Fprintf(&b, " Ele se repete: %s.", r.RepeatDaysRaw)
	}
	return b.String()
}

var monthNamesPt = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// SpeakableDate renders an ISO date as "4 de dezembro de 2025". Unparseable
// input is returned as-is so the confirmation still says something.
func SpeakableDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNamesPt[t.Month()-1], t.Year())
}
