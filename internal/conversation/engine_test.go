package conversation

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
	"github.com/memorae-app/memorae/internal/speech"
)

type fakePrompter struct {
	prompts []domain.AudioKey
	lines   []string
}

func (f *fakePrompter) Prompt(_ context.Context, p domain.Prompt) error {
	f.prompts = append(f.prompts, p.Key)
	return nil
}

func (f *fakePrompter) Speak(_ context.Context, text string) error {
	f.lines = append(f.lines, text)
	return nil
}

func (f *fakePrompter) Stop() {}

type fakeListener struct {
	begins []domain.ConversationState
}

func (f *fakeListener) Begin(expected domain.ConversationState) {
	f.begins = append(f.begins, expected)
}

type fakeStore struct {
	saved   []*domain.Reminder
	edits   []domain.EditTarget
	deletes []domain.DeleteTarget
}

func (f *fakeStore) Save(_ context.Context, r *domain.Reminder) error {
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeStore) List(context.Context) ([]*domain.Reminder, error) { return nil, nil }

func (f *fakeStore) LogEdit(_ context.Context, t domain.EditTarget) error {
	f.edits = append(f.edits, t)
	return nil
}

func (f *fakeStore) LogDelete(_ context.Context, t domain.DeleteTarget) error {
	f.deletes = append(f.deletes, t)
	return nil
}

type fakeStatus struct {
	successes []string
}

func (f *fakeStatus) SetStatus(domain.Status) {}
func (f *fakeStatus) ShowSuccess(msg string)  { f.successes = append(f.successes, msg) }

type engineFixture struct {
	engine   *Engine
	prompter *fakePrompter
	listener *fakeListener
	store    *fakeStore
	status   *fakeStatus
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	log := logger.New(logger.LevelOff, io.Discard)
	f := &engineFixture{
		prompter: &fakePrompter{},
		listener: &fakeListener{},
		store:    &fakeStore{},
		status:   &fakeStatus{},
	}
	clock := func() time.Time {
		return time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	}
	f.engine = NewEngine(f.prompter, f.listener, f.store, f.status,
		speech.NewFilter(log), log, WithClock(clock))
	f.engine.setState(domain.StateListening)
	return f
}

func (f *engineFixture) say(t *testing.T, text string) {
	t.Helper()
	f.engine.HandleTranscript(context.Background(), text)
}

func TestCreateReminderFullFlow(t *testing.T) {
	f := newFixture(t)

	f.say(t, "quero criar um lembrete")
	if got := f.engine.State(); got != domain.StateReminderName {
		t.Fatalf("after create intent: state = %s", got)
	}

	f.say(t, "Reunião com equipe")
	f.say(t, "4 de dezembro")
	f.say(t, "oito horas")
	f.say(t, "não, obrigado")

	if len(f.store.saved) != 1 {
		t.Fatalf("saved %d reminders, want 1", len(f.store.saved))
	}
	r := f.store.saved[0]
	if r.Name != "Reunião com equipe" {
		t.Errorf("name = %q", r.Name)
	}
	if r.Date != "2025-12-04" {
		t.Errorf("date = %q", r.Date)
	}
	if r.Time != "oito horas" {
		t.Errorf("time stored = %q, want the spoken words", r.Time)
	}
	if r.TimeNormalized != "08:00" {
		t.Errorf("time normalized = %q", r.TimeNormalized)
	}
	if r.Repeat {
		t.Error("repeat = true, want false")
	}
	if got := f.engine.State(); got != domain.StateListening {
		t.Errorf("after save: state = %s", got)
	}
	if len(f.status.successes) != 1 {
		t.Errorf("success indicator shown %d times, want 1", len(f.status.successes))
	}
}

func TestRepeatYesLeadsToDays(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")
	f.say(t, "Academia")
	f.say(t, "dia 20 de março")
	f.say(t, "sete da manhã")

	f.say(t, "sim")
	if got := f.engine.State(); got != domain.StateReminderDays {
		t.Fatalf("after yes: state = %s", got)
	}

	f.say(t, "segunda e quarta")
	if len(f.store.saved) != 1 {
		t.Fatalf("saved %d reminders, want 1", len(f.store.saved))
	}
	r := f.store.saved[0]
	if !r.Repeat {
		t.Error("repeat = false, want true")
	}
	if r.RepeatDaysRaw != "segunda e quarta" {
		t.Errorf("days raw = %q, want the spoken words", r.RepeatDaysRaw)
	}
	if len(r.RepeatDays) != 2 || r.RepeatDays[0] != "monday" || r.RepeatDays[1] != "wednesday" {
		t.Errorf("days = %v", r.RepeatDays)
	}
}

func TestRepeatImplicitWeekdaysSkipsDaysPrompt(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")
	f.say(t, "Academia")
	f.say(t, "dia 20 de março")
	f.say(t, "sete da manhã")

	// Weekdays spoken directly at the yes/no question: treated as yes plus
	// the days answer in one turn.
	f.say(t, "segunda e quarta")

	if len(f.store.saved) != 1 {
		t.Fatalf("saved %d reminders, want 1", len(f.store.saved))
	}
	r := f.store.saved[0]
	if !r.Repeat || r.RepeatDaysRaw != "segunda e quarta" {
		t.Errorf("repeat = %v, days raw = %q", r.Repeat, r.RepeatDaysRaw)
	}
}

func TestRepeatAmbiguousStaysPut(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")
	f.say(t, "Academia")
	f.say(t, "dia 20 de março")
	f.say(t, "sete da manhã")

	f.say(t, "talvez depois")
	if got := f.engine.State(); got != domain.StateReminderRepeat {
		t.Errorf("after ambiguous answer: state = %s", got)
	}
	if len(f.store.saved) != 0 {
		t.Error("ambiguous answer must not save")
	}
}

func TestDateRejections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unparseable", "qualquer coisa"},
		{"echo of the name", "Reunião com equipe"},
		{"bare number", "25"},
		{"impossible day", "31 de fevereiro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.say(t, "criar lembrete")
			f.say(t, "Reunião com equipe")

			f.say(t, tt.text)
			if got := f.engine.State(); got != domain.StateReminderDate {
				t.Errorf("state = %s, want reminder_date", got)
			}
			if f.engine.draft.Date != "" {
				t.Errorf("date slot filled with %q", f.engine.draft.Date)
			}
			// Rejection must not auto-restart the microphone.
			if len(f.listener.begins) != 2 {
				t.Errorf("listener began %d times, want 2 (name, date)", len(f.listener.begins))
			}
		})
	}
}

func TestDateRejectionAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")
	f.say(t, "Reunião")

	// Two identical failing attempts must both be processed: a rejection
	// clears the echo markers, so the retry is not swallowed as a duplicate.
	f.say(t, "qualquer coisa")
	f.say(t, "qualquer coisa")
	rejections := 0
	for _, l := range f.prompter.lines {
		if strings.Contains(l, "Não entendi a data") {
			rejections++
		}
	}
	if rejections != 2 {
		t.Errorf("spoke %d date rejections, want 2", rejections)
	}

	f.say(t, "4 de dezembro")
	if f.engine.draft.Date != "2025-12-04" {
		t.Errorf("retry after rejection: date = %q", f.engine.draft.Date)
	}
}

func TestTimeRejectsDateEcho(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")
	f.say(t, "Reunião")
	f.say(t, "4 de dezembro")

	f.say(t, "dia 4 de dezembro")
	if got := f.engine.State(); got != domain.StateReminderTime {
		t.Errorf("state = %s, want reminder_time", got)
	}
	if f.engine.draft.Time != "" {
		t.Errorf("time slot filled with %q", f.engine.draft.Time)
	}

	f.say(t, "vinte horas")
	if f.engine.draft.Time != "vinte horas" {
		t.Errorf("time = %q", f.engine.draft.Time)
	}
}

func TestCrossTurnEchoDropped(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")
	f.say(t, "Pagar contas")

	// The recognizer surfaces the name utterance again after the state
	// advanced. It must not land in the date slot.
	f.say(t, "Pagar contas")
	if got := f.engine.State(); got != domain.StateReminderDate {
		t.Errorf("state = %s, want reminder_date", got)
	}
	if f.engine.draft.DateRaw != "" {
		t.Errorf("date slot filled with %q", f.engine.draft.DateRaw)
	}
}

func TestIntentKeywords(t *testing.T) {
	tests := []struct {
		text string
		want domain.ConversationState
	}{
		{"quero criar um lembrete", domain.StateReminderName},
		{"editar lembrete", domain.StateEditReminderName},
		{"excluir lembrete", domain.StateDeleteReminderName},
		{"remover lembrete", domain.StateDeleteReminderName},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t)
			f.say(t, tt.text)
			if got := f.engine.State(); got != tt.want {
				t.Errorf("state = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestListSpeaksAndReturnsToWelcome(t *testing.T) {
	f := newFixture(t)
	f.say(t, "ver lembretes")

	if got := f.engine.State(); got != domain.StateListening {
		t.Errorf("state = %s, want listening", got)
	}
	found := false
	for _, l := range f.prompter.lines {
		if strings.Contains(l, "listagem") {
			found = true
		}
	}
	if !found {
		t.Error("list explanation not spoken")
	}
}

func TestUnknownCommandAsksForRepeat(t *testing.T) {
	f := newFixture(t)
	f.say(t, "xyz abc")

	if got := f.engine.State(); got != domain.StateListening {
		t.Errorf("state = %s, want listening", got)
	}
	if len(f.listener.begins) != 0 {
		t.Error("unknown command must not auto-restart recognition")
	}
	if len(f.prompter.prompts) == 0 {
		t.Fatal("no repeat prompt played")
	}
}

func TestEditAndDeleteCaptureTargets(t *testing.T) {
	f := newFixture(t)
	f.say(t, "editar lembrete")
	f.say(t, "Reunião com equipe")

	if len(f.store.edits) != 1 || f.store.edits[0].Name != "Reunião com equipe" {
		t.Fatalf("edits = %+v", f.store.edits)
	}
	if got := f.engine.State(); got != domain.StateListening {
		t.Errorf("after edit capture: state = %s", got)
	}

	f.say(t, "excluir lembrete")
	f.say(t, "Pagar contas")
	if len(f.store.deletes) != 1 || f.store.deletes[0].Name != "Pagar contas" {
		t.Fatalf("deletes = %+v", f.store.deletes)
	}
}

func TestPromptEchoDroppedByFilter(t *testing.T) {
	f := newFixture(t)
	f.say(t, "criar lembrete")

	// The name prompt bleeding back through the microphone is not a name.
	f.say(t, "qual nome gostaria de dar ao lembrete")
	if f.engine.draft.Name != "" {
		t.Errorf("prompt echo accepted as name: %q", f.engine.draft.Name)
	}
}
