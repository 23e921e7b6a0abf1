package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
	"github.com/memorae-app/memorae/internal/speech"
)

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the time source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the dialog state machine. It owns the conversation state, the
// reminder draft, and the cross-turn echo markers; every transcript the
// session manager delivers flows through HandleTranscript.
//
// All handling runs on the caller's goroutine. Only State is safe to call
// concurrently — the session manager reads it from its own goroutine.
type Engine struct {
	prompter domain.Prompter
	listener domain.Listener
	store    domain.ReminderStore
	status   domain.StatusSink
	filter   *speech.Filter
	log      *logger.Logger
	now      func() time.Time

	mu    sync.Mutex
	state domain.ConversationState

	draft domain.ReminderDraft

	// Echo markers: the last accepted transcript and the state it was
	// accepted under. A new transcript matching them after a state change
	// is the recognizer surfacing the same utterance twice.
	lastText  string
	lastState domain.ConversationState
	hasLast   bool
}

// NewEngine wires the state machine to its collaborators.
func NewEngine(prompter domain.Prompter, listener domain.Listener, store domain.ReminderStore, status domain.StatusSink, filter *speech.Filter, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		prompter: prompter,
		listener: listener,
		store:    store,
		status:   status,
		filter:   filter,
		log:      log,
		now:      time.Now,
		state:    domain.StateWelcome,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current conversation state.
func (e *Engine) State() domain.ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// setState is the single transition point.
func (e *Engine) setState(s domain.ConversationState) {
	e.mu.Lock()
	prev := e.state
	e.state = s
	e.mu.Unlock()
	if prev != s {
		e.log.Debug("state: %s -> %s", prev, s)
	}
}

// Welcome plays the greeting and leaves the engine ready for a top-level
// command. Called at startup and when a flow hands control back.
func (e *Engine) Welcome(ctx context.Context) {
	e.setState(domain.StateWelcome)
	if err := e.prompter.Prompt(ctx, speech.PromptWelcome()); err != nil {
		e.log.Warn("welcome prompt: %v", err)
	}
	e.setState(domain.StateListening)
}

// HandleTranscript runs one dialog turn. The transcript is filtered for
// prompt echo, checked against the cross-turn markers, then dispatched to
// the handler for the current state.
func (e *Engine) HandleTranscript(ctx context.Context, raw string) {
	text, ok := e.filter.Filter(raw)
	if !ok {
		e.log.Debug("turn: dropped by filter: %q", raw)
		return
	}

	state := e.State()

	e.mu.Lock()
	if e.hasLast && state != e.lastState && isEcho(e.lastText, text) {
		e.mu.Unlock()
		e.log.Debug("turn: dropped cross-turn echo: %q", text)
		return
	}
	e.lastText = text
	e.lastState = state
	e.hasLast = true
	e.mu.Unlock()

	e.log.Info("turn: %q (state=%s)", text, state)

	switch state {
	case domain.StateWelcome, domain.StateListening:
		e.handleCommand(ctx, text)
	case domain.StateReminderName:
		e.handleName(ctx, text)
	case domain.StateReminderDate:
		e.handleDate(ctx, text)
	case domain.StateReminderTime:
		e.handleTime(ctx, text)
	case domain.StateReminderRepeat:
		e.handleRepeat(ctx, text)
	case domain.StateReminderDays:
		e.handleDays(ctx, text)
	case domain.StateEditReminderName:
		e.handleEditName(ctx, text)
	case domain.StateDeleteReminderName:
		e.handleDeleteName(ctx, text)
	}
}

// isEcho reports whether cur is the previous turn's utterance again: either
// identical or containing it as a near-total substring.
func isEcho(prev, cur string) bool {
	p := speech.Fold(strings.TrimSpace(prev))
	c := speech.Fold(strings.TrimSpace(cur))
	if p == "" || c == "" {
		return false
	}
	if p == c {
		return true
	}
	return strings.Contains(c, p) && len(p)*10 >= len(c)*8
}

// clearEchoMarkers forgets the last accepted transcript so the user can say
// the exact same words again after a rejection.
func (e *Engine) clearEchoMarkers() {
	e.mu.Lock()
	e.hasLast = false
	e.lastText = ""
	e.mu.Unlock()
}

// ── Top-level commands ───────────────────────────────────────────

func (e *Engine) handleCommand(ctx context.Context, text string) {
	intent := DetectIntent(text)
	e.log.Debug("intent: %s", intent)

	switch intent {
	case domain.IntentCreateReminder:
		e.draft.Reset()
		e.advance(ctx, domain.StateReminderName, speech.PromptReminderName())

	case domain.IntentEditReminder:
		e.advance(ctx, domain.StateEditReminderName, speech.PromptEditReminder())

	case domain.IntentDeleteReminder:
		e.advance(ctx, domain.StateDeleteReminderName, speech.PromptDeleteReminder())

	case domain.IntentListReminders:
		e.speak(ctx, speech.LineListNotImplemented())
		e.Welcome(ctx)

	default:
		// Unrecognized command: ask again and wait for the user to press
		// the microphone button. No automatic restart here.
		e.prompt(ctx, speech.PromptRepeat())
	}
}

// ── Slot handlers ────────────────────────────────────────────────

func (e *Engine) handleName(ctx context.Context, text string) {
	e.draft.Name = strings.TrimSpace(text)
	e.advance(ctx, domain.StateReminderDate, speech.PromptReminderDate())
}

func (e *Engine) handleDate(ctx context.Context, text string) {
	raw := strings.TrimSpace(text)

	// The name echoing into the date slot is the most common recognizer
	// duplicate; a bare number with no month is a fragment, not a date.
	if speech.Fold(raw) == speech.Fold(e.draft.Name) {
		e.rejectSlot(ctx, speech.LineDateNotUnderstood())
		return
	}
	iso, ok := NormalizeDate(raw, e.now())
	if !ok {
		e.rejectSlot(ctx, speech.LineDateNotUnderstood())
		return
	}

	e.draft.DateRaw = raw
	e.draft.Date = iso
	e.advance(ctx, domain.StateReminderTime, speech.PromptReminderTime())
}

func (e *Engine) handleTime(ctx context.Context, text string) {
	raw := strings.TrimSpace(text)

	// A date answer leaking into the time slot means the date utterance
	// surfaced twice; storing it would corrupt the reminder.
	if ContainsDateWords(raw) || speech.Fold(raw) == speech.Fold(e.draft.DateRaw) {
		e.rejectSlot(ctx, speech.LineTimeNotUnderstood())
		return
	}

	e.draft.Time = raw
	if hhmm, ok := NormalizeTime(raw); ok {
		e.draft.TimeNormalized = hhmm
	}
	e.advance(ctx, domain.StateReminderRepeat, speech.PromptReminderRepeat())
}

var yesWords = []string{"sim", "quero", "repetir", "desejo", "gostaria"}

func (e *Engine) handleRepeat(ctx context.Context, text string) {
	folded := speech.Fold(strings.TrimSpace(text))

	// "não quero" also contains a yes word; the negative wins.
	if strings.HasPrefix(folded, "nao") {
		e.draft.Repeat = false
		e.draft.RepeatSet = true
		e.save(ctx)
		return
	}

	// Naming weekdays here is an implicit yes: take the same utterance as
	// the days answer instead of asking again.
	if days := NormalizeWeekdays(text); len(days) > 0 {
		e.draft.Repeat = true
		e.draft.RepeatSet = true
		e.handleDays(ctx, text)
		return
	}

	for _, w := range yesWords {
		if strings.Contains(folded, w) {
			e.draft.Repeat = true
			e.draft.RepeatSet = true
			e.advance(ctx, domain.StateReminderDays, speech.PromptReminderDays())
			return
		}
	}

	e.rejectSlot(ctx, speech.LineRepeatNotUnderstood())
}

func (e *Engine) handleDays(ctx context.Context, text string) {
	// The descriptor is stored as spoken; the token list is best effort.
	e.draft.RepeatDaysRaw = strings.TrimSpace(text)
	e.draft.RepeatDays = NormalizeWeekdays(text)
	e.save(ctx)
}

func (e *Engine) handleEditName(ctx context.Context, text string) {
	name := strings.TrimSpace(text)
	if err := e.store.LogEdit(ctx, domain.EditTarget{Name: name}); err != nil {
		e.log.Warn("edit log: %v", err)
	}
	e.speak(ctx, speech.LineEditCaptured(name))
	e.Welcome(ctx)
}

func (e *Engine) handleDeleteName(ctx context.Context, text string) {
	name := strings.TrimSpace(text)
	if err := e.store.LogDelete(ctx, domain.DeleteTarget{Name: name}); err != nil {
		e.log.Warn("delete log: %v", err)
	}
	e.speak(ctx, speech.LineDeleteCaptured(name))
	e.Welcome(ctx)
}

// ── Completion ───────────────────────────────────────────────────

func (e *Engine) save(ctx context.Context) {
	if !e.draft.Complete() {
		e.log.Warn("save refused, draft incomplete: %+v", e.draft)
		e.speak(ctx, speech.LineMissingData())
		return
	}

	r := &domain.Reminder{
		Name:           e.draft.Name,
		Date:           e.draft.Date,
		DateRaw:        e.draft.DateRaw,
		Time:           e.draft.Time,
		TimeNormalized: e.draft.TimeNormalized,
		Repeat:         e.draft.Repeat,
		RepeatDays:     e.draft.RepeatDays,
		RepeatDaysRaw:  e.draft.RepeatDaysRaw,
		CreatedAt:      e.now(),
	}
	if err := e.store.Save(ctx, r); err != nil {
		e.log.Error("save: %v", err)
		e.speak(ctx, speech.LineMissingData())
		return
	}

	e.speak(ctx, speech.LineSaved(r))
	e.status.ShowSuccess("Lembrete criado: " + r.Name)
	e.draft.Reset()
	e.clearEchoMarkers()
	e.setState(domain.StateWelcome)
	e.setState(domain.StateListening)
}

// ── Helpers ──────────────────────────────────────────────────────

// advance moves to the next slot, asks its question, and schedules the
// next recognition turn.
func (e *Engine) advance(ctx context.Context, next domain.ConversationState, p domain.Prompt) {
	e.setState(next)
	e.prompt(ctx, p)
	e.listener.Begin(next)
}

// rejectSlot keeps the current state, forgets the echo markers so the same
// words can be retried, and explains the problem. The user re-triggers the
// microphone manually.
func (e *Engine) rejectSlot(ctx context.Context, line string) {
	e.clearEchoMarkers()
	e.speak(ctx, line)
}

func (e *Engine) prompt(ctx context.Context, p domain.Prompt) {
	if err := e.prompter.Prompt(ctx, p); err != nil {
		e.log.Warn("prompt %s: %v", p.Key, err)
	}
}

func (e *Engine) speak(ctx context.Context, line string) {
	if err := e.prompter.Speak(ctx, line); err != nil {
		e.log.Warn("speak: %v", err)
	}
}
