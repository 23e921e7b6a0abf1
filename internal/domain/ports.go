package domain

import "context"

// AudioKey is the semantic name of a pre-recorded prompt asset.
type AudioKey string

// Prompt pairs an audio asset with the text spoken when the asset cannot
// play (playback blocked, missing file). Speed of 0 means normal rate.
type Prompt struct {
	Key      AudioKey
	Fallback string
	Speed    float64
}

// Recognizer captures exactly one speech utterance. Implementations can be
// whisper-backed, platform APIs, or test fakes. A failed capture returns a
// *CaptureError so callers branch on the closed kind set instead of
// backend-specific error strings.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Synthesizer converts text to playable WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Prompter speaks to the user: pre-recorded audio first, synthesized text
// as fallback. Prompt and Speak block until the utterance finishes. Stop is
// the barge-in: it halts playback and pending speech immediately.
type Prompter interface {
	Prompt(ctx context.Context, p Prompt) error
	Speak(ctx context.Context, text string) error
	Stop()
}

// Listener schedules a new recognition turn bound to the given expected
// conversation state. Non-blocking.
type Listener interface {
	Begin(expected ConversationState)
}

// ReminderStore is the conceptual backend boundary. The current
// implementation only keeps records in memory and logs them.
type ReminderStore interface {
	Save(ctx context.Context, r *Reminder) error
	List(ctx context.Context) ([]*Reminder, error)
	LogEdit(ctx context.Context, t EditTarget) error
	LogDelete(ctx context.Context, t DeleteTarget) error
}

// Status is the control surface readout.
type Status int

const (
	StatusIdle Status = iota
	StatusRecording
	StatusProcessing
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusRecording:
		return "recording"
	case StatusProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// StatusSink receives control-surface updates: the current status readout
// and transient success feedback.
type StatusSink interface {
	SetStatus(Status)
	ShowSuccess(message string)
}
