package domain

// ConversationState is the single authoritative position in the dialog.
// It is initialized to StateWelcome at startup and mutated only by the
// conversation engine's transition point.
type ConversationState int

const (
	StateWelcome ConversationState = iota
	StateListening
	StateReminderName
	StateReminderDate
	StateReminderTime
	StateReminderRepeat
	StateReminderDays
	StateEditReminderName
	StateDeleteReminderName
)

// String returns the snake_case state name.
func (s ConversationState) String() string {
	switch s {
	case StateWelcome:
		return "welcome"
	case StateListening:
		return "listening"
	case StateReminderName:
		return "reminder_name"
	case StateReminderDate:
		return "reminder_date"
	case StateReminderTime:
		return "reminder_time"
	case StateReminderRepeat:
		return "reminder_repeat"
	case StateReminderDays:
		return "reminder_days"
	case StateEditReminderName:
		return "edit_reminder_name"
	case StateDeleteReminderName:
		return "delete_reminder_name"
	default:
		return "unknown"
	}
}

// Compatible reports whether a recognition result captured while expecting
// state `expected` may still be accepted when the live state is s.
// StateWelcome and StateListening are interchangeable: both capture
// top-level commands.
func (s ConversationState) Compatible(expected ConversationState) bool {
	if s == expected {
		return true
	}
	topLevel := func(st ConversationState) bool {
		return st == StateWelcome || st == StateListening
	}
	return topLevel(s) && topLevel(expected)
}

// TopLevel reports whether s captures top-level commands rather than a
// slot answer.
func (s ConversationState) TopLevel() bool {
	return s == StateWelcome || s == StateListening
}
