package domain

// IntentType classifies a top-level voice command.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentCreateReminder
	IntentEditReminder
	IntentDeleteReminder
	IntentListReminders
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentCreateReminder:
		return "create_reminder"
	case IntentEditReminder:
		return "edit_reminder"
	case IntentDeleteReminder:
		return "delete_reminder"
	case IntentListReminders:
		return "list_reminders"
	default:
		return "unknown"
	}
}
