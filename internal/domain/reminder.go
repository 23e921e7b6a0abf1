package domain

import "time"

// ReminderDraft accumulates slot answers while a reminder is being created.
// Name, Time and RepeatDaysRaw hold the user's words verbatim; only Date is
// normalized, because the backend contract wants ISO dates. A fresh draft is
// created on the create intent and discarded on save or on any return to
// the welcome state.
type ReminderDraft struct {
	Name    string
	DateRaw string
	Date    string // YYYY-MM-DD
	Time    string // spoken text, stored as heard
	// TimeNormalized is a best-effort HH:MM rendering of Time. Informational
	// only — an empty value never blocks completion.
	TimeNormalized string
	Repeat         bool
	RepeatSet      bool
	RepeatDaysRaw  string   // literal recurrence descriptor
	RepeatDays     []string // best-effort normalized weekday tokens
}

// Complete reports whether every required slot is filled. A repeating
// reminder additionally needs a non-empty weekday descriptor.
func (d *ReminderDraft) Complete() bool {
	if d.Name == "" || d.Date == "" || d.Time == "" || !d.RepeatSet {
		return false
	}
	if d.Repeat {
		return d.RepeatDaysRaw != ""
	}
	return true
}

// Reset clears every slot, returning the draft to its initial empty state.
func (d *ReminderDraft) Reset() {
	*d = ReminderDraft{}
}

// Reminder is a completed draft as handed to the (mocked) backend.
type Reminder struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name"`
	Date           string    `json:"date"`
	DateRaw        string    `json:"dateRaw"`
	Time           string    `json:"time"`
	TimeNormalized string    `json:"timeNormalized,omitempty"`
	Repeat         bool      `json:"repeat"`
	RepeatDays     []string  `json:"repeatDays,omitempty"`
	RepeatDaysRaw  string    `json:"repeatDaysRaw,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EditTarget names a reminder the user wants to edit. Captured and logged
// only — the backend call does not exist yet.
type EditTarget struct {
	Name string `json:"name"`
}

// DeleteTarget names a reminder the user wants to delete. Logged only.
type DeleteTarget struct {
	Name string `json:"name"`
}
