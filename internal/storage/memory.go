// Package storage holds the reminder persistence boundary. The backend
// does not exist yet: records live in memory and every write is logged as
// the JSON payload a future API call would carry.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Compile-time interface check.
var _ domain.ReminderStore = (*MemoryStore)(nil)

// MemoryStore keeps reminders in memory for the lifetime of the process.
type MemoryStore struct {
	log *logger.Logger

	mu        sync.Mutex
	reminders []*domain.Reminder
	nextID    int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{log: log, nextID: 1}
}

// Save assigns an ID, stores the reminder, and logs the payload the
// backend would receive. Rejects records missing required slots.
func (s *MemoryStore) Save(_ context.Context, r *domain.Reminder) error {
	if r.Name == "" || r.Date == "" || r.Time == "" {
		return fmt.Errorf("%w: name, date and time are required", domain.ErrDraftIncomplete)
	}

	s.mu.Lock()
	r.ID = fmt.Sprintf("rem-%d", s.nextID)
	s.nextID++
	s.reminders = append(s.reminders, r)
	s.mu.Unlock()

	s.logPayload("reminder saved", r)
	return nil
}

// List returns a snapshot of the stored reminders.
func (s *MemoryStore) List(context.Context) ([]*domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out, nil
}

// LogEdit records an edit request. There is no backend edit call yet.
func (s *MemoryStore) LogEdit(_ context.Context, t domain.EditTarget) error {
	s.logPayload("edit requested", t)
	return nil
}

// LogDelete records a delete request. There is no backend delete call yet.
func (s *MemoryStore) LogDelete(_ context.Context, t domain.DeleteTarget) error {
	s.logPayload("delete requested", t)
	return nil
}

func (s *MemoryStore) logPayload(what string, v any) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Error("store: marshal %s: %v", what, err)
		return
	}
	s.log.Info("store: %s:\n%s", what, payload)
}
