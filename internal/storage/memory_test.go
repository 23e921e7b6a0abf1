package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

func newStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(logger.New(logger.LevelOff, io.Discard))
}

func TestSaveAssignsSequentialIDs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := &domain.Reminder{Name: "Reunião", Date: "2025-12-04", Time: "oito horas", CreatedAt: time.Now()}
	b := &domain.Reminder{Name: "Academia", Date: "2025-03-20", Time: "sete da manhã", CreatedAt: time.Now()}

	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, b); err != nil {
		t.Fatalf("save: %v", err)
	}

	if a.ID != "rem-1" || b.ID != "rem-2" {
		t.Errorf("ids = %q, %q", a.ID, b.ID)
	}
}

func TestListReturnsSnapshot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &domain.Reminder{Name: "Reunião"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Reunião" {
		t.Errorf("list = %+v", got)
	}

	// Mutating the returned slice must not touch the store.
	got[0] = nil
	again, _ := s.List(ctx)
	if again[0] == nil {
		t.Error("list returned internal slice")
	}
}

func TestSaveRejectsIncompleteRecord(t *testing.T) {
	s := newStore(t)
	err := s.Save(context.Background(), &domain.Reminder{Name: "Sem data"})
	if !errors.Is(err, domain.ErrDraftIncomplete) {
		t.Errorf("err = %v, want ErrDraftIncomplete", err)
	}
}

func TestEditAndDeleteLogsDoNotFail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.LogEdit(ctx, domain.EditTarget{Name: "Reunião"}); err != nil {
		t.Errorf("log edit: %v", err)
	}
	if err := s.LogDelete(ctx, domain.DeleteTarget{Name: "Reunião"}); err != nil {
		t.Errorf("log delete: %v", err)
	}
}
