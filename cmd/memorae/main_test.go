package main

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/memorae-app/memorae/internal/conversation"
	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
	"github.com/memorae-app/memorae/internal/speech"
	"github.com/memorae-app/memorae/internal/storage"
)

// fakePrompter records interruptions and spoken lines.
type fakePrompter struct {
	mu    sync.Mutex
	stops int
	lines []string
}

func (p *fakePrompter) Prompt(ctx context.Context, pr domain.Prompt) error { return nil }

func (p *fakePrompter) Speak(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, text)
	return nil
}

func (p *fakePrompter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePrompter) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

// fakeSessions tracks start/stop without touching a microphone.
type fakeSessions struct {
	mu     sync.Mutex
	active bool
	starts int
	ch     chan speech.Outcome
}

func (s *fakeSessions) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	s.starts++
	return true
}

func (s *fakeSessions) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

func (s *fakeSessions) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *fakeSessions) C() <-chan speech.Outcome { return s.ch }

// fakeSurface records the status sequence and swallows prints.
type fakeSurface struct {
	mu       sync.Mutex
	statuses []domain.Status
}

func (f *fakeSurface) SetStatus(s domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, s)
}

func (f *fakeSurface) ShowSuccess(string)     {}
func (f *fakeSurface) PrintTranscript(string) {}
func (f *fakeSurface) PrintHint(string)       {}
func (f *fakeSurface) PrintUrgent(string)     {}

func (f *fakeSurface) lastStatus() domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return domain.StatusIdle
	}
	return f.statuses[len(f.statuses)-1]
}

func newTestApp(t *testing.T) (*voiceApp, *fakePrompter, *fakeSessions, *fakeSurface) {
	t.Helper()
	log := logger.New(logger.LevelOff, io.Discard)
	prompter := &fakePrompter{}
	sessions := &fakeSessions{ch: make(chan speech.Outcome, 1)}
	surf := &fakeSurface{}

	app := &voiceApp{
		voice:    prompter,
		sessions: sessions,
		log:      log,
		ui:       surf,
		toggles:  make(chan struct{}, 1),
		presses:  make(chan struct{}, 1),
		ctx:      context.Background(),
	}
	app.engine = conversation.NewEngine(prompter, app, storage.NewMemoryStore(log), surf,
		speech.NewFilter(log), log)
	return app, prompter, sessions, surf
}

// The push-to-talk key must cut playing audio immediately, even while the
// run loop is blocked inside a prompt and cannot service the press itself.
func TestTogglePressCutsPlaybackWithoutRunLoop(t *testing.T) {
	app, prompter, _, _ := newTestApp(t)
	toggles := make(chan struct{}, 1)
	app.toggles = toggles

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.watchToggle(ctx)

	// Nothing is draining app.presses: the run loop is "busy".
	toggles <- struct{}{}

	deadline := time.After(2 * time.Second)
	for prompter.stopCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("playback was never interrupted")
		case <-time.After(5 * time.Millisecond):
		}
	}

	select {
	case <-app.presses:
	case <-time.After(2 * time.Second):
		t.Fatal("press was not forwarded to the run loop")
	}
}

func TestToggleStopsLiveSession(t *testing.T) {
	app, _, sessions, surf := newTestApp(t)
	ctx := context.Background()

	app.toggle(ctx)
	if !sessions.Active() {
		t.Fatal("first press did not open the microphone")
	}
	if surf.lastStatus() != domain.StatusRecording {
		t.Errorf("status = %v, want recording", surf.lastStatus())
	}

	app.toggle(ctx)
	if sessions.Active() {
		t.Error("second press did not close the microphone")
	}
	if surf.lastStatus() != domain.StatusIdle {
		t.Errorf("status = %v, want idle", surf.lastStatus())
	}
}

// A transcript that advances a slot reopens the microphone; the status bar
// must keep showing the recording state, not fall back to idle.
func TestOutcomeKeepsRecordingStatusAfterAdvance(t *testing.T) {
	app, _, sessions, surf := newTestApp(t)

	app.handleOutcome(context.Background(), speech.Outcome{Transcript: "criar lembrete"})

	if !sessions.Active() {
		t.Fatal("slot advance did not open the microphone")
	}
	if got := surf.lastStatus(); got != domain.StatusRecording {
		t.Errorf("status = %v, want recording", got)
	}
}

// A turn that ends without a new session goes back to idle.
func TestOutcomeReturnsToIdleWithoutSession(t *testing.T) {
	app, _, sessions, surf := newTestApp(t)

	// An unrecognized command re-prompts but leaves the microphone closed.
	app.handleOutcome(context.Background(), speech.Outcome{Transcript: "bom dia"})

	if sessions.Active() {
		t.Fatal("unrecognized command opened the microphone")
	}
	if got := surf.lastStatus(); got != domain.StatusIdle {
		t.Errorf("status = %v, want idle", got)
	}
}
