package speech

import (
	"context"
	"sync"
	"time"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Outcome is the single terminal result of a recognition session: either a
// transcript (Err nil) or a *domain.CaptureError. Sessions that deliver a
// stale result, or are aborted, produce no outcome at all.
type Outcome struct {
	Transcript string
	Expected   domain.ConversationState
	Err        error
}

// SessionOption configures the session manager.
type SessionOption func(*Sessions)

// WithSessionCeiling overrides the hard per-session duration cap.
func WithSessionCeiling(d time.Duration) SessionOption {
	return func(s *Sessions) { s.ceiling = d }
}

// WithMinResultAge overrides the stale-carry-over guard window.
func WithMinResultAge(d time.Duration) SessionOption {
	return func(s *Sessions) { s.minAge = d }
}

// Sessions owns speech-recognition attempts. At most one session is live;
// each one is bound to the conversation state it was started under, and a
// transcript is only delivered while that state (or its compatible pair)
// is still current. Everything else is dropped as stale.
type Sessions struct {
	rec       domain.Recognizer
	liveState func() domain.ConversationState
	log       *logger.Logger
	ceiling   time.Duration
	minAge    time.Duration
	outcomes  chan Outcome

	mu        sync.Mutex
	active    bool
	cancel    context.CancelFunc
	startedAt time.Time
}

// NewSessions creates a session manager. liveState must return the current
// authoritative conversation state; it is consulted again at delivery time.
func NewSessions(rec domain.Recognizer, liveState func() domain.ConversationState, log *logger.Logger, opts ...SessionOption) *Sessions {
	s := &Sessions{
		rec:       rec,
		liveState: liveState,
		log:       log,
		ceiling:   MaxSessionDuration,
		minAge:    MinResultAge,
		outcomes:  make(chan Outcome, 4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// C returns the channel that terminal outcomes are delivered on.
func (s *Sessions) C() <-chan Outcome { return s.outcomes }

// Active reports whether a session is currently live.
func (s *Sessions) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start begins a recognition session bound to the current conversation
// state. A no-op returning false while a session is already active.
func (s *Sessions) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		s.log.Debug("sessions: start ignored, session already active")
		return false
	}
	// Tear down any stale cancel func from a previous run before binding
	// a new recognizer. Prevents duplicate delivery from a predecessor.
	if s.cancel != nil {
		s.cancel()
	}

	sctx, cancel := context.WithTimeout(ctx, s.ceiling)
	expected := s.liveState()
	s.active = true
	s.cancel = cancel
	s.startedAt = time.Now()
	started := s.startedAt
	s.mu.Unlock()

	s.log.Debug("sessions: started (expected=%s, ceiling=%s)", expected, s.ceiling)
	go s.run(sctx, expected, started)
	return true
}

// Stop tears down the live session: aborts the recognizer, releases the
// microphone, clears timestamps. Safe to call repeatedly.
func (s *Sessions) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.active = false
	s.startedAt = time.Time{}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.log.Debug("sessions: stopped")
	}
}

func (s *Sessions) run(ctx context.Context, expected domain.ConversationState, started time.Time) {
	transcript, err := s.rec.Listen(ctx)
	elapsed := time.Since(started)

	s.mu.Lock()
	s.active = false
	s.startedAt = time.Time{}
	s.mu.Unlock()

	if err != nil {
		if domain.KindOf(err) == domain.CaptureAborted {
			// Deliberate teardown; the initiator already knows.
			return
		}
		s.deliver(Outcome{Expected: expected, Err: err})
		return
	}

	// A result this fast is the previous turn's utterance surfacing late.
	if elapsed < s.minAge {
		s.log.Debug("sessions: dropped carry-over result after %s: %q", elapsed, transcript)
		return
	}

	live := s.liveState()
	if !live.Compatible(expected) {
		s.log.Debug("sessions: dropped stale result (expected=%s, live=%s): %q", expected, live, transcript)
		return
	}

	s.deliver(Outcome{Transcript: transcript, Expected: expected})
}

func (s *Sessions) deliver(o Outcome) {
	select {
	case s.outcomes <- o:
	default:
		s.log.Warn("sessions: outcome channel full, dropping result")
	}
}
