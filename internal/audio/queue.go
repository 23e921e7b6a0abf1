package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// DefaultCeiling bounds a single playback. Audio backends occasionally
// swallow their end event; the ceiling resolves the entry instead of
// wedging the conversation. A ceiling hit is a success, not an error.
const DefaultCeiling = 30 * time.Second

// QueueOption configures the queue.
type QueueOption func(*Queue)

// WithCeiling overrides the per-playback wall-clock ceiling.
func WithCeiling(d time.Duration) QueueOption {
	return func(q *Queue) { q.ceiling = d }
}

// Queue serializes prompt playback: strict FIFO, at most one clip playing
// at any instant. Enqueue blocks the caller until its entry settles;
// StopAll is the barge-in that clears everything at once.
type Queue struct {
	lib     *Library
	player  ClipPlayer
	log     *logger.Logger
	ceiling time.Duration

	mu      sync.Mutex
	entries []*queueEntry
	current *queueEntry
	notify  chan struct{}
}

type queueEntry struct {
	key     domain.AudioKey
	speed   float64
	done    chan error
	settled bool
}

// settle resolves the entry exactly once. Must be called with q.mu held.
func (e *queueEntry) settle(err error) {
	if e.settled {
		return
	}
	e.settled = true
	e.done <- err
}

// NewQueue creates a playback queue over the given library and player.
func NewQueue(lib *Library, player ClipPlayer, log *logger.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		lib:     lib,
		player:  player,
		log:     log,
		ceiling: DefaultCeiling,
		notify:  make(chan struct{}, 16),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the playback goroutine. Non-blocking.
func (q *Queue) Start(ctx context.Context) {
	go q.processLoop(ctx)
}

// Enqueue appends a playback request and blocks until it finishes, errors,
// hits the ceiling (nil), or is interrupted (domain.ErrInterrupted).
// A domain.ErrPlaybackBlocked result tells the caller to fall back to
// synthesized speech. Speed of 0 plays at normal rate.
func (q *Queue) Enqueue(ctx context.Context, key domain.AudioKey, speed float64) error {
	if speed <= 0 {
		speed = 1.0
	}
	e := &queueEntry{key: key, speed: speed, done: make(chan error, 1)}

	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default: // already signaled
	}

	select {
	case err := <-e.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StopAll halts in-flight playback and settles every pending entry with
// domain.ErrInterrupted. Safe to call at any time.
func (q *Queue) StopAll() {
	q.mu.Lock()
	for _, e := range q.entries {
		e.settle(domain.ErrInterrupted)
	}
	q.entries = nil
	if q.current != nil {
		q.current.settle(domain.ErrInterrupted)
	}
	q.mu.Unlock()

	q.player.Stop()
	q.log.Debug("queue: stopped, pending entries cleared")
}

// Pending returns the number of queued (not yet playing) entries.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
			q.drain(ctx)
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		q.mu.Lock()
		if len(q.entries) == 0 {
			q.mu.Unlock()
			return
		}
		e := q.entries[0]
		q.entries = q.entries[1:]
		q.current = e
		q.mu.Unlock()

		err := q.play(ctx, e)

		q.mu.Lock()
		e.settle(err)
		q.current = nil
		q.mu.Unlock()
	}
}

// play runs a single clip with the wall-clock ceiling applied. The ceiling
// resolves nil so a stuck backend never rejects the caller.
func (q *Queue) play(ctx context.Context, e *queueEntry) error {
	clip, err := q.lib.Clip(e.key)
	if err != nil {
		q.log.Debug("queue: no clip for %s: %v", e.key, err)
		return err
	}

	pcm := clip.PCM
	if e.speed != 1.0 {
		// An inflated source rate plays the same samples in less time.
		pcm = Resample(pcm, int(float64(SampleRate)*e.speed), SampleRate)
	}

	playDone := make(chan error, 1)
	go func() {
		playDone <- q.player.Play(ctx, pcm)
	}()

	select {
	case err := <-playDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			q.log.Debug("queue: playback of %s ended with: %v", e.key, err)
		}
		return err
	case <-time.After(q.ceiling):
		q.log.Warn("queue: playback ceiling hit for %s", e.key)
		q.player.Stop()
		<-playDone
		return nil
	}
}
