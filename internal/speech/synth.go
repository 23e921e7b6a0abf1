// Package speech provides synthesized speech output, single-utterance
// recognition sessions, and transcript filtering.
package speech

import (
	"context"
	"sync"

	"github.com/memorae-app/memorae/internal/audio"
	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Synth speaks text when a recorded prompt cannot play. It never reports
// failure: spoken feedback is best-effort and a broken TTS backend must not
// stall the conversation. At most one utterance is in flight; starting a
// new one cancels the previous.
type Synth struct {
	tts    domain.Synthesizer // nil when TTS is unavailable
	player audio.ClipPlayer
	log    *logger.Logger

	mu     sync.Mutex
	muted  bool
	cancel context.CancelFunc // in-flight utterance, nil when idle
}

// NewSynth creates the fallback speaker. tts may be nil; Speak then becomes
// a logged no-op.
func NewSynth(tts domain.Synthesizer, player audio.ClipPlayer, log *logger.Logger) *Synth {
	return &Synth{tts: tts, player: player, log: log}
}

// SetMuted toggles the global mute flag. While muted, Speak resolves
// immediately without speaking.
func (s *Synth) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

// Muted reports the mute flag.
func (s *Synth) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Speak synthesizes and plays text, blocking until the utterance finishes.
// Always returns nil.
func (s *Synth) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.muted || s.tts == nil || text == "" {
		s.mu.Unlock()
		return nil
	}
	// Only one utterance ever in flight.
	if s.cancel != nil {
		s.cancel()
		s.player.Stop()
	}
	uctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	wav, err := s.tts.Synthesize(uctx, text)
	if err != nil {
		s.log.Warn("synth: synthesis failed: %v", err)
		return nil
	}

	// The requested output format is 16-bit mono; only the rate can differ.
	pcm, rate, _, err := audio.DecodeWAV(wav)
	if err != nil {
		s.log.Warn("synth: bad TTS audio: %v", err)
		return nil
	}
	if rate != audio.SampleRate {
		pcm = audio.Resample(pcm, rate, audio.SampleRate)
	}

	if err := s.player.Play(uctx, pcm); err != nil {
		s.log.Debug("synth: playback ended with: %v", err)
	}
	return nil
}

// Cancel aborts the in-flight utterance, if any.
func (s *Synth) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.player.Stop()
	}
}
