package speech

import (
	"context"
	"errors"

	"github.com/memorae-app/memorae/internal/audio"
	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Compile-time interface check.
var _ domain.Prompter = (*Voice)(nil)

// Voice is the audio-first prompt dispatcher: try the recorded asset
// through the playback queue; when playback is blocked or the asset is
// missing, speak the prompt's fallback text instead. A prompt interrupted
// by a barge-in is abandoned, not retried.
type Voice struct {
	queue *audio.Queue
	synth *Synth
	log   *logger.Logger
}

// NewVoice creates the prompt dispatcher.
func NewVoice(queue *audio.Queue, synth *Synth, log *logger.Logger) *Voice {
	return &Voice{queue: queue, synth: synth, log: log}
}

// Prompt plays the prompt's audio, falling back to TTS. Blocks until the
// utterance finishes. Only a barge-in surfaces as an error.
func (v *Voice) Prompt(ctx context.Context, p domain.Prompt) error {
	err := v.queue.Enqueue(ctx, p.Key, p.Speed)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return err
	}

	// Blocked device, unknown key, unreadable file: all degrade to speech.
	v.log.Debug("voice: %s unplayable (%v), using TTS fallback", p.Key, err)
	return v.synth.Speak(ctx, p.Fallback)
}

// Speak goes straight to the TTS fallback. Always resolves.
func (v *Voice) Speak(ctx context.Context, text string) error {
	return v.synth.Speak(ctx, text)
}

// Stop is the barge-in: halt playback, clear the queue, and cancel any
// pending synthesized utterance. A user interruption always wins.
func (v *Voice) Stop() {
	v.queue.StopAll()
	v.synth.Cancel()
}
