package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Playback parameters shared by recorded assets (after resampling) and
// synthesized speech.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// ClipPlayer plays one chunk of 16-bit mono PCM. Play blocks until the
// audio finishes, Stop is called, or ctx is cancelled. Implementations must
// make Stop safe to call concurrently and when nothing is playing.
type ClipPlayer interface {
	Play(ctx context.Context, pcm []byte) error
	Stop()
}

// Compile-time interface check.
var _ ClipPlayer = (*Player)(nil)

// Player plays PCM through the system audio device via oto. If the audio
// context cannot be initialized the player stays in a blocked state and
// every Play returns domain.ErrPlaybackBlocked, which callers treat as the
// cue to fall back to synthesized speech or stay silent.
type Player struct {
	log *logger.Logger

	mu      sync.Mutex
	ctx     *oto.Context
	initErr error
	active  *oto.Player // currently playing, nil when idle
}

// NewPlayer initializes the system audio context. A failed init does not
// error out: the returned player reports domain.ErrPlaybackBlocked on use
// so the conversation can still run on TTS-less, silent mode.
func NewPlayer(log *logger.Logger) *Player {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	p := &Player{log: log}
	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		p.initErr = err
		log.Error("audio: device unavailable, playback blocked: %v", err)
		return p
	}
	<-readyChan
	p.ctx = ctx
	log.Debug("audio: player ready (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return p
}

// Blocked reports whether the audio device failed to initialize.
func (p *Player) Blocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx == nil
}

// Play plays PCM synchronously. Returns domain.ErrPlaybackBlocked when the
// device is unavailable.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	p.mu.Lock()
	if p.ctx == nil {
		err := p.initErr
		p.mu.Unlock()
		return fmt.Errorf("%w: %v", domain.ErrPlaybackBlocked, err)
	}
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.active = player
	p.mu.Unlock()

	player.Play()

	// Poll until playback completes or is interrupted.
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			p.clearActive(player)
			player.Close()
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	p.clearActive(player)
	return player.Close()
}

// Stop interrupts the currently playing audio, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio: playback interrupted")
	}
}

func (p *Player) clearActive(player *oto.Player) {
	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()
}
