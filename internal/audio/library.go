// Package audio provides the prompt asset library, the PCM player, and the
// serialized playback queue.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Semantic prompt keys. KeyReminderDays has no recorded asset on purpose:
// that prompt always goes through the TTS fallback.
const (
	KeyWelcome        domain.AudioKey = "welcome"
	KeyListening      domain.AudioKey = "listening"
	KeyRepeat         domain.AudioKey = "repeat"
	KeyReminderName   domain.AudioKey = "reminderName"
	KeyReminderDate   domain.AudioKey = "reminderDate"
	KeyReminderTime   domain.AudioKey = "reminderTime"
	KeyReminderRepeat domain.AudioKey = "reminderRepeat"
	KeyReminderDays   domain.AudioKey = "reminderDays"
	KeyEditReminder   domain.AudioKey = "editReminder"
	KeyDeleteReminder domain.AudioKey = "deleteReminder"
)

// DefaultAssets maps prompt keys to the recorded WAV files shipped with the
// app. Immutable after startup.
var DefaultAssets = map[domain.AudioKey]string{
	KeyWelcome:        "Bem_vindo.wav",
	KeyListening:      "Estou_ouvindo.wav",
	KeyRepeat:         "Por_favor_repita.wav",
	KeyReminderName:   "nome_lembrete.wav",
	KeyReminderDate:   "dia_lembrete.wav",
	KeyReminderTime:   "horario_lembrete.wav",
	KeyReminderRepeat: "repetir_lembrete.wav",
	KeyEditReminder:   "Acao_pos_editar.wav",
	KeyDeleteReminder: "acao_pos_excluir.wav",
}

// Clip is a decoded, playable prompt: raw 16-bit mono PCM at the library's
// sample rate.
type Clip struct {
	Key domain.AudioKey
	PCM []byte
}

// Library resolves prompt keys to decoded clips. Files are read and decoded
// lazily on first use and cached for the process lifetime — at most one
// decoded clip per key.
type Library struct {
	dir    string
	assets map[domain.AudioKey]string
	rate   int // target sample rate clips are resampled to
	log    *logger.Logger

	mu    sync.Mutex
	clips map[domain.AudioKey]*Clip
}

// NewLibrary creates a library over the given asset directory. The assets
// table is copied; rate is the sample rate of the playback context.
func NewLibrary(dir string, assets map[domain.AudioKey]string, rate int, log *logger.Logger) *Library {
	table := make(map[domain.AudioKey]string, len(assets))
	for k, v := range assets {
		table[k] = v
	}
	return &Library{
		dir:    dir,
		assets: table,
		rate:   rate,
		log:    log,
		clips:  make(map[domain.AudioKey]*Clip),
	}
}

// Has reports whether a recorded asset exists for the key.
func (l *Library) Has(key domain.AudioKey) bool {
	_, ok := l.assets[key]
	return ok
}

// Clip returns the decoded clip for the key, loading and caching it on
// first use. Returns domain.ErrUnknownAudio for keys without an asset.
func (l *Library) Clip(key domain.AudioKey) (*Clip, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.clips[key]; ok {
		return c, nil
	}

	file, ok := l.assets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAudio, key)
	}

	path := filepath.Join(l.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	pcm, srcRate, channels, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if channels > 1 {
		pcm = downmixMono(pcm, channels)
	}
	if srcRate != l.rate {
		pcm = Resample(pcm, srcRate, l.rate)
	}

	c := &Clip{Key: key, PCM: pcm}
	l.clips[key] = c
	l.log.Debug("library: loaded %s (%d bytes PCM)", key, len(pcm))
	return c, nil
}

// Preload decodes every known asset up front. Missing or broken files are
// logged and skipped — they fall back to TTS at prompt time.
func (l *Library) Preload() {
	for key := range l.assets {
		if _, err := l.Clip(key); err != nil {
			l.log.Warn("library: preload %s failed: %v", key, err)
		}
	}
}

// DecodeWAV walks the RIFF chunks of a 16-bit PCM WAV file and returns the
// raw sample data plus the sample rate and channel count from the fmt chunk.
func DecodeWAV(wav []byte) (pcm []byte, rate, channels int, err error) {
	if len(wav) < 44 {
		return nil, 0, 0, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("not a valid WAV file")
	}

	rate = 0
	channels = 1
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		switch chunkID {
		case "fmt ":
			if pos+8+16 <= len(wav) {
				channels = int(binary.LittleEndian.Uint16(wav[pos+10 : pos+12]))
				rate = int(binary.LittleEndian.Uint32(wav[pos+12 : pos+16]))
			}
		case "data":
			start := pos + 8
			end := start + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			if rate == 0 {
				return nil, 0, 0, errors.New("data chunk before fmt chunk")
			}
			return wav[start:end], rate, channels, nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, 0, 0, errors.New("data chunk not found in WAV")
}

// downmixMono averages interleaved 16-bit channels into one.
func downmixMono(pcm []byte, channels int) []byte {
	frame := channels * 2
	frames := len(pcm) / frame
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		var sum int
		for c := 0; c < channels; c++ {
			off := i*frame + c*2
			sum += int(int16(binary.LittleEndian.Uint16(pcm[off : off+2])))
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(sum/channels)))
	}
	return out
}

// Resample converts 16-bit mono PCM from srcRate to dstRate by linear
// interpolation. Also used to speed playback up: resampling from an
// inflated source rate plays the same samples in less time.
func Resample(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	inFrames := len(pcm) / 2
	if inFrames < 2 {
		return pcm
	}
	outFrames := int(float64(inFrames) * float64(dstRate) / float64(srcRate))
	out := make([]byte, outFrames*2)
	step := float64(srcRate) / float64(dstRate)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= inFrames-1 {
			idx = inFrames - 2
			frac = 1
		}
		a := float64(int16(binary.LittleEndian.Uint16(pcm[idx*2:])))
		b := float64(int16(binary.LittleEndian.Uint16(pcm[(idx+1)*2:])))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(a+(b-a)*frac)))
	}
	return out
}
