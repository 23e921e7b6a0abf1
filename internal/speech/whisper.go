package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
)

// Compile-time interface check.
var _ domain.Recognizer = (*WhisperRecognizer)(nil)

// WhisperOption configures the recognizer.
type WhisperOption func(*WhisperRecognizer)

// WithChunkDuration sets the length of each recording chunk.
func WithChunkDuration(d time.Duration) WhisperOption {
	return func(w *WhisperRecognizer) { w.chunk = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) WhisperOption {
	return func(w *WhisperRecognizer) { w.tempDir = dir }
}

// chunkTranscriber is one microphone recording cycle: Start opens the
// stream, Stop flushes and releases the audio device.
type chunkTranscriber interface {
	Start() error
	Stop()
}

// WhisperRecognizer captures one utterance through the microphone and
// transcribes it with a local Whisper model. It records fixed-length
// chunks and accumulates them until the speaker goes quiet or ctx ends,
// so one Listen call yields exactly one utterance.
type WhisperRecognizer struct {
	bin     string // whisper-cli executable
	model   string // GGML model path (pt-BR capable)
	tempDir string
	chunk   time.Duration
	log     *logger.Logger

	newTranscriber func(callback func(string), verbose bool) (chunkTranscriber, error)
}

// NewWhisperRecognizer creates a microphone-backed recognizer.
func NewWhisperRecognizer(bin, model string, log *logger.Logger, opts ...WhisperOption) *WhisperRecognizer {
	w := &WhisperRecognizer{
		bin:     bin,
		model:   model,
		tempDir: ".memorae-stt",
		chunk:   2 * time.Second,
		log:     log,
	}
	w.newTranscriber = func(callback func(string), verbose bool) (chunkTranscriber, error) {
		return audiotranscriber.NewTranscriber(w.bin, w.model, w.tempDir, "wav", callback, verbose)
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Listen records until the user finishes one utterance. Returns the
// transcript, or a *domain.CaptureError describing the failure.
func (w *WhisperRecognizer) Listen(ctx context.Context) (string, error) {
	// Empty chunks tolerated before and after speech has started. More
	// patience up front (the user may be thinking), less once they have
	// spoken (a short gap means they are done).
	const graceEmpty = 3
	const postSpeechEmpty = 1

	var parts []string
	emptyRuns := 0
	heardSpeech := false

	for {
		select {
		case <-ctx.Done():
			if heardSpeech {
				// Ceiling hit mid-utterance: keep what we have.
				return strings.Join(parts, " "), nil
			}
			return "", &domain.CaptureError{Kind: domain.CaptureAborted, Err: ctx.Err()}
		default:
		}

		chunk, err := w.recordChunk(ctx)
		if err != nil {
			return "", err
		}
		chunk = cleanTranscription(chunk)

		if chunk == "" {
			emptyRuns++
			limit := graceEmpty
			if heardSpeech {
				limit = postSpeechEmpty
			}
			if emptyRuns > limit {
				break
			}
			continue
		}

		emptyRuns = 0
		heardSpeech = true
		parts = append(parts, chunk)
	}

	if !heardSpeech {
		return "", &domain.CaptureError{Kind: domain.CaptureNoSpeech}
	}
	return strings.Join(parts, " "), nil
}

// recordChunk does one microphone recording cycle and returns its raw
// transcription.
func (w *WhisperRecognizer) recordChunk(ctx context.Context) (string, error) {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := w.log.Level() >= logger.LevelVerbose
	t, err := w.newTranscriber(callback, verbose)
	if err != nil {
		return "", captureErr(domain.CaptureDeviceMissing, err)
	}

	if err := t.Start(); err != nil {
		// Stop still has to run: it is what releases the audio device the
		// constructor acquired.
		t.Stop()
		return "", captureErr(domain.CaptureNotReadable, err)
	}

	select {
	case <-time.After(w.chunk):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return "", &domain.CaptureError{Kind: domain.CaptureAborted, Err: ctx.Err()}
	}

	t.Stop()
	wg.Wait()
	return result, nil
}

// captureErr tags a backend failure, upgrading obvious permission problems
// to the dedicated kind.
func captureErr(kind domain.CaptureKind, err error) *domain.CaptureError {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		kind = domain.CapturePermissionDenied
	}
	return &domain.CaptureError{Kind: kind, Err: err}
}

// cleanTranscription strips whitespace and the environmental annotations
// whisper produces for non-speech audio.
func cleanTranscription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)

	junk := []string{
		"[BLANK_AUDIO]", "[BLANK AUDIO]", "(silence)", "[silence]",
		"(no speech)", "[no speech]", "[Music]", "(music)",
		"(static)", "(background noise)", "(inaudible)",
	}
	for _, j := range junk {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
	}

	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
