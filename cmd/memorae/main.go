// Memorae — a voice-driven reminder assistant in Brazilian Portuguese.
//
// Usage:
//
//	memorae [-verbose] [-quiet] [-mute]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/memorae-app/memorae/internal/audio"
	"github.com/memorae-app/memorae/internal/conversation"
	"github.com/memorae-app/memorae/internal/display"
	"github.com/memorae-app/memorae/internal/domain"
	"github.com/memorae-app/memorae/internal/logger"
	"github.com/memorae-app/memorae/internal/speech"
	"github.com/memorae-app/memorae/internal/storage"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".memorae-logs/memorae.log", "file to write logs to (use \"stderr\" to log to console)")
	audioDir := flag.String("audio-dir", "assets/audio", "directory holding the pre-recorded prompt WAVs")
	mute := flag.Bool("mute", false, "start with synthesized speech muted (recorded prompts still play)")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	whisperBin := flag.String("whisper-bin", "whisper-cli", "path to the whisper-cpp CLI binary")
	whisperModel := flag.String("whisper-model", "bin/ggml-small.bin", "path to the Whisper GGML model file")
	recordSecs := flag.Int("record-secs", 2, "seconds per voice recording chunk")
	sttDir := flag.String("stt-dir", ".memorae-stt", "directory for temporary recording files")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the terminal UI stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs like the
	// whisper transcriber) to the same output so it doesn't spam the UI.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	if _, err := os.Stat(*whisperModel); err != nil {
		fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", *whisperModel)
		os.Exit(1)
	}
	os.MkdirAll(*sttDir, 0o755)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audio output: prompt library, playback device, serialized queue.
	library := audio.NewLibrary(*audioDir, audio.DefaultAssets, audio.SampleRate, log)
	library.Preload()

	player := audio.NewPlayer(log)
	if player.Blocked() {
		log.Warn("audio device unavailable, recorded prompts fall back to speech")
	}

	queue := audio.NewQueue(library, player, log)
	queue.Start(ctx)

	// Synthesized speech: Azure when configured, silent otherwise.
	var tts domain.Synthesizer
	azureKey := os.Getenv(speech.EnvAzureSpeechKey)
	azureRegion := os.Getenv(speech.EnvAzureSpeechRegion)
	if azureKey != "" && azureRegion != "" && !*noSpeech {
		tts = speech.NewAzureClient(azureKey, azureRegion, log)
		log.Info("TTS enabled (voice=%s, region=%s)", speech.DefaultVoice, azureRegion)
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
	}

	synth := speech.NewSynth(tts, player, log)
	synth.SetMuted(*mute)
	voice := speech.NewVoice(queue, synth, log)

	store := storage.NewMemoryStore(log)
	ui := display.NewUI()

	recognizer := speech.NewWhisperRecognizer(*whisperBin, *whisperModel, log,
		speech.WithChunkDuration(time.Duration(*recordSecs)*time.Second),
		speech.WithTempDir(*sttDir),
	)

	app := &voiceApp{
		voice:   voice,
		log:     log,
		ui:      ui,
		toggles: ui.ToggleChan(),
		presses: make(chan struct{}, 1),
		quit:    ui.QuitChan(),
	}

	app.engine = conversation.NewEngine(voice, app, store, ui,
		speech.NewFilter(log), log)
	app.sessions = speech.NewSessions(recognizer, app.engine.State, log)

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Pressione espaço para falar. 'q' encerra."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	voice.Stop()
	app.sessions.Stop()
}

// sessionControl is the slice of speech.Sessions the app loop drives.
type sessionControl interface {
	Start(ctx context.Context) bool
	Stop()
	Active() bool
	C() <-chan speech.Outcome
}

// surface is the slice of display.UI the app loop writes to.
type surface interface {
	domain.StatusSink
	PrintTranscript(text string)
	PrintHint(text string)
	PrintUrgent(text string)
}

// voiceApp glues the dialog engine to the microphone sessions and the UI.
// It also implements domain.Listener so the engine can schedule the next
// recognition turn after a slot advances.
type voiceApp struct {
	engine   *conversation.Engine
	sessions sessionControl
	voice    domain.Prompter
	log      *logger.Logger
	ui       surface

	toggles <-chan struct{} // raw push-to-talk presses from the UI
	presses chan struct{}   // presses forwarded to the run loop
	quit    <-chan struct{}

	ctx context.Context // set once in run
}

// Compile-time interface check.
var _ domain.Listener = (*voiceApp)(nil)

// Begin schedules the next recognition turn. Called by the engine after a
// prompt finished playing; non-blocking.
func (a *voiceApp) Begin(expected domain.ConversationState) {
	if a.ctx == nil {
		return
	}
	if a.sessions.Start(a.ctx) {
		a.ui.SetStatus(domain.StatusRecording)
		a.log.Debug("app: listening for %s", expected)
	}
}

func (a *voiceApp) run(ctx context.Context) {
	a.ctx = ctx
	go a.watchToggle(ctx)

	// Greeting, then wait for the push-to-talk key.
	a.engine.Welcome(ctx)
	a.ui.PrintHint("Diga \"criar lembrete\", \"editar lembrete\", \"excluir lembrete\" ou \"ver lembretes\".")
	a.ui.SetStatus(domain.StatusIdle)

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.quit:
			return
		case <-a.presses:
			a.toggle(ctx)
		case o := <-a.sessions.C():
			a.handleOutcome(ctx, o)
		}
	}
}

// watchToggle drains push-to-talk presses on its own goroutine. The run
// loop blocks inside prompts while audio plays, so barge-in has to happen
// here, the moment the key arrives; the press is then forwarded for the
// run loop to decide between opening and closing the microphone.
func (a *voiceApp) watchToggle(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.toggles:
			a.voice.Stop()
			select {
			case a.presses <- struct{}{}:
			default:
			}
		}
	}
}

// toggle is the push-to-talk key: stop a live session, or open the
// microphone. Playing audio was already cut by watchToggle.
func (a *voiceApp) toggle(ctx context.Context) {
	if a.sessions.Active() {
		a.sessions.Stop()
		a.ui.SetStatus(domain.StatusIdle)
		return
	}

	if a.sessions.Start(ctx) {
		a.ui.SetStatus(domain.StatusRecording)
	}
}

func (a *voiceApp) handleOutcome(ctx context.Context, o speech.Outcome) {
	if o.Err != nil {
		a.handleCaptureError(ctx, o.Err)
		return
	}

	a.ui.SetStatus(domain.StatusProcessing)
	a.ui.PrintTranscript(o.Transcript)
	a.engine.HandleTranscript(ctx, o.Transcript)
	// A slot advance reopens the microphone through Begin; only report
	// idle when no session came out of the turn.
	if !a.sessions.Active() {
		a.ui.SetStatus(domain.StatusIdle)
	}
}

func (a *voiceApp) handleCaptureError(ctx context.Context, err error) {
	a.ui.SetStatus(domain.StatusIdle)
	kind := domain.KindOf(err)
	a.log.Warn("capture failed (%s): %v", kind, err)

	switch {
	case kind == domain.CaptureNoSpeech:
		// The user opened the mic and said nothing. Stay quiet.
		return

	case kind.Fatal():
		// Permission or device problems don't fix themselves; explain once
		// and don't retry.
		line := speech.LineMicrophoneError()
		if kind == domain.CaptureDeviceMissing {
			line = speech.LineRecognizerUnavailable()
		}
		a.ui.PrintUrgent(line)
		if err := a.voice.Speak(ctx, line); err != nil {
			a.log.Warn("speak error line: %v", err)
		}

	default:
		// Transient trouble: ask for a retry and reopen the microphone,
		// unless we are at the top level where the user drives the mic.
		if err := a.voice.Prompt(ctx, speech.PromptRepeat()); err != nil {
			a.log.Warn("repeat prompt: %v", err)
		}
		if !a.engine.State().TopLevel() {
			a.Begin(a.engine.State())
		}
	}
}
