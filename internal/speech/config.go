package speech

import "time"

// The whole conversation runs in Brazilian Portuguese.
const Language = "pt-BR"

// Default voice for the TTS fallback.
const DefaultVoice = "pt-BR-FranciscaNeural"

// Audio format requested from Azure; matches the playback context.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// MaxSessionDuration is the hard ceiling on one recognition session,
// regardless of activity.
const MaxSessionDuration = 30 * time.Second

// MinResultAge guards against a recognizer delivering a result carried over
// from the previous turn: anything faster than this after session start is
// discarded as stale.
const MinResultAge = 500 * time.Millisecond
