package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrUnknownAudio    = errors.New("unknown audio key")
	ErrDraftIncomplete = errors.New("reminder draft incomplete")
	// ErrPlaybackBlocked means the audio device refused to start playback
	// (the desktop analogue of a browser autoplay rejection). Callers fall
	// back to synthesized speech instead of failing the prompt.
	ErrPlaybackBlocked = errors.New("audio playback blocked")
	// ErrInterrupted settles playback requests abandoned by a barge-in.
	ErrInterrupted = errors.New("playback interrupted")
)

// CaptureKind is the closed set of recognition/microphone failure modes.
// The recognizer abstraction maps whatever its backend reports onto these
// so the conversation layer never branches on backend-specific strings.
type CaptureKind int

const (
	CaptureOther CaptureKind = iota
	CaptureNoSpeech
	CaptureAborted
	CapturePermissionDenied
	CaptureDeviceMissing
	CaptureNotReadable
)

// String returns a human-readable capture kind.
func (k CaptureKind) String() string {
	switch k {
	case CaptureNoSpeech:
		return "no-speech"
	case CaptureAborted:
		return "aborted"
	case CapturePermissionDenied:
		return "permission-denied"
	case CaptureDeviceMissing:
		return "device-missing"
	case CaptureNotReadable:
		return "not-readable"
	default:
		return "other"
	}
}

// CaptureError is a tagged recognition failure.
type CaptureError struct {
	Kind CaptureKind
	Err  error // optional underlying cause
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return "capture: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "capture: " + e.Kind.String()
}

func (e *CaptureError) Unwrap() error { return e.Err }

// KindOf extracts the capture kind from err, or CaptureOther when err is
// not a CaptureError.
func KindOf(err error) CaptureKind {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return CaptureOther
}

// Fatal reports whether the capture failure should end the attempt without
// an automatic retry (the user has to intervene).
func (k CaptureKind) Fatal() bool {
	return k == CapturePermissionDenied || k == CaptureDeviceMissing
}
