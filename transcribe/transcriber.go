package transcribe

import (
	"context"
	"errors"
)

// ErrRecognitionUnavailable reports that the recognition service could
// not be reached or failed to answer (network or service fault)
var ErrRecognitionUnavailable = errors.New("recognition unavailable")

// ErrSpeechUnrecognized reports that the recognizer produced no confident
// transcript for the audio
var ErrSpeechUnrecognized = errors.New("speech unrecognized")

// Transcriber turns recorded speech into transcript text. Implementations
// fail with ErrRecognitionUnavailable or ErrSpeechUnrecognized; both are
// data-quality failures for the analysis pipeline, never engine failures.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string) (string, error)
}

// Static is a Transcriber that returns a fixed transcript. Used when the
// caller already knows the spoken text (reference-script training) and in
// tests.
type Static struct {
	Text string
}

func (s Static) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	if s.Text == "" {
		return "", ErrSpeechUnrecognized
	}
	return s.Text, nil
}
