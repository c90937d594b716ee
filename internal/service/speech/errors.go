package speech

import "errors"

var (
	// ErrTranscriptionFailed marks any speech-to-text failure: empty or
	// corrupt input, missing credentials, or an upstream error.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrSynthesisFailed marks any text-to-speech failure. The session treats
	// it as a degraded-but-successful turn, never as a turn failure.
	ErrSynthesisFailed = errors.New("synthesis failed")
)
