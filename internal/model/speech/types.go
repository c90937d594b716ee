package speech

// Recording is a finished capture: the concatenated audio chunks produced by
// one start/stop pair, treated as an opaque blob from here on.
type Recording struct {
	Audio  []byte `json:"-"`
	Format string `json:"format"` // webm, ogg, mp3, wav
}

// Empty reports whether the recording carries no audio data at all.
func (r Recording) Empty() bool {
	return len(r.Audio) == 0
}

// Transcription is the authoritative speech-to-text result for one recording.
// SpeechTip and Score are optional upstream metadata; most transcription
// backends leave them unset and the coach fills them in later.
type Transcription struct {
	Text      string `json:"text"`
	SpeechTip string `json:"speechTip,omitempty"`
	Score     *int   `json:"score,omitempty"`
}
