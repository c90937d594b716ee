package speech

import (
	"context"

	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
	speechmodel "github.com/viblyapp/vibly/backend/internal/model/speech"
)

// Service bundles the speech adapters behind one facade so the wiring layer
// deals with a single dependency for both directions of the audio path.
type Service struct {
	stt *WhisperClient
	tts *ElevenLabsClient
}

// NewService creates the speech facade.
func NewService(cfg config.SpeechConfig, log *zap.Logger) *Service {
	return &Service{
		stt: NewWhisperClient(cfg, log.Named("whisper")),
		tts: NewElevenLabsClient(cfg, log.Named("elevenlabs")),
	}
}

// Transcribe converts recorded audio into text.
func (s *Service) Transcribe(ctx context.Context, audio []byte, format, language string) (speechmodel.Transcription, error) {
	return s.stt.Transcribe(ctx, audio, format, language)
}

// Synthesize renders reply text into MPEG audio for the given voice.
func (s *Service) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	return s.tts.Synthesize(ctx, text, voiceID)
}
