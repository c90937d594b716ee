package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
	speechmodel "github.com/viblyapp/vibly/backend/internal/model/speech"
)

// WhisperClient transcribes recordings through the OpenAI audio API.
// It performs exactly one attempt per call; retry policy belongs to the
// session, which currently has none (the user simply re-records).
type WhisperClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewWhisperClient builds the transcription adapter from config.
func NewWhisperClient(cfg config.SpeechConfig, log *zap.Logger) *WhisperClient {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.WhisperBaseURL != "" {
		clientCfg.BaseURL = cfg.WhisperBaseURL
	}

	return &WhisperClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.WhisperModel,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:     log,
	}
}

// Transcribe converts one finished recording into text. The language hint is
// advisory; an unknown hint is passed through and Whisper auto-detects.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, format, language string) (speechmodel.Transcription, error) {
	if len(audio) == 0 {
		return speechmodel.Transcription{}, fmt.Errorf("%w: empty audio input", ErrTranscriptionFailed)
	}

	if format == "" {
		format = "webm"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: "recording." + format,
		Reader:   bytes.NewReader(audio),
		Language: language,
	})
	if err != nil {
		return speechmodel.Transcription{}, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return speechmodel.Transcription{}, fmt.Errorf("%w: no speech detected", ErrTranscriptionFailed)
	}

	c.log.Debug("transcribed recording",
		zap.Int("audioBytes", len(audio)),
		zap.String("language", language),
		zap.Int("textLen", len(text)))

	return speechmodel.Transcription{Text: text}, nil
}
