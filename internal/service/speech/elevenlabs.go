package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
)

// ElevenLabsClient synthesizes tutor replies into MPEG audio.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewElevenLabsClient builds the synthesis adapter from config.
func NewElevenLabsClient(cfg config.SpeechConfig, log *zap.Logger) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  cfg.ElevenLabsAPIKey,
		baseURL: cfg.ElevenLabsBaseURL,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     log,
	}
}

type synthesisPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders text with the given voice and returns raw MPEG bytes.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing ElevenLabs credentials", ErrSynthesisFailed)
	}
	if voiceID == "" {
		return nil, fmt.Errorf("%w: persona has no voice configured", ErrSynthesisFailed)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: nothing to synthesize", ErrSynthesisFailed)
	}

	payload, err := json.Marshal(synthesisPayload{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSynthesisFailed, resp.StatusCode, body)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	c.log.Debug("synthesized reply",
		zap.String("voiceId", voiceID),
		zap.Int("textLen", len(text)),
		zap.Int("audioBytes", len(audio)))

	return audio, nil
}
