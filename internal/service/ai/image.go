package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GenerateSceneImage renders an illustration of the place or object being
// discussed and returns it as a data URL. Best-effort enrichment: callers
// attach the result to the tutor message when it arrives and drop it on error.
func (s *Service) GenerateSceneImage(ctx context.Context, sceneHint string) (string, error) {
	if !s.cfg.ImageEnabled {
		return "", errors.New("image generation disabled")
	}

	prompt := "Generate an image showing the object or place discussed in this conversation: " + sceneHint

	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Model:          s.cfg.ImageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", errors.New("image generation: no image data returned")
	}

	s.log.Debug("generated scene image", zap.Int("promptLen", len(prompt)))

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}
