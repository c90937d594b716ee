package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
)

func newTestElevenLabs(baseURL, apiKey string) *ElevenLabsClient {
	return NewElevenLabsClient(config.SpeechConfig{
		ElevenLabsAPIKey:  apiKey,
		ElevenLabsBaseURL: baseURL,
		TimeoutSeconds:    5,
	}, zap.NewNop())
}

func TestSynthesizeSendsExpectedRequest(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	var gotPayload synthesisPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotAccept = r.Header.Get("Accept")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Write([]byte("mpeg bytes"))
	}))
	defer server.Close()

	c := newTestElevenLabs(server.URL, "test-key")

	audio, err := c.Synthesize(context.Background(), "Ciao, come stai?", "S7L0uJpUCUDUktI3y5cw")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if !bytes.Equal(audio, []byte("mpeg bytes")) {
		t.Errorf("unexpected audio body: %q", audio)
	}
	if gotPath != "/v1/text-to-speech/S7L0uJpUCUDUktI3y5cw" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected xi-api-key header, got %q", gotKey)
	}
	if gotAccept != "audio/mpeg" {
		t.Errorf("expected Accept audio/mpeg, got %q", gotAccept)
	}
	if gotPayload.Text != "Ciao, come stai?" {
		t.Errorf("unexpected text %q", gotPayload.Text)
	}
	if gotPayload.ModelID != "eleven_monolingual_v1" {
		t.Errorf("unexpected model %q", gotPayload.ModelID)
	}
	if gotPayload.VoiceSettings.Stability != 0.5 || gotPayload.VoiceSettings.SimilarityBoost != 0.5 {
		t.Errorf("unexpected voice settings %+v", gotPayload.VoiceSettings)
	}
}

func TestSynthesizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestElevenLabs(server.URL, "test-key")

	if _, err := c.Synthesize(context.Background(), "hello", "missing-voice"); !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		text    string
		voiceID string
	}{
		{"missing key", "", "hello", "voice"},
		{"missing voice", "key", "hello", ""},
		{"empty text", "key", "", "voice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestElevenLabs("http://localhost:1", tt.apiKey)
			if _, err := c.Synthesize(context.Background(), tt.text, tt.voiceID); !errors.Is(err, ErrSynthesisFailed) {
				t.Fatalf("expected ErrSynthesisFailed, got %v", err)
			}
		})
	}
}
