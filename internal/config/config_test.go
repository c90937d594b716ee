package config

import (
	"testing"
)

func TestLoadServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		wantAddr string
		wantErr  bool
	}{
		{"default", "", ":8080", false},
		{"bare port", "9090", ":9090", false},
		{"addr passthrough", ":7070", ":7070", false},
		{"host and port", "127.0.0.1:8080", "127.0.0.1:8080", false},
		{"whitespace trimmed", "  8080  ", ":8080", false},
		{"garbage", "80 80", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)

			cfg, err := loadServerConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for PORT=%q", tt.port)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadServerConfig returned error: %v", err)
			}
			if cfg.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", cfg.Addr, tt.wantAddr)
			}
		})
	}
}

func TestLoadAIConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("CHAT_HISTORY_LIMIT", "")
	t.Setenv("COACH_ENABLED", "")
	t.Setenv("IMAGE_ENABLED", "")
	t.Setenv("OPENAI_TEMPERATURE", "")
	t.Setenv("OPENAI_TOP_P", "")
	t.Setenv("OPENAI_MAX_TOKENS", "")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig returned error: %v", err)
	}

	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q, want gpt-4o-mini", cfg.Model)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("default history limit = %d, want 10", cfg.HistoryLimit)
	}
	if !cfg.CoachEnabled {
		t.Error("coach should default to enabled")
	}
	if cfg.ImageEnabled {
		t.Error("image generation should default to disabled")
	}
	if cfg.Temperature != nil || cfg.TopP != nil || cfg.MaxTokens != nil {
		t.Error("unset sampling knobs must stay nil so API defaults apply")
	}
	if !cfg.Enabled() {
		t.Error("a key plus the default model should enable the AI side")
	}
}

func TestLoadAIConfigOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")
	t.Setenv("OPENAI_MAX_TOKENS", "512")
	t.Setenv("CHAT_HISTORY_LIMIT", "0")
	t.Setenv("COACH_ENABLED", "false")

	cfg, err := loadAIConfig()
	if err != nil {
		t.Fatalf("loadAIConfig returned error: %v", err)
	}

	if cfg.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", cfg.Model)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", cfg.Temperature)
	}
	if cfg.MaxTokens == nil || *cfg.MaxTokens != 512 {
		t.Errorf("maxTokens = %v, want 512", cfg.MaxTokens)
	}
	if cfg.HistoryLimit != 1 {
		t.Errorf("history limit below 1 clamps to 1, got %d", cfg.HistoryLimit)
	}
	if cfg.CoachEnabled {
		t.Error("coach override should disable it")
	}
}

func TestLoadAIConfigInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"OPENAI_TEMPERATURE", "warm"},
		{"OPENAI_MAX_TOKENS", "many"},
		{"COACH_ENABLED", "yes please"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "sk-test")
			t.Setenv(tt.key, tt.value)

			if _, err := loadAIConfig(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadSpeechConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")
	t.Setenv("ELEVENLABS_BASE_URL", "")
	t.Setenv("WHISPER_MODEL", "")
	t.Setenv("SPEECH_TIMEOUT", "")
	t.Setenv("TTS_ENABLED", "")

	cfg, err := loadSpeechConfig()
	if err != nil {
		t.Fatalf("loadSpeechConfig returned error: %v", err)
	}

	if cfg.WhisperModel != "whisper-1" {
		t.Errorf("default whisper model = %q", cfg.WhisperModel)
	}
	if cfg.ElevenLabsBaseURL != "https://api.elevenlabs.io" {
		t.Errorf("default ElevenLabs base URL = %q", cfg.ElevenLabsBaseURL)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("default timeout = %d, want 30", cfg.TimeoutSeconds)
	}
	if !cfg.TranscriptionEnabled() {
		t.Error("transcription should be enabled with an OpenAI key")
	}
	if !cfg.SynthesisEnabled() {
		t.Error("synthesis should be enabled with an ElevenLabs key and TTS on")
	}
}

func TestSynthesisDisabledWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("TTS_ENABLED", "true")

	cfg, err := loadSpeechConfig()
	if err != nil {
		t.Fatalf("loadSpeechConfig returned error: %v", err)
	}
	if cfg.SynthesisEnabled() {
		t.Error("synthesis must stay off without credentials")
	}
}

func TestSynthesisDisabledByFlag(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")
	t.Setenv("TTS_ENABLED", "false")

	cfg, err := loadSpeechConfig()
	if err != nil {
		t.Fatalf("loadSpeechConfig returned error: %v", err)
	}
	if cfg.SynthesisEnabled() {
		t.Error("TTS_ENABLED=false must turn synthesis off")
	}
}
