package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every setting the service needs.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Speech SpeechConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Speech: speech}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the language-model side: tutor completions, coach
// critiques and scene image generation.
type AIConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	HistoryLimit int
	CoachEnabled bool
	ImageEnabled bool
	ImageModel   string
}

// Enabled reports whether the required credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// SpeechConfig describes transcription and synthesis.
type SpeechConfig struct {
	OpenAIAPIKey   string
	WhisperModel   string
	WhisperBaseURL string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	TTSEnabled        bool

	TimeoutSeconds int
}

// TranscriptionEnabled reports whether speech-to-text credentials exist.
func (c SpeechConfig) TranscriptionEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// SynthesisEnabled reports whether text-to-speech is configured and turned on.
func (c SpeechConfig) SynthesisEnabled() bool {
	return c.TTSEnabled && c.ElevenLabsAPIKey != ""
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("OPENAI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	coachEnabled, err := parseBoolEnv("COACH_ENABLED", true)
	if err != nil {
		return AIConfig{}, err
	}

	imageEnabled, err := parseBoolEnv("IMAGE_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit := 10
	if limitOverride, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if limitOverride != nil {
		if *limitOverride < 1 {
			historyLimit = 1
		} else {
			historyLimit = *limitOverride
		}
	}

	return AIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:        getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL:      getEnvOrDefault("OPENAI_BASE_URL", ""),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		HistoryLimit: historyLimit,
		CoachEnabled: coachEnabled,
		ImageEnabled: imageEnabled,
		ImageModel:   getEnvOrDefault("IMAGE_MODEL", "dall-e-3"),
	}, nil
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	ttsEnabled, err := parseBoolEnv("TTS_ENABLED", true)
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		WhisperModel:      getEnvOrDefault("WHISPER_MODEL", "whisper-1"),
		WhisperBaseURL:    getEnvOrDefault("OPENAI_BASE_URL", ""),
		ElevenLabsAPIKey:  strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
		ElevenLabsBaseURL: getEnvOrDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		TTSEnabled:        ttsEnabled,
		TimeoutSeconds:    timeoutSeconds,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
