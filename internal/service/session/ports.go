package session

import (
	"context"

	"github.com/viblyapp/vibly/backend/internal/model/conversation"
	"github.com/viblyapp/vibly/backend/internal/model/persona"
	speechmodel "github.com/viblyapp/vibly/backend/internal/model/speech"
)

// Transcriber converts a finished recording into authoritative text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format, language string) (speechmodel.Transcription, error)
}

// Completer generates the tutor reply from the persona, the active scenario
// and an already-bounded history window.
type Completer interface {
	Complete(ctx context.Context, p *persona.Persona, scenario *persona.Scenario, history []conversation.Message, userText string) (string, error)
}

// Coach grades the student's utterance. Best-effort; a failing coach never
// fails the turn.
type Coach interface {
	Critique(ctx context.Context, p *persona.Persona, utterance string) (conversation.Critique, error)
}

// ImageGenerator illustrates the scene under discussion. Best-effort.
type ImageGenerator interface {
	GenerateSceneImage(ctx context.Context, sceneHint string) (string, error)
}

// Synthesizer renders reply text into audio for the persona's voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}
