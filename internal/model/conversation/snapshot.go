package conversation

import "time"

// Snapshot is the read-only view of a session handed to the UI layer.
type Snapshot struct {
	SessionID   string    `json:"sessionId"`
	PersonaID   string    `json:"personaId"`
	ScenarioID  string    `json:"scenarioId,omitempty"`
	Messages    []Message `json:"messages"`
	Pending     []int64   `json:"pending"`
	Playback    string    `json:"playback"`
	Capturing   bool      `json:"capturing"`
	InterimText string    `json:"interimText,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
