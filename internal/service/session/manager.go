package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/model/persona"
)

// Deps collects the pipeline collaborators a session needs. Coach, Imager
// and Synthesizer are optional; a nil Synthesizer means text-only replies.
type Deps struct {
	Transcriber  Transcriber
	Completer    Completer
	Coach        Coach
	Imager       ImageGenerator
	Synthesizer  Synthesizer
	Language     func(role string) string
	HistoryLimit int
	Logger       *zap.Logger
}

// Manager owns the live sessions. Sessions are in-memory only; destroying
// one (or restarting the process) discards its conversation.
type Manager struct {
	personas persona.Store
	deps     Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager builds a session manager over the persona registry.
func NewManager(personas persona.Store, deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{
		personas: personas,
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Create provisions a session bound to a persona. An unknown persona aborts
// creation with ErrPersonaNotFound.
func (m *Manager) Create(personaID string) (*Session, error) {
	p, ok := m.personas.FindByID(personaID)
	if !ok {
		return nil, ErrPersonaNotFound
	}

	s := newSession(p, m.deps)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.deps.Logger.Info("session created",
		zap.String("sessionId", s.ID),
		zap.String("persona", personaID))
	return s, nil
}

// Get retrieves a live session by identifier.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Destroy closes a session and forgets it.
func (m *Manager) Destroy(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	s.Close()
	m.deps.Logger.Info("session destroyed", zap.String("sessionId", sessionID))
	return nil
}
