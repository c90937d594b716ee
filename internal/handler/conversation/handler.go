package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viblyapp/vibly/backend/internal/service/session"
	"github.com/viblyapp/vibly/backend/pkg/utils"
)

// Handler exposes session lifecycle, scenario selection, playback control,
// transcript download and the session event stream.
type Handler struct {
	sessions *session.Manager
}

// New creates the conversation handler.
func New(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleSnapshot)
		sr.Delete("/", h.handleDestroy)
		sr.Post("/scenario", h.handleSelectScenario)
		sr.Get("/transcript", h.handleTranscript)
		sr.Get("/events", h.handleEvents)
		sr.Post("/playback/pause", h.handlePause)
		sr.Post("/playback/resume", h.handleResume)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.PersonaID == "" {
		utils.RespondError(w, http.StatusBadRequest, "personaId is required")
		return
	}

	s, err := h.sessions.Create(payload.PersonaID)
	if err != nil {
		if errors.Is(err, session.ErrPersonaNotFound) {
			utils.RespondError(w, http.StatusBadRequest, "persona not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleDestroy(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.Destroy(sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "destroyed"})
}

func (h *Handler) handleSelectScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		ScenarioID string `json:"scenarioId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.SelectScenario(payload.ScenarioID); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "scenario not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("chat-with-%s-%s.txt", s.Persona().Name, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.Transcript()))
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	events, cancel := s.Subscribe()
	defer cancel()

	utils.SendSSEChunk(w, flusher, map[string]string{"type": "connected", "sessionId": s.ID})

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			utils.SendSSEChunk(w, flusher, ev)
		}
	}
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Playback().Pause()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"playback": string(s.Playback().State())})
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Playback().Resume()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"playback": string(s.Playback().State())})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}
