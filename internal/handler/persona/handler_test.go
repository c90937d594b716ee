package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/viblyapp/vibly/backend/internal/model/persona"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	New(personaModel.NewMemoryStore(personaModel.Seed())).RegisterRoutes(r)
	return r
}

func TestListPersonas(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/personas")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var personas []personaModel.Persona
	if err := json.NewDecoder(resp.Body).Decode(&personas); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(personas) != 4 {
		t.Fatalf("expected 4 tutors, got %d", len(personas))
	}
}

func TestGetPersona(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/personas/marco")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var p personaModel.Persona
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if p.Name != "Marco" {
		t.Errorf("name = %q, want Marco", p.Name)
	}
	if len(p.Scenarios) == 0 {
		t.Error("persona payload should include its scenarios")
	}
}

func TestGetPersonaNotFound(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/personas/socrates")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPersonaJSONHidesInternals(t *testing.T) {
	data, err := json.Marshal(personaModel.Seed()[0])
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, hidden := range []string{"SystemPrompt", "systemPrompt", "VoiceID", "voiceId"} {
		if _, ok := raw[hidden]; ok {
			t.Errorf("field %s must not be exposed to the frontend", hidden)
		}
	}
}
