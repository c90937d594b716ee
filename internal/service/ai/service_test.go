package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
	"github.com/viblyapp/vibly/backend/internal/model/conversation"
	"github.com/viblyapp/vibly/backend/internal/model/persona"
)

// chatStub fakes the chat completion endpoint and records the last request.
type chatStub struct {
	reply    string
	status   int
	lastReq  openai.ChatCompletionRequest
	requests int
}

func (s *chatStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		s.requests++
		if err := json.NewDecoder(r.Body).Decode(&s.lastReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if s.status != 0 {
			http.Error(w, `{"error": {"message": "boom"}}`, s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: s.reply}},
			},
		})
	}
}

func newTestService(t *testing.T, stub *chatStub, coachEnabled bool) *Service {
	t.Helper()

	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	svc, err := NewService(context.Background(), config.AIConfig{
		APIKey:       "sk-test",
		Model:        "gpt-4o-mini",
		BaseURL:      server.URL,
		HistoryLimit: 10,
		CoachEnabled: coachEnabled,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func testPersona() *persona.Persona {
	p := persona.Seed()[0]
	return &p
}

func TestCompleteBuildsPromptAndReturnsReply(t *testing.T) {
	stub := &chatStub{reply: "  What did you buy at the market?  "}
	svc := newTestService(t, stub, false)

	history := []conversation.Message{
		{Sender: conversation.SenderTutor, Text: "Hello!"},
		{Sender: conversation.SenderUser, Text: "Hi John."},
	}

	reply, err := svc.Complete(context.Background(), testPersona(), nil, history, "I went shopping.")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if reply != "What did you buy at the market?" {
		t.Errorf("expected trimmed reply, got %q", reply)
	}

	msgs := stub.lastReq.Messages
	if len(msgs) != 4 {
		t.Fatalf("expected system + 2 history + query, got %d messages", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "You are John") {
		t.Errorf("unexpected system message %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" || msgs[1].Content != "Hello!" {
		t.Errorf("tutor history must map to assistant role, got %+v", msgs[1])
	}
	if msgs[2].Role != "user" || msgs[2].Content != "Hi John." {
		t.Errorf("user history must map to user role, got %+v", msgs[2])
	}
	if msgs[3].Role != "user" || msgs[3].Content != "I went shopping." {
		t.Errorf("the query travels last, got %+v", msgs[3])
	}
}

func TestCompleteScenarioShapesSystemPrompt(t *testing.T) {
	stub := &chatStub{reply: "Andiamo!"}
	svc := newTestService(t, stub, false)

	p := testPersona()
	sc, _ := p.FindScenario("travel")

	if _, err := svc.Complete(context.Background(), p, &sc, nil, "hello"); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	system := stub.lastReq.Messages[0].Content
	if !strings.Contains(system, "Current lesson: Travel English") {
		t.Errorf("scenario missing from system prompt %q", system)
	}
}

func TestCompleteEmptyReply(t *testing.T) {
	stub := &chatStub{reply: "   "}
	svc := newTestService(t, stub, false)

	if _, err := svc.Complete(context.Background(), testPersona(), nil, nil, "hi"); !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	stub := &chatStub{status: http.StatusTooManyRequests}
	svc := newTestService(t, stub, false)

	if _, err := svc.Complete(context.Background(), testPersona(), nil, nil, "hi"); !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
}

func TestCritiqueThroughChain(t *testing.T) {
	stub := &chatStub{reply: `{"speechTip": "Mind the th sound.", "score": 6, "improvementTip": "Add an article."}`}
	svc := newTestService(t, stub, true)

	critique, err := svc.Critique(context.Background(), testPersona(), "I go to market")
	if err != nil {
		t.Fatalf("Critique returned error: %v", err)
	}
	if critique.Score != 6 || critique.SpeechTip != "Mind the th sound." {
		t.Errorf("unexpected critique %+v", critique)
	}

	user := stub.lastReq.Messages[len(stub.lastReq.Messages)-1]
	if !strings.Contains(user.Content, "I go to market") {
		t.Errorf("utterance missing from coach prompt %q", user.Content)
	}
	if !strings.Contains(user.Content, "English Tutor") {
		t.Errorf("language context missing from coach prompt %q", user.Content)
	}
}

func TestCritiqueFallsBackOnGarbage(t *testing.T) {
	stub := &chatStub{reply: "The student was fine, I suppose."}
	svc := newTestService(t, stub, true)

	critique, err := svc.Critique(context.Background(), testPersona(), "I like green apples a lot.")
	if err != nil {
		t.Fatalf("Critique returned error: %v", err)
	}
	if critique.Score != 7 {
		t.Errorf("expected heuristic score 7, got %d", critique.Score)
	}
}

func TestCritiqueFallsBackOnUpstreamError(t *testing.T) {
	stub := &chatStub{status: http.StatusInternalServerError}
	svc := newTestService(t, stub, true)

	critique, err := svc.Critique(context.Background(), testPersona(), "hello")
	if err != nil {
		t.Fatalf("a failing coach must not fail the turn, got %v", err)
	}
	if critique.ImprovementTip == "" {
		t.Error("heuristic fallback always carries a tip")
	}
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	if _, err := NewService(context.Background(), config.AIConfig{}, zap.NewNop()); err == nil {
		t.Fatal("expected an error without credentials")
	}
}
