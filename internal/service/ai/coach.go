package ai

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/model/conversation"
	"github.com/viblyapp/vibly/backend/internal/model/persona"
)

// Braces are avoided here: the template engine treats them as placeholders.
const coachSystemPrompt = `You are a language coach grading a single student utterance.
Respond with a strict JSON object only, no markdown, containing exactly these keys:
"speechTip" - one short tip on pronunciation or phrasing,
"score" - an integer from 0 to 10,
"improvementTip" - one concrete way to say it better.
Keep each tip under 25 words. Grade fluency and naturalness, not opinions.`

const coachUserPrompt = `Language being practiced: {language}
Student utterance: "{utterance}"`

func compileCoachChain(ctx context.Context, chatModel model.ChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(coachSystemPrompt),
		schema.UserMessage(coachUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

// Critique asks the coach chain for feedback on the student's last utterance.
// Best-effort: when the chain is disabled or fails, a heuristic grade is
// returned instead so a turn always gets some feedback.
func (s *Service) Critique(ctx context.Context, p *persona.Persona, utterance string) (conversation.Critique, error) {
	if s.critic == nil {
		return heuristicCritique(utterance), nil
	}

	input := map[string]any{
		"language":  p.Role,
		"utterance": strings.TrimSpace(utterance),
	}

	msg, err := s.critic.Invoke(ctx, input)
	if err != nil {
		s.log.Warn("coach critique failed, using heuristic grade", zap.Error(err))
		return heuristicCritique(utterance), nil
	}

	critique, ok := parseCritique(msg.Content)
	if !ok {
		s.log.Warn("coach returned unparseable critique", zap.String("raw", msg.Content))
		return heuristicCritique(utterance), nil
	}

	return critique, nil
}

// parseCritique decodes the coach's JSON, tolerating markdown code fences.
func parseCritique(raw string) (conversation.Critique, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var critique conversation.Critique
	if err := json.Unmarshal([]byte(cleaned), &critique); err != nil {
		return conversation.Critique{}, false
	}

	if critique.Score < 0 {
		critique.Score = 0
	}
	if critique.Score > 10 {
		critique.Score = 10
	}

	return critique, true
}

// heuristicCritique grades an utterance without the model: longer, complete
// sentences score higher. Crude, but keeps feedback flowing when the coach
// chain is unavailable.
func heuristicCritique(utterance string) conversation.Critique {
	words := len(strings.Fields(utterance))

	score := 4
	switch {
	case words >= 12:
		score = 8
	case words >= 6:
		score = 7
	case words >= 3:
		score = 5
	}

	trimmed := strings.TrimSpace(utterance)
	if trimmed != "" {
		last := rune(trimmed[len(trimmed)-1])
		if unicode.IsLetter(last) || unicode.IsDigit(last) {
			// No closing punctuation, likely a fragment.
			if score > 0 {
				score--
			}
		}
	}

	return conversation.Critique{
		Score:          score,
		ImprovementTip: "Try a full sentence with a subject and a verb, then add one detail.",
	}
}
