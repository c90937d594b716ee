package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/config"
	"github.com/viblyapp/vibly/backend/internal/model/conversation"
	"github.com/viblyapp/vibly/backend/internal/model/persona"
)

// ErrCompletionFailed marks a failed or empty tutor reply.
var ErrCompletionFailed = errors.New("completion failed")

// Service encapsulates the language-model side of a lesson: the tutor reply
// chain, the coach critique chain, and scene image generation.
type Service struct {
	chatModel model.ChatModel
	client    *openai.Client
	chain     compose.Runnable[map[string]any, *schema.Message]
	critic    compose.Runnable[map[string]any, *schema.Message]
	cfg       config.AIConfig
	log       *zap.Logger
}

// NewService compiles the chains against a chat model built from config.
func NewService(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing OpenAI credentials, provide OPENAI_API_KEY and OPENAI_MODEL")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)
	chatModel := newOpenAIChatModel(client, cfg)

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile tutor chain: %w", err)
	}

	svc := &Service{
		chatModel: chatModel,
		client:    client,
		chain:     runnable,
		cfg:       cfg,
		log:       log,
	}

	if cfg.CoachEnabled {
		critic, err := compileCoachChain(ctx, chatModel)
		if err != nil {
			return nil, fmt.Errorf("failed to compile coach chain: %w", err)
		}
		svc.critic = critic
	}

	return svc, nil
}

// Complete generates the tutor reply for one turn. The caller hands over an
// already-bounded history window; older turns were dropped, not summarized.
func (s *Service) Complete(ctx context.Context, p *persona.Persona, scenario *persona.Scenario, history []conversation.Message, userText string) (string, error) {
	input := map[string]any{
		"system":  BuildSystemInstruction(p, scenario),
		"history": toHistoryMessages(history),
		"query":   userText,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	reply := strings.TrimSpace(response.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrCompletionFailed)
	}

	s.log.Debug("generated tutor reply",
		zap.String("persona", p.ID),
		zap.Int("historyLen", len(history)),
		zap.Int("replyLen", len(reply)))

	return reply, nil
}

func toHistoryMessages(messages []conversation.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Sender {
		case conversation.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case conversation.SenderTutor:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}
