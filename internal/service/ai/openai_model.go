package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/viblyapp/vibly/backend/internal/config"
)

// openAIChatModel adapts the OpenAI chat API to eino's model.ChatModel so the
// completion and coach chains can run against it.
type openAIChatModel struct {
	client      *openai.Client
	model       string
	temperature *float64
	topP        *float64
	maxTokens   *int
}

var _ model.ChatModel = (*openAIChatModel)(nil)

func newOpenAIChatModel(client *openai.Client, cfg config.AIConfig) *openAIChatModel {
	return &openAIChatModel{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate runs one non-streaming completion.
func (m *openAIChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	resp, err := m.client.CreateChatCompletion(ctx, m.buildRequest(input, false))
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai chat completion: no choices returned")
	}
	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

// Stream runs a streaming completion, forwarding content deltas.
func (m *openAIChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	stream, err := m.client.CreateChatCompletionStream(ctx, m.buildRequest(input, true))
	if err != nil {
		return nil, fmt.Errorf("openai chat stream: %w", err)
	}

	sr, sw := schema.Pipe[*schema.Message](8)
	go func() {
		defer sw.Close()
		defer stream.Close()
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send(nil, err)
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if closed := sw.Send(schema.AssistantMessage(chunk.Choices[0].Delta.Content, nil), nil); closed {
				return
			}
		}
	}()

	return sr, nil
}

// BindTools is required by model.ChatModel; tool calling is not used here.
func (m *openAIChatModel) BindTools(_ []*schema.ToolInfo) error {
	return errors.New("tool binding not supported")
}

func (m *openAIChatModel) buildRequest(input []*schema.Message, stream bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: toOpenAIMessages(input),
		Stream:   stream,
	}
	if m.temperature != nil {
		req.Temperature = float32(*m.temperature)
	}
	if m.topP != nil {
		req.TopP = float32(*m.topP)
	}
	if m.maxTokens != nil {
		req.MaxTokens = *m.maxTokens
	}
	return req
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case schema.System:
			role = openai.ChatMessageRoleSystem
		case schema.Assistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	return out
}
