package ai

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// condenseSystem steers the condensation model. The output replaces the raw
// history in future prompts, so it must keep anything the interviewer could
// still need to reference.
const condenseSystem = `You condense interview transcripts. Rewrite the conversation as a compact running summary that preserves: topics already covered, specific claims the candidate made, code or designs that were discussed, open threads the interviewer said they would return to, and the candidate's stated background. Write plain prose. Output only the summary.`

// AnthropicClient talks to the Anthropic Messages API. It serves both reply
// generation and transcript condensation, on separate models.
type AnthropicClient struct {
	client        anthropic.Client
	generateModel string
	condenseModel string
	maxTokens     int64
}

func NewAnthropicClient(apiKey, generateModel, condenseModel string, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		client:        anthropic.NewClient(option.WithAPIKey(apiKey)),
		generateModel: generateModel,
		condenseModel: condenseModel,
		maxTokens:     int64(maxTokens),
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, system string, msgs []Message) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.generateModel),
		Messages:  messages,
		MaxTokens: c.maxTokens,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropicClient.Generate: %w", err)
	}

	return textContent(msg), nil
}

func (c *AnthropicClient) Condense(ctx context.Context, transcript string) (string, error) {
	params := anthropic.MessageNewParams{
		Model: anthropic.Model(c.condenseModel),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(transcript)),
		},
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: condenseSystem}},
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropicClient.Condense: %w", err)
	}

	return textContent(msg), nil
}

func textContent(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
