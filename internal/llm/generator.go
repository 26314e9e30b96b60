package llm

import (
	"context"
	"errors"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Generator is the single capability the transformation pipeline depends on:
// one prompt in, one completion out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Scoped is implemented by generators whose settings change the answer to a
// given prompt. Response caches fold the scope into their keys.
type Scoped interface {
	CacheScope() string
}

// ErrNoChoices indicates the model answered without any completion choice.
var ErrNoChoices = errors.New("model returned no choices")

// ChatGenerator sends the prompt as a single user message to a chat model.
type ChatGenerator struct {
	Client Client
	Model  string
	// SystemPrompt, when non-empty, is sent as a system message first.
	SystemPrompt string
	Temperature  float32
}

// CacheScope names the settings besides the prompt that shape the answer.
func (g *ChatGenerator) CacheScope() string {
	return g.SystemPrompt + "\n\ntemperature=" + strconv.FormatFloat(float64(g.Temperature), 'g', -1, 32)
}

// Generate returns the content of the first choice unmodified.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.Client == nil || strings.TrimSpace(g.Model) == "" {
		return "", errors.New("generator not configured")
	}
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(g.SystemPrompt) != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: g.SystemPrompt})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
	resp, err := g.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.Model,
		Messages:    msgs,
		Temperature: g.Temperature,
		N:           1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
