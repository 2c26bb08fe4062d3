// Package llm provides text completion used for video metadata and motion
// prompts, with fallback across providers.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Static errors for completion operations.
var (
	// ErrAPIKeyRequired is returned when a provider API key is not provided.
	ErrAPIKeyRequired = errors.New("llm: API key is required")
	// ErrEmptyPrompt is returned when there is nothing to complete.
	ErrEmptyPrompt = errors.New("llm: empty prompt")
	// ErrEmptyCompletion is returned when the provider returns no content.
	ErrEmptyCompletion = errors.New("llm: provider returned empty completion")
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// Completer defines the interface for a text completion backend.
type Completer interface {
	// Complete returns the model's response to a single-turn prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns a short provider identifier for logging.
	Name() string
}

// ChatCompleter runs completions through an OpenAI-compatible chat API.
type ChatCompleter struct {
	client *openai.Client
	model  string
	name   string
}

// Compile-time check that ChatCompleter implements Completer.
var _ Completer = (*ChatCompleter)(nil)

// NewOpenAICompleter creates a Completer backed by OpenAI.
func NewOpenAICompleter(apiKey string) (*ChatCompleter, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	return &ChatCompleter{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
		name:   "openai",
	}, nil
}

// NewGroqCompleter creates a Completer backed by Groq's OpenAI-compatible
// API.
func NewGroqCompleter(apiKey string) (*ChatCompleter, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &ChatCompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  "llama-3.1-8b-instant",
		name:   "groq",
	}, nil
}

// NewChatCompleter creates a Completer around an existing client. Used by
// tests and by callers pointing at a custom endpoint.
func NewChatCompleter(client *openai.Client, model, name string) *ChatCompleter {
	return &ChatCompleter{client: client, model: model, name: name}
}

// Complete sends the prompt as a single user message and returns the
// model's reply.
func (c *ChatCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: %s completion failed: %w", c.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// Name returns the provider identifier.
func (c *ChatCompleter) Name() string { return c.name }
