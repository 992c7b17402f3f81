// Package simplify rewrites text in plainer language through a hosted chat model.
package simplify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"readable/internal/upstream"
)

const (
	// DefaultModel is the hosted model used when none is configured.
	DefaultModel = "mistral-tiny"
	// DefaultBaseURL points at Mistral's OpenAI-compatible API.
	DefaultBaseURL = "https://api.mistral.ai/v1"

	SystemPrompt = "You simplify complex sentences into easier words while keeping the meaning."
)

var ErrAPIKeyRequired = errors.New("simplifier api key is required")

// Simplifier returns a simpler rewrite of text.
type Simplifier interface {
	Simplify(ctx context.Context, text string) (string, error)
}

// Config holds the connection settings of the chat-completion API.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// Client is a Simplifier backed by a langchaingo chat model.
// It is safe for concurrent use.
type Client struct {
	llm         llms.Model
	temperature float64
}

var _ Simplifier = (*Client)(nil)

// New builds a Client that talks to an OpenAI-compatible endpoint.
// httpClient may be nil; when set it carries the outbound instrumentation.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
		lcopenai.WithBaseURL(cfg.BaseURL),
	}
	if httpClient != nil {
		opts = append(opts, lcopenai.WithHTTPClient(httpClient))
	}

	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return NewWithModel(llm, cfg.Temperature), nil
}

// NewWithModel wraps an existing chat model.
func NewWithModel(llm llms.Model, temperature float64) *Client {
	return &Client{llm: llm, temperature: temperature}
}

// Prompt frames the user message sent to the model.
func Prompt(text string) string {
	return "Original: " + text + "\nSimplified:"
}

// Simplify sends text to the model and returns its trimmed reply. Every
// failure, an empty reply included, is an *upstream.Error.
func (c *Client) Simplify(ctx context.Context, text string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, Prompt(text)),
	}

	var opts []llms.CallOption
	if c.temperature > 0 {
		opts = append(opts, llms.WithTemperature(c.temperature))
	}

	resp, err := c.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", upstream.Wrap(upstream.ServiceSimplification, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", upstream.Wrap(upstream.ServiceSimplification, upstream.ErrEmptyResponse)
	}

	out := strings.TrimSpace(resp.Choices[0].Content)
	if out == "" {
		return "", upstream.Wrap(upstream.ServiceSimplification, upstream.ErrEmptyResponse)
	}
	return out, nil
}
