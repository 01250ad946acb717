// Package llm implements the upstream explanation provider: a client for
// OpenAI-compatible chat-completion endpoints.
package llm

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
	defaultMaxTokens   = 400
	defaultTimeout     = 60 * time.Second
)

// Config configures the OpenAI client. Temperature and MaxTokens are fixed
// per client for reproducibility and cost control.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint
type OpenAIClient struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a client. The API key is required; everything
// else falls back to defaults.
func NewOpenAIClient(conf Config) (*OpenAIClient, error) {
	if conf.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}

	if conf.BaseURL == "" {
		conf.BaseURL = defaultBaseURL
	}
	if conf.Model == "" {
		conf.Model = defaultModel
	}
	if conf.Temperature == 0 {
		conf.Temperature = defaultTemperature
	}
	if conf.MaxTokens == 0 {
		conf.MaxTokens = defaultMaxTokens
	}
	if conf.Timeout == 0 {
		conf.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(conf.BaseURL).
		SetAuthToken(conf.APIKey).
		SetTimeout(conf.Timeout).
		SetHeader("Content-Type", "application/json")

	return &OpenAIClient{
		client:      client,
		model:       conf.Model,
		temperature: conf.Temperature,
		maxTokens:   conf.MaxTokens,
	}, nil
}

// Complete sends the system and user prompts and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var out chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")

	if err != nil {
		return "", errors.Wrap(err, "chat completion request failed")
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", errors.Errorf("chat completion rejected: %s", out.Error.Message)
	}
	if resp.IsError() {
		return "", errors.Errorf("chat completion failed with status %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}
