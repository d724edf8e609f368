package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hetulpatel/moneylinearb/internal/logging"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 200
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 2
)

// Config for the match-resolution client. BaseURL may point at any
// OpenAI-compatible endpoint; empty means api.openai.com.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	JSONMode    bool
	// Retries applies to rate limits and 5xx responses only. Negative disables.
	Retries int
}

type Client struct {
	api     *openai.Client
	req     openai.ChatCompletionRequest
	timeout time.Duration
	retries int
	backoff time.Duration
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	apiCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		apiCfg.BaseURL = baseURL
	}

	req := openai.ChatCompletionRequest{
		Model:       firstNonEmpty(strings.TrimSpace(cfg.Model), defaultModel),
		MaxTokens:   cfg.MaxTokens,
		Temperature: max(cfg.Temperature, 0),
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if cfg.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	c := &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		req:     req,
		timeout: cfg.Timeout,
		retries: cfg.Retries,
		backoff: time.Second,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retries == 0 {
		c.retries = defaultRetries
	} else if c.retries < 0 {
		c.retries = 0
	}
	return c, nil
}

func (c *Client) Model() string {
	return c.req.Model
}

// Complete sends one system+user exchange and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm: client is nil")
	}
	if systemPrompt == "" || userPrompt == "" {
		return "", fmt.Errorf("llm: prompts must be provided")
	}

	req := c.req
	req.Messages = []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
			logging.Debugf("[llm] retry %d/%d after: %v", attempt, c.retries, lastErr)
		}

		text, err := c.once(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", lastErr
}

func (c *Client) once(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, req)
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	logging.Debugf("[llm] model=%s prompt_tokens=%d completion_tokens=%d", resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
