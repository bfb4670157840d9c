package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jeonseguard/pkg/logger"
)

// Caller abstracts the external text-generation service. The analyzer
// depends on this interface so tests can substitute a fake.
type Caller interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMClient provides access to large language model APIs
type LLMClient struct {
	httpClient *http.Client
	logger     *logger.Logger
	config     LLMConfig
}

// LLMConfig holds LLM client configuration
type LLMConfig struct {
	Provider     string // claude, openai
	ClaudeAPIKey string
	OpenAIAPIKey string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// Configured reports whether a credential exists for the selected
// provider. Absence is a valid state that routes analysis to the
// rule-based path.
func (c LLMConfig) Configured() bool {
	switch c.Provider {
	case "claude":
		return c.ClaudeAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	default:
		return false
	}
}

// NewLLMClient creates a new LLM client
func NewLLMClient(cfg LLMConfig, log *logger.Logger) *LLMClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.2 // low temperature for document analysis
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Model == "" {
		if cfg.Provider == "claude" {
			cfg.Model = "claude-3-5-sonnet-20241022"
		} else {
			cfg.Model = "gpt-4-turbo"
		}
	}

	return &LLMClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.WithComponent("llm-client"),
		config:     cfg,
	}
}

// Model returns the configured model name
func (c *LLMClient) Model() string {
	return c.config.Model
}

// Complete sends a single-shot completion request. There is no retry:
// a failed call is reported to the caller, which falls back to the
// rule-based path.
func (c *LLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()

	var content string
	var err error
	switch c.config.Provider {
	case "claude":
		content, err = c.callClaude(ctx, system, user)
	case "openai":
		content, err = c.callOpenAI(ctx, system, user)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.config.Provider)
	}
	if err != nil {
		return "", err
	}

	c.logger.Debug().
		Str("provider", c.config.Provider).
		Str("model", c.config.Model).
		Int("response_len", len(content)).
		Dur("duration", time.Since(start)).
		Msg("completion received")

	return content, nil
}

// callClaude makes a request to the Claude messages API
func (c *LLMClient) callClaude(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]any{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"system":      system,
		"messages": []map[string]any{
			{"role": "user", "content": user},
		},
	}

	body, err := c.post(ctx, "https://api.anthropic.com/v1/messages", reqBody, map[string]string{
		"x-api-key":         c.config.ClaudeAPIKey,
		"anthropic-version": "2023-06-01",
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode Claude response: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content, nil
}

// callOpenAI makes a request to the OpenAI chat completions API
func (c *LLMClient) callOpenAI(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]any{
		"model":       c.config.Model,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	body, err := c.post(ctx, "https://api.openai.com/v1/chat/completions", reqBody, map[string]string{
		"Authorization": "Bearer " + c.config.OpenAIAPIKey,
	})
	if err != nil {
		return "", err
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode OpenAI response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *LLMClient) post(ctx context.Context, url string, reqBody map[string]any, headers map[string]string) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LLM API error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
