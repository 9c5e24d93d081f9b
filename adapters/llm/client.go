package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"datalens/internal/errors"
)

// Config holds Groq client settings
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// GroqClient implements ports.ChatCompleter against the Groq
// OpenAI-compatible chat completions endpoint.
type GroqClient struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a Groq chat completions client
func NewClient(config Config) (*GroqClient, error) {
	if config.APIKey == "" {
		return nil, errors.ConfigInvalid("missing Groq API key")
	}
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://api.groq.com/openai/v1"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	return &GroqClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Model returns the configured model name
func (c *GroqClient) Model() string {
	return c.config.Model
}

// ChatCompletion sends one system + user exchange and returns the
// generated text.
func (c *GroqClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(c.config.Model) == "" {
		return "", errors.ConfigInvalid("missing model")
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: c.config.Model,
		Messages: []msg{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.ExternalServiceError("groq", fmt.Errorf("request timed out: %w", err))
		}
		return "", errors.ExternalServiceError("groq", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.ExternalServiceError("groq", fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", errors.Unauthorized("Groq API key was rejected")
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", errors.ExternalServiceError("groq", fmt.Errorf("rate limited: %s", string(respRaw)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", errors.ExternalServiceError("groq", fmt.Errorf("http %d: %s", resp.StatusCode, string(respRaw)))
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Choices []choice `json:"choices"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", errors.ExternalServiceError("groq", fmt.Errorf("unmarshal response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return "", errors.ExternalServiceError("groq", fmt.Errorf("response missing choices"))
	}
	return decoded.Choices[0].Message.Content, nil
}

// MockClient is a chat completer for testing
type MockClient struct {
	Response   string
	Err        error
	LastSystem string
	LastUser   string
	Calls      int
}

func (m *MockClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastUser = user
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "The dataset shows no unusual patterns.", nil
}
