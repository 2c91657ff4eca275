package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned when the coach is not configured.
var ErrDisabled = errors.New("coach: not configured")

// ClientConfig holds connection parameters for an OpenAI-compatible
// chat-completions endpoint.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client implements Coach against a chat-completions API.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client. BaseURL should not include the
// /chat/completions suffix.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger.With(slog.String("component", "coach")),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one system/user exchange and returns the assistant's reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrDisabled
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("coach: marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("coach: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("coach: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("coach: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("coach: decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("coach: api error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("coach: empty response")
	}

	c.logger.DebugContext(ctx, "completion received",
		slog.String("model", c.cfg.Model),
		slog.Duration("elapsed", time.Since(start)),
	)

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Compile-time interface check.
var _ Coach = (*Client)(nil)
