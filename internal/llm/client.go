package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// #region types

// Message is one chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries everything a single generation call needs.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Completer issues a single completion call. Implemented by Client and by
// test fakes.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// #endregion types

// #region config

// Config holds endpoint parameters for one model role.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns endpoint configuration from env vars:
// LLM_BASE_URL, LLM_API_KEY, LLM_MODEL, LLM_TIMEOUT (seconds).
func DefaultConfig() Config {
	cfg := Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 60 * time.Second,
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.Timeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// Validate reports a ConfigError for any missing required field.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Field: "api key"}
	}
	if c.BaseURL == "" {
		return &ConfigError{Field: "base url"}
	}
	if c.Model == "" {
		return &ConfigError{Field: "model"}
	}
	return nil
}

// #endregion config

// #region wire-format

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p,omitempty"`
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

// #endregion wire-format

// #region client-struct

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient validates the config and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg: cfg,
		// The transport's own timeout is a safety net; the hard
		// client-side timeout is the context deadline below.
		http: &http.Client{Timeout: cfg.Timeout + 15*time.Second},
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

// #endregion client-struct

// #region complete

// Complete sends one chat-completions request and returns the text of the
// first choice. Failures are classified into the transport error taxonomy.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Elapsed: time.Since(start)}
		}
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Elapsed: time.Since(start)}
		}
		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := parseRetryAfter(string(respBody))
		if wait == 0 {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		return "", &RateLimitError{RetryAfter: wait, Body: string(respBody)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Body: "unparseable response body"}
	}
	if parsed.Error != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Body: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: "no choices returned"}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// #endregion complete
