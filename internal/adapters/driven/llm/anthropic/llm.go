// Package anthropic implements driven.LLMService on the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	apiVersion       = "2023-06-01"
	jsonSystemPrompt = "Respond with a single JSON object and nothing else."
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	APIKey  string // required
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService talks to /v1/messages with a plain HTTP client.
type LLMService struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate sends prompt as a single user turn.
//
// With opts.JSON the assistant turn is prefilled with "{" so the model
// starts the object immediately; the brace is put back on the reply.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if opts.JSON {
		req.System = jsonSystemPrompt
		req.Messages = append(req.Messages, message{Role: "assistant", Content: "{"})
	}

	var resp messagesResponse
	if err := s.do(ctx, http.MethodPost, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: empty reply (stop reason %q)", resp.StopReason)
	}

	reply := text.String()
	if opts.JSON && !strings.HasPrefix(strings.TrimSpace(reply), "{") {
		reply = "{" + reply
	}
	return reply, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.do(ctx, http.MethodGet, "/v1/models", nil, nil); err != nil {
		return fmt.Errorf("anthropic: ping: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}

// do sends one authenticated request. A nil body sends none; a nil out
// discards the reply.
func (s *LLMService) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("anthropic: encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: read reply: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("anthropic: decode reply: %w", err)
	}
	return nil
}

// statusError describes a non-2xx reply. Client errors other than rate
// limiting and timeouts wrap driven.ErrRequestRejected.
func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		detail = er.Error.Type + ": " + er.Error.Message
	}

	switch {
	case status == http.StatusTooManyRequests, status == http.StatusRequestTimeout, status >= 500:
		return fmt.Errorf("anthropic: status %d: %s", status, detail)
	default:
		return fmt.Errorf("anthropic: status %d: %s: %w", status, detail, driven.ErrRequestRejected)
	}
}
