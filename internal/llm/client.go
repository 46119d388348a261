package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

const (
	openRouterURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultRouterModel = "google/gemini-2.5-flash"
)

// Client handles communication with the OpenRouter chat completions API
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Request represents the API request structure
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float32  `json:"temperature,omitempty"`
}

// Response represents the API response structure
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Error   *APIErr  `json:"error,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Delta        Delta  `json:"delta"`
	Message      Delta  `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Delta represents a message delta in streaming response
type Delta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// APIErr is an error object embedded in a response body
type APIErr struct {
	Code    interface{} `json:"code"`
	Message string      `json:"message"`
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithEndpoint overrides the chat completions URL
func WithEndpoint(url string) ClientOption {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new OpenRouter client
func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	if model == "" {
		model = defaultRouterModel
	}

	c := &Client{
		apiKey:     apiKey,
		model:      model,
		endpoint:   openRouterURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the prompt as a single streamed request and returns the
// assembled completion
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OpenRouter API key is not configured")
	}

	body, err := json.Marshal(c.buildRequest(prompt, opts))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Title", "MediCloak PII Redaction")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	var out strings.Builder
	if err := NewStreamParser(resp.Body).ParseAll(func(chunk string) {
		out.WriteString(chunk)
	}); err != nil {
		return "", fmt.Errorf("parse stream: %w", err)
	}
	return out.String(), nil
}

// buildRequest constructs the API request
func (c *Client) buildRequest(prompt string, opts domain.GenerateOptions) *Request {
	temperature := opts.Temperature
	return &Request{
		Model: c.model,
		Messages: []Message{{
			Role:    "user",
			Content: []ContentPart{{Type: "text", Text: prompt}},
		}},
		Stream:      true,
		Temperature: &temperature,
	}
}

var _ domain.TextGenerator = (*Client)(nil)
