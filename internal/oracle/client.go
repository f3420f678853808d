package oracle

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel   = "openai/gpt-4o"
)

// ErrEmptyResponse is returned when the completion carries no text.
var ErrEmptyResponse = errors.New("oracle: empty response")

var tracer = otel.Tracer("oracle")

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type chatError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Client calls an OpenAI-compatible chat completions endpoint. It is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	model      string
	baseURL    string
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRateLimit spaces outgoing calls at rps per second with no burst.
// rps <= 0 disables the limit.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps <= 0 {
			cl.limiter = nil
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func NewClient(apiKey, model, baseURL string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   120 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends instruction as the system message and message as the user
// message, and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, instruction, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "oracle.complete")
	defer span.End()
	span.SetAttributes(attribute.String("oracle.model", c.model))

	activeRequests.Inc()
	defer activeRequests.Dec()

	start := time.Now()
	text, err := c.complete(ctx, instruction, message)
	observeCall(time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int("oracle.response_len", len(text)))
	return text, nil
}

func (c *Client) complete(ctx context.Context, instruction, message string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("oracle: waiting for rate limiter: %w", err)
		}
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("oracle: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("oracle: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("oracle: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("oracle: reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle: API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("oracle: parsing response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("oracle: API error: %s - %s", apiResp.Error.Type, truncate(apiResp.Error.Message, 200))
	}
	if apiResp.Usage != nil {
		observeTokens(apiResp.Usage.PromptTokens, apiResp.Usage.CompletionTokens)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}
	text := apiResp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: finish reason %q", ErrEmptyResponse, apiResp.Choices[0].FinishReason)
	}

	c.logger.Debug("oracle response received",
		"model", c.model,
		"finish_reason", apiResp.Choices[0].FinishReason,
		"response_len", len(text),
	)

	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
