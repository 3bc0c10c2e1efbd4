// Package llm sends summarization requests to an OpenRouter style chat
// completions API and classifies the ways they fail.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tovenaar/docsum/models"
)

const (
	completionsPath    = "/chat/completions"
	defaultTemperature = 0.7
	retryDelay         = 500 * time.Millisecond

	// OpenRouter reads these for app attribution.
	refererHeader = "https://github.com"
	titleHeader   = "Document Summarizer"
)

// Config carries the connection settings for a Client. Zero values fall
// back to the package defaults in models.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Rate    float64
}

// Client is a thin chat-completions caller. It owns request pacing: a
// token-bucket limiter gates every attempt, and transient failures get
// at most one retry after a short delay.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = models.DefaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = models.DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = models.DefaultTimeoutSec * time.Second
	}
	rps := cfg.Rate
	if rps <= 0 {
		rps = models.DefaultRate
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Model returns the model identifier requests are sent with.
func (c *Client) Model() string { return c.model }

// Summarize produces a summary of one document's text. The label (the
// filename and type) is woven into the prompt so the model knows what
// it is reading. Text must already fit the token budget.
func (c *Client) Summarize(ctx context.Context, text, label string, maxTokens int) (string, error) {
	return c.complete(ctx, summaryPrompt(text, label), maxTokens)
}

// MasterSummary synthesizes the combined per-document summaries into a
// single overview.
func (c *Client) MasterSummary(ctx context.Context, combined string, maxTokens int) (string, error) {
	return c.complete(ctx, masterPrompt(combined), maxTokens)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return "", &Error{Kind: KindTimeout, Err: ctx.Err()}
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &Error{Kind: KindTimeout, Err: err}
		}
		content, err := c.send(ctx, prompt, maxTokens)
		if err == nil {
			return content, nil
		}
		lastErr = err
		var ee *Error
		if !errors.As(err, &ee) || !ee.Transient() {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) send(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", refererHeader)
	req.Header.Set("X-Title", titleHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Kind: KindTimeout, Err: err}
		}
		return "", &Error{Kind: KindModelUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: KindMalformedResponse, Err: errors.New("no choices in response")}
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", &Error{Kind: KindMalformedResponse, Err: errors.New("empty completion")}
	}
	return content, nil
}

// statusError maps a non-200 status to a failure kind. Anything that is
// not rate limiting or a rejected key counts as the service being
// unavailable for this model.
func statusError(resp *http.Response) *Error {
	var kind Kind
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuthFailed
	default:
		kind = KindModelUnavailable
	}
	e := &Error{Kind: kind, Status: resp.StatusCode}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if msg := strings.TrimSpace(string(snippet)); msg != "" {
		e.Err = errors.New(msg)
	}
	return e
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
