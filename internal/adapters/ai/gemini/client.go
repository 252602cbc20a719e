// Package gemini calls Google's Gemini models to score developer profiles.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/metrics"
	"github.com/okian/hackbite/pkg/retry"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash-exp"

var (
	// ErrNoAPIKey is returned by New when the key is blank.
	ErrNoAPIKey = errors.New("gemini api key is required")
	// ErrEmptyPrompt is returned for a blank prompt.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates text with a Gemini model. It is safe for concurrent use.
type Client struct {
	models  contentGenerator
	model   string
	limiter *rate.Limiter
	retry   retry.Config
	logger  logger.Logger
}

// New creates a client for the Gemini API backend.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini.new: %w", err)
	}
	return newClient(gc.Models, model, opts...), nil
}

func newClient(models contentGenerator, model string, opts ...Option) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	c := &Client{
		models:  models,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		retry:   retry.Default,
		logger:  logger.Get().Named("gemini"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends prompt and returns the model's text, asking for a JSON reply.
// Calls are throttled by the client's limiter and retried on transient errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gemini.generate"

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyPrompt)
	}

	start := time.Now()
	out, err := retry.Do(ctx, c.retry, func(ctx context.Context) (string, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
		if err != nil {
			c.logger.Warn(ctx, "gemini call failed", logger.String("model", c.model), logger.Error(err))
			return "", classify(err)
		}
		return responseText(resp)
	})
	metrics.RecordAIRequest(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// classify exposes the HTTP status of API errors so retry can judge them.
func classify(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		if retry.RetryableStatus(apiErr.Code) {
			return fmt.Errorf("%w: %w", &retry.StatusError{StatusCode: apiErr.Code}, err)
		}
		return retry.Permanent(err)
	}
	return err
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", retry.Permanent(ErrEmptyResponse)
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	if b.Len() == 0 {
		return "", retry.Permanent(ErrEmptyResponse)
	}
	return b.String(), nil
}
