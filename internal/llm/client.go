// Package llm calls Gemini for structured generation.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"OutreachLab/internal/metrics"
)

const DefaultModel = "gemini-2.5-flash"

var ErrEmptyResponse = errors.New("generation returned no text")

type Options struct {
	APIKey  string
	Model   string
	BaseURL string // overrides the API endpoint, used in tests

	RatePerSecond int
	RetryAttempts int
}

type Client struct {
	genai   *genai.Client
	model   string
	limiter *rate.Limiter
	retries int
	log     *zap.Logger
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = opts.RatePerSecond
	}

	return &Client{
		genai:   gc,
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
		retries: max(opts.RetryAttempts, 0),
		log:     logger,
	}, nil
}

// Invoke sends prompt with a JSON response schema and decodes the reply
// into out. Transport failures are retried with exponential backoff; a reply
// that does not decode is returned as is.
func (c *Client) Invoke(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	attempt := 0
	operation := func() error {
		attempt++
		start := time.Now()

		resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
		if err != nil {
			metrics.LLMCallDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			c.log.Warn("generation call failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		metrics.LLMCallDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return backoff.Permanent(ErrEmptyResponse)
		}

		if err := json.Unmarshal([]byte(text), out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode generation response: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retries)), ctx))
}
