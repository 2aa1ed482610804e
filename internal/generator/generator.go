// Package generator produces answers to legal questions with a local
// Ollama model, retrying degenerate or failed responses a fixed number of
// times.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/valpere/legalease/internal/chunker"
	"github.com/valpere/legalease/internal/logging"
	"github.com/valpere/legalease/internal/metrics"
	"github.com/valpere/legalease/internal/postprocess"
)

const (
	// MaxAttempts is the total number of requests per answer.
	MaxAttempts = 2
	// ContextLimit bounds the document prefix embedded in the prompt.
	ContextLimit = 4000
	// MinTokens is exclusive: an answer needs more tokens than this.
	MinTokens = 5
	// Sentinel is shown in place of an answer when every attempt failed.
	Sentinel = "⚠️ No valid response received."
)

var ErrNoValidResponse = errors.New("no valid response received")

// Generator answers a question about a context passage in outputLang.
type Generator interface {
	Generate(ctx context.Context, model, context, question, outputLang string) (string, error)
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

type OllamaClient struct {
	baseURL string
	http    *resty.Client
	logger  *zap.Logger
}

// RequestTimeout splits a per-answer budget between the attempts, so a
// request that times out still leaves room for the retry.
func RequestTimeout(budget time.Duration) time.Duration {
	return budget / MaxAttempts
}

// NewOllamaClient creates a generator for the Ollama server at baseURL.
// timeout bounds a single request; see RequestTimeout.
func NewOllamaClient(baseURL string, timeout time.Duration, logger *zap.Logger) *OllamaClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.New().SetTimeout(timeout),
		logger:  logging.OrNop(logger),
	}
}

// Generate returns the first acceptable answer, or ErrNoValidResponse
// wrapping the last failure once MaxAttempts requests have been made.
func (c *OllamaClient) Generate(ctx context.Context, model, context, question, outputLang string) (string, error) {
	prompt := BuildPrompt(context, question, outputLang)

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		answer, err := c.complete(ctx, model, prompt)
		if err == nil {
			// The token rule applies to the response as the model sent it.
			n := postprocess.TokenCount(answer)
			if n > MinTokens {
				metrics.GenerationAttempts.WithLabelValues(model, metrics.OutcomeSuccess).Inc()
				return answer, nil
			}
			err = fmt.Errorf("degenerate answer with %d tokens", n)
			metrics.GenerationAttempts.WithLabelValues(model, metrics.OutcomeDegenerate).Inc()
		} else {
			metrics.GenerationAttempts.WithLabelValues(model, metrics.OutcomeError).Inc()
		}

		lastErr = err
		c.logger.Warn("generation attempt failed",
			zap.String("model", model),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %s: %v", ErrNoValidResponse, model, lastErr)
}

func (c *OllamaClient) complete(ctx context.Context, model, prompt string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.GenerationDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	}()

	var out ollamaResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ollamaRequest{Model: model, Prompt: prompt, Stream: false}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.baseURL + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama returned %s", resp.Status())
	}
	return strings.TrimSpace(postprocess.NormalizeNewlines(out.Response)), nil
}

// Models lists the models installed on the Ollama server.
func (c *OllamaClient) Models(ctx context.Context) ([]string, error) {
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).ForceContentType("application/json").Get(c.baseURL + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list models: ollama returned %s", resp.Status())
	}
	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// BuildPrompt assembles the generation prompt. The context is cut to
// ContextLimit runes.
func BuildPrompt(context, question, outputLang string) string {
	if outputLang == "" {
		outputLang = "en"
	}
	return fmt.Sprintf(`You are a professional legal assistant. Based on the document below, answer the question clearly and concisely. Use numbered points and put each point on its own line.

Respond in the language with ISO 639-1 code %q.

Document:
%s

Question:
%s`,
		outputLang,
		chunker.Truncate(context, ContextLimit),
		strings.TrimSpace(question),
	)
}
