// Package translator converts text between languages through a chain of
// backends (Google Cloud, MyMemory, a local Ollama model). Long texts are
// chunked, citations and markup are shielded, and finished translations
// are cached.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/legalease/internal/chunker"
	"github.com/valpere/legalease/internal/logging"
	"github.com/valpere/legalease/internal/metrics"
	"github.com/valpere/legalease/internal/placeholder"
)

type Translator struct {
	backends  []Backend
	cache     Cache
	chunkSize int
	timeout   time.Duration
	logger    *zap.Logger
}

type Option func(*Translator)

// WithCache enables lookups and writes to c.
func WithCache(c Cache) Option {
	return func(t *Translator) { t.cache = c }
}

func WithChunkSize(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.chunkSize = n
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(t *Translator) { t.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Translator) { t.logger = logging.OrNop(l) }
}

// New builds a Translator that tries backends in the given order.
func New(backends []Backend, opts ...Option) *Translator {
	t := &Translator{
		backends:  backends,
		chunkSize: chunker.DefaultChunkSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Backends returns the configured backends in fallback order.
func (t *Translator) Backends() []Backend {
	return t.backends
}

// Translate returns text rendered in target. Empty text and source == target
// are returned unchanged without calling any backend. source may be Auto.
func (t *Translator) Translate(ctx context.Context, text, target, source string) (string, error) {
	if text == "" || source == target {
		return text, nil
	}
	if source == "" {
		source = Auto
	}
	if len(t.backends) == 0 {
		return "", ErrNoBackend
	}

	if t.cache != nil {
		cached, ok, err := t.cache.Lookup(ctx, text, source, target)
		if err != nil {
			t.logger.Warn("translation cache lookup failed", zap.Error(err))
		} else if ok {
			metrics.TranslationCalls.WithLabelValues("cache", metrics.OutcomeCached).Inc()
			return cached, nil
		}
	}

	protected, spans := placeholder.Protect(text)

	chunks := chunker.Chunk(protected, t.chunkSize)
	parts := make([]string, 0, len(chunks))
	var used string
	for i, chunk := range chunks {
		out, backend, err := t.translateChunk(ctx, Request{Text: chunk, Source: source, Target: target})
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, out)
		used = backend
	}

	joined := strings.Join(parts, "\n\n")
	if missing := placeholder.Missing(joined, spans); len(missing) > 0 {
		t.logger.Warn("protected spans lost in translation",
			zap.Ints("markers", missing),
			zap.String("backend", used))
	}
	result := placeholder.Restore(joined, spans)

	if t.cache != nil {
		if err := t.cache.Remember(ctx, text, source, target, result, used); err != nil {
			t.logger.Warn("translation cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// translateChunk tries each backend in order and returns the first success.
func (t *Translator) translateChunk(ctx context.Context, req Request) (string, string, error) {
	var errs []error
	for _, b := range t.backends {
		callCtx := ctx
		cancel := func() {}
		if t.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, t.timeout)
		}
		out, err := b.Translate(callCtx, req)
		cancel()

		if err == nil && strings.TrimSpace(out) != "" {
			metrics.TranslationCalls.WithLabelValues(b.Name(), metrics.OutcomeSuccess).Inc()
			return out, b.Name(), nil
		}
		if err == nil {
			err = errors.New("empty translation")
		}
		metrics.TranslationCalls.WithLabelValues(b.Name(), metrics.OutcomeError).Inc()
		t.logger.Warn("translation backend failed",
			zap.String("backend", b.Name()),
			zap.String("source", req.Source),
			zap.String("target", req.Target),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}
	return "", "", errors.Join(errs...)
}

// Diagnostic is the display text substituted for a failed translation.
func Diagnostic(target string, err error) string {
	reason := strings.ReplaceAll(err.Error(), "\n", "; ")
	return fmt.Sprintf("Translation to %s failed: %s", target, reason)
}
