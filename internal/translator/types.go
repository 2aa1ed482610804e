package translator

import (
	"context"
	"errors"
)

// Auto asks the backend to detect the source language.
const Auto = "auto"

var ErrNoBackend = errors.New("no translation backend configured")

type Request struct {
	Text   string
	Source string
	Target string
}

// Backend is one external translation service.
type Backend interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
	IsAvailable(ctx context.Context) error
}

// Cache stores finished translations keyed by source text and language pair.
type Cache interface {
	Lookup(ctx context.Context, text, source, target string) (string, bool, error)
	Remember(ctx context.Context, text, source, target, translated, backend string) error
}

// Glossary supplies preferred renderings of legal terms for a language pair.
type Glossary interface {
	GlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error)
}
