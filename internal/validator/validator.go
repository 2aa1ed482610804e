// Package validator checks that an answer is written in the language the
// user asked for, and re-translates it when it is not.
package validator

import (
	"context"
	"fmt"
	"strings"
)

// Detector returns a lowercase ISO 639-1 code and never fails.
type Detector interface {
	Detect(text string) string
}

type Translator interface {
	Translate(ctx context.Context, text, target, source string) (string, error)
}

type Validator struct {
	det Detector
	tr  Translator
}

func New(det Detector, tr Translator) *Validator {
	return &Validator{det: det, tr: tr}
}

// IsValid reports the detected language of text and whether it matches
// targetLang. An empty targetLang accepts anything.
func (v *Validator) IsValid(text, targetLang string) (string, bool) {
	detected := v.det.Detect(strings.TrimSpace(text))
	if targetLang == "" {
		return detected, true
	}
	return detected, strings.EqualFold(detected, targetLang)
}

// Enforce returns text unchanged when it is already in targetLang, and a
// translation into targetLang otherwise. The returned language is the one
// detected before any translation.
func (v *Validator) Enforce(ctx context.Context, text, targetLang string) (string, string, error) {
	detected, ok := v.IsValid(text, targetLang)
	if ok || strings.TrimSpace(text) == "" {
		return text, detected, nil
	}

	// The translation backend re-detects the source; short answers are
	// easy to misdetect locally.
	out, err := v.tr.Translate(ctx, text, targetLang, "auto")
	if err != nil {
		return "", detected, fmt.Errorf("enforce %s output: %w", targetLang, err)
	}
	return out, detected, nil
}
