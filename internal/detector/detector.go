// Package detector identifies the language of a text as a lowercase
// ISO 639-1 code. Detection never fails outward: undetectable input yields
// DefaultLanguage.
package detector

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	lingua "github.com/pemistahl/lingua-go"
)

const DefaultLanguage = "en"

// Backend reports an ISO 639-1 code for text, or false when it cannot decide.
type Backend interface {
	Name() string
	DetectISO(text string) (string, bool)
}

type Detector struct {
	backend Backend
}

// New returns a Detector using the named backend ("lingua" or "whatlang").
func New(backend string) (*Detector, error) {
	switch backend {
	case "", "lingua":
		return &Detector{backend: NewLingua()}, nil
	case "whatlang":
		return &Detector{backend: NewWhatlang()}, nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", backend)
	}
}

// NewWithBackend wraps an arbitrary backend.
func NewWithBackend(b Backend) *Detector {
	return &Detector{backend: b}
}

func (d *Detector) Backend() string {
	return d.backend.Name()
}

// Detect returns the lowercase language code of text, or DefaultLanguage.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultLanguage
	}
	code, ok := d.backend.DetectISO(text)
	if !ok || code == "" {
		return DefaultLanguage
	}
	return strings.ToLower(code)
}

// DetectSample detects the language of at most the first n runes of text.
func (d *Detector) DetectSample(text string, n int) string {
	return d.Detect(Sample(text, n))
}

// Sample returns at most the first n runes of text. n <= 0 keeps all of it.
func Sample(text string, n int) string {
	if n <= 0 {
		return text
	}
	r := []rune(text)
	if len(r) > n {
		return string(r[:n])
	}
	return text
}

// Lingua is the default backend, built from all languages lingua knows.
type Lingua struct {
	detector lingua.LanguageDetector
}

func NewLingua() *Lingua {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Lingua{detector: detector}
}

func (l *Lingua) Name() string { return "lingua" }

func (l *Lingua) DetectISO(text string) (string, bool) {
	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok || lang == lingua.Unknown {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// Whatlang is a lighter trigram backend. Unreliable guesses are rejected.
type Whatlang struct {
	minConfidence float64
}

func NewWhatlang() *Whatlang {
	return &Whatlang{minConfidence: 0.3}
}

func (w *Whatlang) Name() string { return "whatlang" }

func (w *Whatlang) DetectISO(text string) (string, bool) {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" || info.Confidence < w.minConfidence {
		return "", false
	}
	return code, true
}
