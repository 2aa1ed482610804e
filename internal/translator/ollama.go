package translator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/valpere/legalease/internal/logging"
	"github.com/valpere/legalease/internal/placeholder"
	"github.com/valpere/legalease/internal/postprocess"
)

// OllamaBackend translates with a local model. Glossary terms for the
// language pair are injected into the prompt when a Glossary is set.
type OllamaBackend struct {
	baseURL  string
	model    string
	glossary Glossary
	http     *resty.Client
	logger   *zap.Logger
}

func NewOllamaBackend(baseURL, model string, timeout time.Duration, glossary Glossary, logger *zap.Logger) *OllamaBackend {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaBackend{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		glossary: glossary,
		http:     resty.New().SetTimeout(timeout),
		logger:   logging.OrNop(logger),
	}
}

func (o *OllamaBackend) Name() string {
	return "ollama"
}

func (o *OllamaBackend) Translate(ctx context.Context, req Request) (string, error) {
	var terms map[string]string
	if o.glossary != nil && req.Source != "" && req.Source != Auto {
		var err error
		terms, err = o.glossary.GlossaryTerms(ctx, req.Source, req.Target)
		if err != nil {
			o.logger.Warn("glossary lookup failed", zap.Error(err))
		}
	}

	body := map[string]any{
		"model":  o.model,
		"prompt": buildTranslationPrompt(req, terms),
		"stream": false,
	}

	var out struct {
		Response string `json:"response"`
	}
	resp, err := o.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post(o.baseURL + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama translate: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama translate: %s", resp.Status())
	}

	text := postprocess.Clean(out.Response)
	if text == "" {
		return "", fmt.Errorf("ollama translate: empty response")
	}
	return text, nil
}

func (o *OllamaBackend) IsAvailable(ctx context.Context) error {
	resp, err := o.http.R().SetContext(ctx).Get(o.baseURL + "/api/tags")
	if err != nil {
		return fmt.Errorf("ollama not available: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("ollama returned %s", resp.Status())
	}
	return nil
}

func buildTranslationPrompt(req Request, terms map[string]string) string {
	source := req.Source
	if source == "" || source == Auto {
		source = "the detected source language"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following legal text from %s to %s.\n", source, req.Target)
	b.WriteString("Keep numbering, line breaks and legal meaning intact.\n")
	if strings.Contains(req.Text, "[[") {
		b.WriteString(placeholder.Hint() + "\n")
	}

	if len(terms) > 0 {
		keys := make([]string, 0, len(terms))
		for k := range terms {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("\nUse these term translations:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s -> %s\n", k, terms[k])
		}
	}

	b.WriteString("\nOnly respond with the translation, nothing else.\n\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}
