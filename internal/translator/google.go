package translator

import (
	"context"
	"fmt"
	"html"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleBackend calls the Cloud Translation v2 API. Without a credentials
// file it relies on application default credentials.
type GoogleBackend struct {
	credentials string
	projectID   string
}

func NewGoogleBackend(credentials, projectID string) *GoogleBackend {
	return &GoogleBackend{credentials: credentials, projectID: projectID}
}

func (g *GoogleBackend) Name() string {
	return "google"
}

func (g *GoogleBackend) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if g.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentials))
	}
	if g.projectID != "" {
		opts = append(opts, option.WithQuotaProject(g.projectID))
	}
	return opts
}

func (g *GoogleBackend) Translate(ctx context.Context, req Request) (string, error) {
	target, err := language.Parse(req.Target)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", req.Target, err)
	}

	var opts *translate.Options
	if req.Source != "" && req.Source != Auto {
		source, err := language.Parse(req.Source)
		if err != nil {
			return "", fmt.Errorf("invalid source language %q: %w", req.Source, err)
		}
		opts = &translate.Options{Source: source, Format: translate.Text}
	} else {
		opts = &translate.Options{Format: translate.Text}
	}

	client, err := translate.NewClient(ctx, g.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to create google client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("google translate: no translation returned")
	}
	return html.UnescapeString(translations[0].Text), nil
}

// IsAvailable checks that a client can be built with the configured
// credentials.
func (g *GoogleBackend) IsAvailable(ctx context.Context) error {
	client, err := translate.NewClient(ctx, g.clientOptions()...)
	if err != nil {
		return fmt.Errorf("google credentials: %w", err)
	}
	return client.Close()
}
