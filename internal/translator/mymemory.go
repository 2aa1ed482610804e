package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemoryBackend uses the free MyMemory API. An email raises the daily quota.
type MyMemoryBackend struct {
	baseURL string
	email   string
	http    *resty.Client
}

func NewMyMemoryBackend(baseURL, email string, timeout time.Duration) *MyMemoryBackend {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MyMemoryBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		http:    resty.New().SetTimeout(timeout),
	}
}

func (m *MyMemoryBackend) Name() string {
	return "mymemory"
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  any    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func (m *MyMemoryBackend) Translate(ctx context.Context, req Request) (string, error) {
	source := req.Source
	if source == "" || source == Auto {
		source = "Autodetect"
	}

	params := map[string]string{
		"q":        req.Text,
		"langpair": source + "|" + req.Target,
	}
	if m.email != "" {
		params["de"] = m.email
	}

	var out myMemoryResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		ForceContentType("application/json").
		Get(m.baseURL + "/get")
	if err != nil {
		return "", fmt.Errorf("mymemory request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("mymemory returned %s", resp.Status())
	}
	// responseStatus is a number on success and sometimes a string on error.
	if status := fmt.Sprint(out.ResponseStatus); status != "200" {
		return "", fmt.Errorf("mymemory error %s: %s", status, out.ResponseDetails)
	}
	if out.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("mymemory returned an empty translation")
	}
	return out.ResponseData.TranslatedText, nil
}

func (m *MyMemoryBackend) IsAvailable(ctx context.Context) error {
	_, err := m.Translate(ctx, Request{Text: "contract", Source: "en", Target: "fr"})
	return err
}
