package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func ollamaServer(t *testing.T, calls *int32, reply func(n int32, req ollamaRequest) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, text := reply(n, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: text})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Success(t *testing.T) {
	var calls int32
	srv := ollamaServer(t, &calls, func(_ int32, req ollamaRequest) (int, string) {
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "What is the verdict?")
		return http.StatusOK, "1. Background: lease dispute.\r\n2. Verdict: tenant liable."
	})

	c := NewOllamaClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	got, err := c.Generate(context.Background(), "llama3", "Contract text", "What is the verdict?", "en")

	require.NoError(t, err)
	assert.Equal(t, "1. Background: lease dispute.\n2. Verdict: tenant liable.", got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGenerate_RetriesDegenerateOnce(t *testing.T) {
	var calls int32
	srv := ollamaServer(t, &calls, func(n int32, _ ollamaRequest) (int, string) {
		if n == 1 {
			return http.StatusOK, "too short"
		}
		return http.StatusOK, "The tenant must pay damages under clause four."
	})

	c := NewOllamaClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	got, err := c.Generate(context.Background(), "gemma", "ctx", "q", "en")

	require.NoError(t, err)
	assert.Equal(t, "The tenant must pay damages under clause four.", got)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGenerate_KeepsPreambleAnswer(t *testing.T) {
	var calls int32
	srv := ollamaServer(t, &calls, func(int32, ollamaRequest) (int, string) {
		return http.StatusOK, "  Here is the answer: tenant is liable.\r\n"
	})

	c := NewOllamaClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	got, err := c.Generate(context.Background(), "llama3", "ctx", "q", "en")

	require.NoError(t, err)
	assert.Equal(t, "Here is the answer: tenant is liable.", got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGenerate_SlowFirstAttemptIsRetried(t *testing.T) {
	budget := time.Second

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * budget):
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "The tenant must pay damages under clause four."})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	c := NewOllamaClient(srv.URL, RequestTimeout(budget), zaptest.NewLogger(t))
	got, err := c.Generate(ctx, "gemma", "ctx", "q", "en")

	require.NoError(t, err)
	assert.Equal(t, "The tenant must pay damages under clause four.", got)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRequestTimeout(t *testing.T) {
	budget := 2 * time.Minute
	assert.Equal(t, time.Minute, RequestTimeout(budget))
	assert.LessOrEqual(t, RequestTimeout(budget)*MaxAttempts, budget)
}

func TestGenerate_ExactlyTwoAttempts(t *testing.T) {
	tests := []struct {
		name   string
		status int
		text   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"degenerate", http.StatusOK, "one two three four five"},
		{"empty", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := ollamaServer(t, &calls, func(int32, ollamaRequest) (int, string) {
				return tt.status, tt.text
			})

			c := NewOllamaClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
			got, err := c.Generate(context.Background(), "llama3", "ctx", "q", "en")

			assert.ErrorIs(t, err, ErrNoValidResponse)
			assert.Empty(t, got)
			assert.EqualValues(t, MaxAttempts, atomic.LoadInt32(&calls))
			assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
		})
	}
}

func TestGenerate_MalformedBody(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	_, err := c.Generate(context.Background(), "llama3", "ctx", "q", "en")

	assert.ErrorIs(t, err, ErrNoValidResponse)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGenerate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewOllamaClient(url, time.Second, zaptest.NewLogger(t))
	_, err := c.Generate(context.Background(), "llama3", "ctx", "q", "en")
	assert.ErrorIs(t, err, ErrNoValidResponse)
}

func TestBuildPrompt(t *testing.T) {
	doc := strings.Repeat("a", ContextLimit+500)
	prompt := BuildPrompt(doc, "  Who is liable?  ", "fr")

	assert.Contains(t, prompt, "professional legal assistant")
	assert.Contains(t, prompt, `"fr"`)
	assert.Contains(t, prompt, "Question:\nWho is liable?")
	assert.Contains(t, prompt, strings.Repeat("a", ContextLimit))
	assert.NotContains(t, prompt, strings.Repeat("a", ContextLimit+1))
}

func TestBuildPrompt_MultibyteContext(t *testing.T) {
	doc := strings.Repeat("й", ContextLimit+10)
	prompt := BuildPrompt(doc, "q", "uk")
	assert.Equal(t, ContextLimit, strings.Count(prompt, "й"))
	assert.True(t, utf8.ValidString(prompt))
}

func TestModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"},{"name":"gemma:latest"}]}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, time.Second, nil)
	models, err := c.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:latest", "gemma:latest"}, models)
}
