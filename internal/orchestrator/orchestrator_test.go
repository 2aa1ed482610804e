package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	fn    func(ctx context.Context, model string) (string, error)
	calls atomic.Int32
}

func (m *mockGenerator) Generate(ctx context.Context, model, _, _, _ string) (string, error) {
	m.calls.Add(1)
	return m.fn(ctx, model)
}

var models = []Model{{Name: "llama3", Label: "LLaMA 3"}, {Name: "gemma", Label: "Gemma"}}

func TestExecute_FixedOrder(t *testing.T) {
	gen := &mockGenerator{fn: func(_ context.Context, model string) (string, error) {
		// The first model finishes last.
		if model == "llama3" {
			time.Sleep(30 * time.Millisecond)
		}
		return "answer from " + model, nil
	}}
	o := New(gen, models, Config{Timeout: time.Second})

	results := o.Execute(context.Background(), Request{Question: "q"})
	require.Len(t, results, 2)
	assert.Equal(t, "llama3", results[0].Model.Name)
	assert.Equal(t, "answer from llama3", results[0].Text)
	assert.Equal(t, "gemma", results[1].Model.Name)
	assert.Equal(t, "answer from gemma", results[1].Text)
	assert.Equal(t, 2, Succeeded(results))
}

func TestExecute_RunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	gen := &mockGenerator{fn: func(_ context.Context, model string) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		return model, nil
	}}
	o := New(gen, models, Config{})

	o.Execute(context.Background(), Request{})
	assert.EqualValues(t, 2, peak.Load())
}

func TestExecute_Sequential(t *testing.T) {
	var inFlight, peak atomic.Int32
	gen := &mockGenerator{fn: func(_ context.Context, model string) (string, error) {
		n := inFlight.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		inFlight.Add(-1)
		return model, nil
	}}
	o := New(gen, models, Config{Sequential: true})

	results := o.Execute(context.Background(), Request{})
	assert.EqualValues(t, 1, peak.Load())
	assert.Equal(t, "llama3", results[0].Text)
	assert.Equal(t, "gemma", results[1].Text)
}

func TestExecute_PartialFailure(t *testing.T) {
	gen := &mockGenerator{fn: func(_ context.Context, model string) (string, error) {
		if model == "gemma" {
			return "", errors.New("model not found")
		}
		return "ok", nil
	}}
	o := New(gen, models, Config{})

	results := o.Execute(context.Background(), Request{})
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 1, Succeeded(results))
}

func TestExecute_Timeout(t *testing.T) {
	gen := &mockGenerator{fn: func(ctx context.Context, _ string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	}}
	o := New(gen, models, Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	results := o.Execute(context.Background(), Request{})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
	assert.EqualValues(t, 2, gen.calls.Load())
}
