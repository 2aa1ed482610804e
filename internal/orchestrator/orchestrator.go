// Package orchestrator runs the same question against several models at
// once and returns their answers in model order.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/valpere/legalease/internal/generator"
)

// Model pairs a backend model identifier with its display label.
type Model struct {
	Name  string
	Label string
}

type Config struct {
	// Timeout bounds each model's generation, retries included. Zero means
	// no limit beyond the caller's context.
	Timeout time.Duration
	// Sequential disables the fan-out; answers are identical either way.
	Sequential bool
}

type Request struct {
	Context    string
	Question   string
	OutputLang string
}

type Result struct {
	Model   Model
	Text    string
	Err     error
	Latency time.Duration
}

type Orchestrator struct {
	gen    generator.Generator
	models []Model
	config Config
}

func New(gen generator.Generator, models []Model, config Config) *Orchestrator {
	return &Orchestrator{gen: gen, models: models, config: config}
}

func (o *Orchestrator) Models() []Model {
	return o.models
}

// Execute asks every model and returns one Result per model, in the order
// the models were configured.
func (o *Orchestrator) Execute(ctx context.Context, req Request) []Result {
	results := make([]Result, len(o.models))

	if o.config.Sequential {
		for i, m := range o.models {
			results[i] = o.run(ctx, m, req)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, m := range o.models {
		wg.Add(1)
		go func(index int, model Model) {
			defer wg.Done()
			results[index] = o.run(ctx, model, req)
		}(i, m)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) run(ctx context.Context, m Model, req Request) Result {
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := o.gen.Generate(ctx, m.Name, req.Context, req.Question, req.OutputLang)
	return Result{Model: m, Text: text, Err: err, Latency: time.Since(start)}
}

// Succeeded counts results without an error.
func Succeeded(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n++
		}
	}
	return n
}
