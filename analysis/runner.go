package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/xezoless/echosm/logging"
	"github.com/xezoless/echosm/response"
)

// Request selects which analysis modules to run on one recording
type Request struct {
	Intensity    bool   `json:"intensity"`
	Speechrate   bool   `json:"speechrate"`
	Intonation   bool   `json:"intonation"`
	Articulation bool   `json:"articulation"`
	RefText      string `json:"ref_text,omitempty"`
	MaxWorkers   int    `json:"max_workers,omitempty"`
}

// Any reports whether at least one module is selected
func (r Request) Any() bool {
	return r.Intensity || r.Speechrate || r.Intonation || r.Articulation
}

// Runner executes the selected analysis modules concurrently over a
// bounded worker pool. Each module produces an independent envelope; one
// module failing never aborts the others.
type Runner struct {
	pipeline *Pipeline
}

// NewRunner creates a runner over the given pipeline
func NewRunner(pipeline *Pipeline) *Runner {
	return &Runner{pipeline: pipeline}
}

// Run executes the requested modules against one audio file and returns
// an envelope per module keyed by module name. Panics inside a module are
// isolated and reported as that module's error envelope.
func (r *Runner) Run(ctx context.Context, audioPath string, req Request) map[string]any {
	logger := logging.WithFields(logging.Fields{
		"component": "analysis_runner",
		"audio":     audioPath,
	})

	type task struct {
		name string
		run  func(context.Context) any
	}

	var tasks []task
	if req.Intensity {
		tasks = append(tasks, task{"intensity", func(ctx context.Context) any {
			return r.pipeline.Intensity(ctx, audioPath)
		}})
	}
	if req.Speechrate {
		tasks = append(tasks, task{"speechrate", func(ctx context.Context) any {
			return r.pipeline.Speechrate(ctx, audioPath)
		}})
	}
	if req.Intonation {
		tasks = append(tasks, task{"intonation", func(ctx context.Context) any {
			return r.pipeline.Intonation(ctx, audioPath)
		}})
	}
	if req.Articulation {
		tasks = append(tasks, task{"articulation", func(ctx context.Context) any {
			return r.pipeline.Articulation(ctx, audioPath, req.RefText)
		}})
	}

	maxWorkers := req.MaxWorkers
	if maxWorkers <= 0 || maxWorkers > len(tasks) {
		maxWorkers = len(tasks)
	}

	results := make(map[string]any, len(tasks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := r.runIsolated(ctx, t.name, t.run, logger)

			mu.Lock()
			results[t.name] = result
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	return results
}

// runIsolated executes one module, converting a panic into an error
// envelope so a defect in one analysis cannot take down the batch
func (r *Runner) runIsolated(ctx context.Context, name string, run func(context.Context) any, logger logging.Logger) (result any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(nil, "analysis module panicked", logging.Fields{
				"module": name,
				"panic":  fmt.Sprint(rec),
			})
			result = response.NewError("Internal Error", fmt.Sprintf("%s analysis panicked: %v", name, rec))
		}
	}()

	return run(ctx)
}
