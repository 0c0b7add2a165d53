package runner

import (
	"context"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/request"
)

// Executor performs one call. Failures are folded into the returned result.
type Executor interface {
	Execute(ctx context.Context, cfg request.Config) metrics.TestResult
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, cfg request.Config) metrics.TestResult

func (f ExecutorFunc) Execute(ctx context.Context, cfg request.Config) metrics.TestResult {
	return f(ctx, cfg)
}

// ProgressFunc is called after every task with the number of finished tasks.
type ProgressFunc func(completed, total int)

// Options configure the Runner.
type Options struct {
	Config   request.Config // shared, read-only request description (required)
	Executor Executor       // call executor (required)
	Pacer    Pacer          // pacing between tasks; a timer based pacer when nil
	Progress ProgressFunc   // optional progress hook
}

func (o *Options) normalize() {
	if o.Pacer == nil {
		o.Pacer = TimerPacer{}
	}
	if o.Progress == nil {
		o.Progress = func(int, int) {}
	}
}
