package runner

import (
	"context"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/request"
)

// FailureLogger logs synthetic results.
type FailureLogger interface {
	LogFailure(result metrics.TestResult)
}

// loggingExecutor wraps an Executor with failure logging.
type loggingExecutor struct {
	inner  Executor
	logger FailureLogger
}

// WithLogging wraps an Executor to log synthetic results.
func WithLogging(exec Executor, logger FailureLogger) Executor {
	if logger == nil {
		return exec
	}
	return &loggingExecutor{
		inner:  exec,
		logger: logger,
	}
}

func (l *loggingExecutor) Execute(ctx context.Context, cfg request.Config) metrics.TestResult {
	result := l.inner.Execute(ctx, cfg)
	if result.Synthetic() {
		l.logger.LogFailure(result)
	}
	return result
}
