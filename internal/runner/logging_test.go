package runner_test

import (
	"context"
	"testing"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/request"
	"github.com/torosent/apiperf/internal/runner"
)

type captureLogger struct {
	failures []metrics.TestResult
}

func (c *captureLogger) LogFailure(result metrics.TestResult) {
	c.failures = append(c.failures, result)
}

func TestWithLoggingReportsSyntheticResults(t *testing.T) {
	logger := &captureLogger{}
	exec := runner.WithLogging(&fakeExecutor{fail: map[int]bool{1: true}}, logger)

	cfg := newConfig(t, 3, 1)
	for i := 0; i < 3; i++ {
		exec.Execute(context.Background(), cfg)
	}

	if len(logger.failures) != 1 {
		t.Fatalf("expected 1 logged failure, got %d", len(logger.failures))
	}
	if logger.failures[0].Category != "transport" {
		t.Fatalf("unexpected category %q", logger.failures[0].Category)
	}
}

func TestWithLoggingNilLogger(t *testing.T) {
	inner := runner.ExecutorFunc(func(ctx context.Context, cfg request.Config) metrics.TestResult {
		return metrics.TestResult{StatusCode: 200}
	})
	if got := runner.WithLogging(inner, nil); got == nil {
		t.Fatal("WithLogging(nil logger) returned nil")
	}
}
