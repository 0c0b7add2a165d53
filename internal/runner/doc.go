// Package runner provides the sequential execution engine of apiperf.
//
// A run is taskLimit calls against one request.Config. The runner executes them
// strictly in index order with at most one call in flight, so the measured
// operate time reflects only the endpoint under test:
//
//	r, err := runner.New(runner.Options{
//		Config:   cfg,
//		Executor: httpclient.NewExecutor(client),
//		Progress: func(done, total int) { log.Printf("%d/%d", done, total) },
//	})
//	results, err := r.Run(ctx)
//
// # Pacing
//
// After every task except the last the runner blocks for the configured wait time
// through its [Pacer]. Cancelling the context during that wait aborts the run with
// [ErrPacingInterrupted]; the results gathered so far are discarded. A call that is
// already in flight is never cancelled.
//
// # Failures
//
// Per-call failures never stop a run. The [Executor] folds them into a synthetic
// result with status 400, and [WithLogging] reports them to a [FailureLogger].
//
// # Lifecycle
//
// A Runner moves from [StatePending] through [StateRunning] to [StateCompleted],
// or to [StateAborted] when pacing is interrupted. It runs once.
package runner
