package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/torosent/apiperf/internal/config"
	"github.com/torosent/apiperf/internal/httpclient"
	"github.com/torosent/apiperf/internal/logging"
	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/output"
	"github.com/torosent/apiperf/internal/profile"
	"github.com/torosent/apiperf/internal/prompt"
	"github.com/torosent/apiperf/internal/request"
	"github.com/torosent/apiperf/internal/runner"
	"github.com/torosent/apiperf/internal/threshold"
	"github.com/torosent/apiperf/internal/tracing"
)

const (
	exitOK               = 0
	exitFatal            = 1
	exitThresholdsFailed = 2

	tracingShutdownTimeout = 5 * time.Second
)

var errThresholdsFailed = errors.New("one or more thresholds failed")

// env holds the process streams so tests can run the command in-process.
type env struct {
	stdout io.Writer
	stderr io.Writer
	asker  func() prompt.Asker
}

func main() {
	e := env{
		stdout: os.Stdout,
		stderr: os.Stderr,
		asker:  func() prompt.Asker { return prompt.NewAsker(os.Stdin, os.Stderr) },
	}
	os.Exit(exitCode(run(os.Args[1:], e), e.stderr))
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errThresholdsFailed):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitThresholdsFailed
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
}

func run(args []string, e env) error {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, e.stderr)
	if err != nil {
		return err
	}
	runID := logging.NewRunID()
	log := logging.ForRun(logger, runID)

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	if cfg.ReportFile != "" {
		return runReport(cfg, thresholds, e, log)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wizard *prompt.Wizard
	if cfg.Interactive {
		wizard = prompt.NewWizard(e.asker(), prompt.WithLogger(log))
	}

	reqCfg, err := resolveRequest(cfg, wizard)
	if err != nil {
		return err
	}
	log.Info("request settings:")
	logging.LogConfig(log, reqCfg)

	if err := saveProfile(cfg, wizard, reqCfg, log); err != nil {
		return err
	}

	results, err := execute(ctx, cfg, runID, reqCfg, log, progressWriter(e.stderr, logger.GetLevel()))
	if err != nil {
		log.WithError(err).Error("run aborted")
		return err
	}

	stats, err := metrics.Aggregate(results)
	if err != nil {
		return err
	}
	thresholdResults := threshold.NewEvaluator(thresholds).Evaluate(stats)

	// Output steps are independent: each one runs and failures are returned together.
	var failures []error
	if err := writeReports(cfg, e.stdout, stats, results, thresholdResults, log); err != nil {
		log.WithError(err).Error("report failed")
		failures = append(failures, err)
	}
	if err := saveResults(cfg, wizard, results, log); err != nil {
		log.WithError(err).Error("results not saved")
		failures = append(failures, err)
	}
	if err := writeArtifacts(cfg, runID, reqCfg, stats, results, thresholdResults, log); err != nil {
		failures = append(failures, err)
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}

	if !threshold.AllPassed(thresholdResults) {
		return errThresholdsFailed
	}
	log.Info("run completed")
	return nil
}

// progressWriter returns the terminal for the one line task counter. It is only
// used when info logs, which carry the same progress, are off.
func progressWriter(w io.Writer, level logrus.Level) io.Writer {
	f, ok := w.(*os.File)
	if !ok || level >= logrus.InfoLevel || !isatty.IsTerminal(f.Fd()) {
		return nil
	}
	return f
}

// execute runs the request taskLimit times and returns the ordered results.
func execute(ctx context.Context, cfg *config.Config, runID string, reqCfg request.Config, log *logrus.Entry, progress io.Writer) ([]metrics.TestResult, error) {
	enc, err := httpclient.ParseBodyEncoding(cfg.FormBody)
	if err != nil {
		return nil, err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing, attribute.String("apiperf.run_id", runID))
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	opts := []httpclient.ExecutorOption{
		httpclient.WithBodyEncoding(enc),
		httpclient.WithMaxBodySize(cfg.MaxBodyBytes),
	}
	if provider.Enabled() {
		opts = append(opts, httpclient.WithTracing(provider))
	}
	executor := httpclient.NewExecutor(httpclient.NewClient(cfg.Timeout, cfg.KeepAlive), opts...)

	r, err := runner.New(runner.Options{
		Config:   reqCfg,
		Executor: runner.WithLogging(executor, logging.FailureLogger{Log: log}),
		Progress: output.NewProgressReporter(log, progress).Report,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("starting %d calls to %s", reqCfg.TaskLimit(), reqCfg.URL())
	return r.Run(ctx)
}

func saveProfile(cfg *config.Config, wizard *prompt.Wizard, reqCfg request.Config, log *logrus.Entry) error {
	target := prompt.Target{Path: cfg.SaveProfile, Overwrite: cfg.Overwrite}
	if wizard != nil && target.Path == "" {
		chosen, ok, err := wizard.ProfileTarget()
		if err != nil {
			return err
		}
		if !ok {
			log.Info("request settings will not be saved")
			return nil
		}
		target = chosen
	}
	if target.Path == "" {
		return nil
	}
	if err := profile.SaveRequest(target.Path, reqCfg, target.Overwrite); err != nil {
		return err
	}
	log.WithField("path", target.Path).Info("profile saved")
	return nil
}

func saveResults(cfg *config.Config, wizard *prompt.Wizard, results []metrics.TestResult, log *logrus.Entry) error {
	target := prompt.Target{Path: cfg.ResultFile, Overwrite: cfg.Overwrite}
	if wizard != nil && target.Path == "" {
		chosen, ok, err := wizard.ResultTarget()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		target = chosen
	}
	if target.Path == "" {
		return nil
	}

	file, err := profile.NewResultFile(results)
	if err != nil {
		return err
	}
	if err := profile.SaveResults(target.Path, file, target.Overwrite); err != nil {
		return err
	}
	log.WithField("path", target.Path).Info("results saved")
	return nil
}
