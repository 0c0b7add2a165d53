package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/torosent/apiperf/internal/config"
	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/output"
	"github.com/torosent/apiperf/internal/profile"
	"github.com/torosent/apiperf/internal/request"
	"github.com/torosent/apiperf/internal/threshold"
)

// runReport prints the summary of an existing result file.
func runReport(cfg *config.Config, thresholds []threshold.Threshold, e env, log *logrus.Entry) error {
	file, err := profile.LoadResults(cfg.ReportFile)
	if err != nil {
		return err
	}
	stats, same, err := file.Verify()
	if err != nil {
		return err
	}
	if !same {
		log.WithField("path", cfg.ReportFile).Warn("stored summary does not match the stored results; showing recomputed values")
	}

	thresholdResults := threshold.NewEvaluator(thresholds).Evaluate(stats)
	if err := writeReports(cfg, e.stdout, stats, file.Results, thresholdResults, log); err != nil {
		return err
	}
	if !threshold.AllPassed(thresholdResults) {
		return errThresholdsFailed
	}
	return nil
}

func writeReports(cfg *config.Config, w io.Writer, stats metrics.Stats, results []metrics.TestResult, thresholdResults []threshold.Result, log *logrus.Entry) error {
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(w, stats); err != nil {
			return err
		}
		for _, r := range thresholdResults {
			log.WithField("pass", r.Pass).Info(r.Message)
		}
		return nil
	}

	output.PrintTaskDetails(w, results)
	output.PrintReport(w, stats)
	output.PrintThresholds(w, thresholdResults)
	return nil
}

// writeArtifacts writes the optional Prometheus textfile and HTML report.
func writeArtifacts(cfg *config.Config, runID string, reqCfg request.Config, stats metrics.Stats, results []metrics.TestResult, thresholdResults []threshold.Result, log *logrus.Entry) error {
	var errs []error
	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile, stats, runID, reqCfg.URL()); err != nil {
			err = fmt.Errorf("metrics textfile: %w", err)
			log.WithError(err).Error("artifact not written")
			errs = append(errs, err)
		} else {
			log.WithField("path", cfg.MetricsTextfile).Info("metrics textfile written")
		}
	}

	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg.HTMLOutput, runID, reqCfg, stats, results, thresholdResults); err != nil {
			err = fmt.Errorf("html report: %w", err)
			log.WithError(err).Error("artifact not written")
			errs = append(errs, err)
		} else {
			log.WithField("path", cfg.HTMLOutput).Info("html report written")
		}
	}
	return errors.Join(errs...)
}

func writeHTMLReport(path, runID string, reqCfg request.Config, stats metrics.Stats, results []metrics.TestResult, thresholdResults []threshold.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = output.GenerateHTMLReport(f, stats, results, thresholdResults, output.ReportMetadata{
		RunID:     runID,
		TargetURL: reqCfg.URL(),
		Method:    string(reqCfg.Method()),
		WaitTime:  reqCfg.WaitTime(),
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}
