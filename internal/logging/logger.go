// Package logging builds the logrus logger used by apiperf and the log
// helpers shared by the command and the runner.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at the given level and format.
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	return logger, nil
}

// NewRunID returns a sortable identifier for one run.
func NewRunID() string {
	return ulid.Make().String()
}

// ForRun scopes logger to one run.
func ForRun(logger logrus.FieldLogger, runID string) *logrus.Entry {
	return logger.WithField("run_id", runID)
}
