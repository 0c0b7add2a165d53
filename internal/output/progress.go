package output

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ProgressReporter reports completed tasks. It is installed as the runner's
// progress hook.
type ProgressReporter struct {
	log    logrus.FieldLogger
	writer io.Writer
}

// NewProgressReporter logs progress to log. When writer is not nil a one line
// counter is also redrawn on it.
func NewProgressReporter(log logrus.FieldLogger, writer io.Writer) *ProgressReporter {
	return &ProgressReporter{log: log, writer: writer}
}

// Report is called after every finished task.
func (p *ProgressReporter) Report(completed, total int) {
	percent := 0
	if total > 0 {
		percent = completed * 100 / total
	}
	if p.log != nil {
		p.log.WithFields(logrus.Fields{
			"completed": completed,
			"total":     total,
		}).Infof("completed task %d/%d (%d%%)", completed, total, percent)
	}
	if p.writer != nil {
		fmt.Fprintf(p.writer, "\rTasks: %d/%d (%d%%)", completed, total, percent)
		if completed == total {
			fmt.Fprintln(p.writer)
		}
	}
}
