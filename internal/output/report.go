// Package output renders run summaries for people and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/threshold"
)

// maxBodyBytes caps the response body printed per task.
const maxBodyBytes = 1024

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- API Performance Test Results ---")
	fmt.Fprintf(w, "Total Count:       %d\n", stats.TotalCount)
	fmt.Fprintf(w, "OK Count:          %d\n", stats.OKCount)
	fmt.Fprintf(w, "NG Count:          %d\n", stats.NGCount)
	fmt.Fprintf(w, "OK Percent:        %.2f%%\n", stats.OKPercent)
	fmt.Fprintln(w, "\nOperate Time (ms):")
	fmt.Fprintf(w, "  Average:         %d\n", stats.AverageOperateTimeMs)
	fmt.Fprintf(w, "  Best:            %d\n", stats.BestOperateTimeMs)
	fmt.Fprintf(w, "  Worst:           %d\n", stats.WorstOperateTimeMs)
	if stats.P50OperateTimeMs > 0 || stats.P99OperateTimeMs > 0 {
		fmt.Fprintf(w, "  P50:             %d\n", stats.P50OperateTimeMs)
		fmt.Fprintf(w, "  P90:             %d\n", stats.P90OperateTimeMs)
		fmt.Fprintf(w, "  P99:             %d\n", stats.P99OperateTimeMs)
	}

	if rows := metrics.FlattenStatusCodes(stats.StatusCodes); len(rows) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		for _, row := range rows {
			fmt.Fprintf(w, "  %d: %d\n", row.Code, row.Count)
		}
	}

	if len(stats.Failures) > 0 {
		fmt.Fprintln(w, "\nLocal Failures:")
		categories := make([]string, 0, len(stats.Failures))
		for category := range stats.Failures {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(w, "  %s: %d\n", category, stats.Failures[category])
		}
	}
}

// PrintTaskDetails prints the operate time, status and response body of every task.
func PrintTaskDetails(w io.Writer, results []metrics.TestResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\n--- Task Details ---")
	for i, r := range results {
		fmt.Fprintf(w, "Task %d: status=%d operate_time=%dms body=%s\n", i+1, r.StatusCode, r.OperateTimeMs, renderBody(r.ResponseBody))
	}
}

// PrintThresholds prints one line per evaluated threshold.
func PrintThresholds(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	passed := 0
	for _, r := range results {
		if r.Pass {
			passed++
		}
	}
	fmt.Fprintf(w, "\nThresholds: %d/%d passed\n", passed, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, stats metrics.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func renderBody(body map[string]interface{}) string {
	if len(body) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	if len(raw) > maxBodyBytes {
		return string(truncate(raw, maxBodyBytes)) + "...(truncated)"
	}
	return string(raw)
}

// truncate cuts raw to at most n bytes without splitting a UTF-8 sequence.
func truncate(raw []byte, n int) []byte {
	if len(raw) <= n {
		return raw
	}
	for n > 0 && !utf8.RuneStart(raw[n]) {
		n--
	}
	return raw[:n]
}
