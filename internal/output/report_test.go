package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/threshold"
)

func sampleStats() metrics.Stats {
	return metrics.Stats{
		TotalCount:           3,
		OKCount:              2,
		NGCount:              1,
		AverageOperateTimeMs: 10,
		BestOperateTimeMs:    10,
		WorstOperateTimeMs:   11,
		OKPercent:            66.67,
		P50OperateTimeMs:     10,
		P90OperateTimeMs:     11,
		P99OperateTimeMs:     11,
		StatusCodes:          map[int]int{200: 2, 400: 1},
		Failures:             map[string]int{"transport": 1},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleStats())

	out := buf.String()
	for _, want := range []string{
		"Total Count:       3",
		"OK Count:          2",
		"NG Count:          1",
		"OK Percent:        66.67%",
		"Average:         10",
		"Worst:           11",
		"P90:             11",
		"200: 2",
		"400: 1",
		"transport: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportOmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, metrics.Stats{TotalCount: 1, OKCount: 1, OKPercent: 100})

	out := buf.String()
	for _, unwanted := range []string{"P50", "Status Codes", "Local Failures"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("report should not contain %q:\n%s", unwanted, out)
		}
	}
}

func TestPrintTaskDetails(t *testing.T) {
	long := strings.Repeat("x", maxBodyBytes+10)
	results := []metrics.TestResult{
		{OperateTimeMs: 10, StatusCode: 200, ResponseBody: map[string]interface{}{"id": "7"}},
		metrics.FailureResult(3, "transport", "execution failed, execute failed"),
		{OperateTimeMs: 5, StatusCode: 200},
		{OperateTimeMs: 5, StatusCode: 200, ResponseBody: map[string]interface{}{"big": long}},
	}

	var buf bytes.Buffer
	PrintTaskDetails(&buf, results)

	out := buf.String()
	for _, want := range []string{
		`Task 1: status=200 operate_time=10ms body={"id":"7"}`,
		`Task 2: status=400 operate_time=3ms body={"error":"execution failed, execute failed"}`,
		`Task 3: status=200 operate_time=5ms body={}`,
		`...(truncated)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintTaskDetails(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty results, got %q", buf.String())
	}
}

func TestPrintTaskDetailsTruncatesOnRuneBoundary(t *testing.T) {
	// {"name":" is 9 bytes, so the cap falls inside a two byte rune.
	results := []metrics.TestResult{
		{OperateTimeMs: 1, StatusCode: 200, ResponseBody: map[string]interface{}{"name": strings.Repeat("é", maxBodyBytes)}},
	}
	var buf bytes.Buffer
	PrintTaskDetails(&buf, results)

	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatal("truncated body is not valid UTF-8")
	}
	_, body, _ := strings.Cut(out, "body=")
	body = strings.TrimSuffix(strings.TrimSpace(body), "...(truncated)")
	if len(body) != maxBodyBytes-1 {
		t.Errorf("printed %d body bytes, want %d", len(body), maxBodyBytes-1)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "abc", n: 5, want: "abc"},
		{in: "abc", n: 2, want: "ab"},
		{in: "aé", n: 2, want: "a"},
		{in: "é", n: 1, want: ""},
		{in: "日本", n: 4, want: "日"},
	}
	for _, tt := range tests {
		if got := string(truncate([]byte(tt.in), tt.n)); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPrintThresholds(t *testing.T) {
	ths, err := threshold.ParseMultiple([]string{"requests:ng == 0", "operate_time:avg < 50"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	results := threshold.NewEvaluator(ths).Evaluate(sampleStats())

	var buf bytes.Buffer
	PrintThresholds(&buf, results)

	out := buf.String()
	if !strings.Contains(out, "Thresholds: 1/2 passed") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if !strings.Contains(out, "FAIL requests:ng == 0") || !strings.Contains(out, "PASS operate_time:avg < 50") {
		t.Errorf("missing result lines:\n%s", out)
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleStats()); err != nil {
		t.Fatalf("PrintJSONReport() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for key, want := range map[string]interface{}{
		"totalCount":         float64(3),
		"averageOperateTime": float64(10),
		"okPercent":          66.67,
		"p99OperateTime":     float64(11),
	} {
		if decoded[key] != want {
			t.Errorf("%s = %v, want %v", key, decoded[key], want)
		}
	}
}
