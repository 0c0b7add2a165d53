package threshold

import (
	"strings"
	"testing"

	"github.com/torosent/apiperf/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError string
	}{
		{
			name:  "p90 operate time",
			input: "operate_time:p90 < 500",
			want:  Threshold{Metric: "operate_time", Aggregate: "p90", Operator: "<", Value: 500, Raw: "operate_time:p90 < 500"},
		},
		{
			name:  "ok percent without spaces",
			input: "ok_percent:value>=99.5",
			want:  Threshold{Metric: "ok_percent", Aggregate: "value", Operator: ">=", Value: 99.5, Raw: "ok_percent:value>=99.5"},
		},
		{
			name:  "ng count equality",
			input: "  requests:ng == 0 ",
			want:  Threshold{Metric: "requests", Aggregate: "ng", Operator: "==", Value: 0, Raw: "requests:ng == 0"},
		},
		{name: "empty", input: "", wantError: "empty threshold"},
		{name: "no aggregate", input: "operate_time < 5", wantError: "invalid threshold"},
		{name: "unknown metric", input: "latency:p90 < 5", wantError: "unsupported metric"},
		{name: "aggregate from other metric", input: "requests:p90 < 5", wantError: "unsupported aggregate \"p90\" for requests"},
		{name: "bad operator", input: "operate_time:avg != 5", wantError: "unsupported operator"},
		{name: "negative value", input: "operate_time:avg < -1", wantError: "invalid threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantError) {
					t.Fatalf("Parse(%q) error = %v, want %q", tt.input, err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	got, err := ParseMultiple([]string{"operate_time:avg < 100", "requests:count == 3"})
	if err != nil || len(got) != 2 {
		t.Fatalf("ParseMultiple() = %v, %v", got, err)
	}

	_, err = ParseMultiple([]string{"operate_time:avg < 100", "bogus", "requests:x > 1"})
	if err == nil {
		t.Fatal("ParseMultiple() expected error")
	}
	if !strings.Contains(err.Error(), "threshold[1]") || !strings.Contains(err.Error(), "threshold[2]") {
		t.Errorf("error should list every bad entry: %v", err)
	}

	if got, err := ParseMultiple(nil); got != nil || err != nil {
		t.Errorf("ParseMultiple(nil) = %v, %v", got, err)
	}
}

func TestEvaluate(t *testing.T) {
	stats := metrics.Stats{
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
	}

	tests := []struct {
		input    string
		wantPass bool
		actual   float64
	}{
		{"operate_time:avg <= 10", true, 10},
		{"operate_time:best == 10", true, 10},
		{"operate_time:worst < 11", false, 11},
		{"operate_time:p50 < 20", true, 10},
		{"operate_time:p99 > 10", true, 11},
		{"requests:count == 3", true, 3},
		{"requests:ok >= 3", false, 2},
		{"requests:ng == 0", false, 1},
		{"ok_percent:value > 66.66", true, 66.67},
		{"ok_percent:value >= 99", false, 66.67},
	}

	for _, tt := range tests {
		th, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.input, err)
		}
		results := NewEvaluator([]Threshold{th}).Evaluate(stats)
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		r := results[0]
		if r.Pass != tt.wantPass {
			t.Errorf("%s: Pass = %v, want %v (%s)", tt.input, r.Pass, tt.wantPass, r.Message)
		}
		if r.Actual != tt.actual {
			t.Errorf("%s: Actual = %v, want %v", tt.input, r.Actual, tt.actual)
		}
		if !strings.Contains(r.Message, tt.input) {
			t.Errorf("%s: message %q should echo the threshold", tt.input, r.Message)
		}
	}
}

func TestEvaluateUnknownThreshold(t *testing.T) {
	results := NewEvaluator([]Threshold{{Metric: "nope", Aggregate: "x", Operator: "<", Raw: "nope:x < 1"}}).Evaluate(metrics.Stats{})
	if len(results) != 1 || results[0].Pass || !strings.HasPrefix(results[0].Message, "error:") {
		t.Fatalf("unexpected result %+v", results)
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed(nil) {
		t.Error("AllPassed(nil) = false")
	}
	if AllPassed([]Result{{Pass: true}, {Pass: false}}) {
		t.Error("AllPassed with a failure = true")
	}
}

func TestCompare(t *testing.T) {
	if !compare(1.0000000001, "==", 1) {
		t.Error("== should tolerate epsilon differences")
	}
	if compare(1, "<>", 1) {
		t.Error("unknown operator should fail")
	}
}
