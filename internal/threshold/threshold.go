// Package threshold evaluates pass/fail assertions against the summary of a run.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/torosent/apiperf/internal/metrics"
)

// Threshold is one assertion such as "operate_time:p90 < 250".
type Threshold struct {
	Metric    string  // operate_time, requests or ok_percent
	Aggregate string  // e.g. avg, p99, ng, value
	Operator  string  // <, <=, >, >=, ==
	Value     float64 // expected value
	Raw       string  // input as written, for display
}

func (t Threshold) String() string { return t.Raw }

// Result is the outcome of evaluating one Threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

type extractor func(metrics.Stats) float64

// aggregates maps metric -> aggregate -> value extractor. Operate times are in
// milliseconds.
var aggregates = map[string]map[string]extractor{
	"operate_time": {
		"avg":   func(s metrics.Stats) float64 { return float64(s.AverageOperateTimeMs) },
		"best":  func(s metrics.Stats) float64 { return float64(s.BestOperateTimeMs) },
		"worst": func(s metrics.Stats) float64 { return float64(s.WorstOperateTimeMs) },
		"p50":   func(s metrics.Stats) float64 { return float64(s.P50OperateTimeMs) },
		"p90":   func(s metrics.Stats) float64 { return float64(s.P90OperateTimeMs) },
		"p99":   func(s metrics.Stats) float64 { return float64(s.P99OperateTimeMs) },
	},
	"requests": {
		"count": func(s metrics.Stats) float64 { return float64(s.TotalCount) },
		"ok":    func(s metrics.Stats) float64 { return float64(s.OKCount) },
		"ng":    func(s metrics.Stats) float64 { return float64(s.NGCount) },
	},
	"ok_percent": {
		"value": func(s metrics.Stats) float64 { return s.OKPercent },
	},
}

var pattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9]+(?:\.[0-9]+)?)$`)

// Parse parses "metric:aggregate operator value". Supported forms:
//
//	operate_time:{avg,best,worst,p50,p90,p99} < 500   (milliseconds)
//	requests:{count,ok,ng} == 10
//	ok_percent:value >= 99.5
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold")
	}

	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q (expected metric:aggregate operator value, e.g. 'operate_time:p90 < 500')", s)
	}
	metric, aggregate, operator := m[1], m[2], m[3]

	known, ok := aggregates[metric]
	if !ok {
		return Threshold{}, fmt.Errorf("unsupported metric %q (supported: %s)", metric, strings.Join(sortedKeys(aggregates), ", "))
	}
	if _, ok := known[aggregate]; !ok {
		return Threshold{}, fmt.Errorf("unsupported aggregate %q for %s (supported: %s)", aggregate, metric, strings.Join(sortedKeys(known), ", "))
	}
	if !validOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator %q (supported: <, <=, >, >=, ==)", operator)
	}
	value, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %w", m[4], err)
	}

	return Threshold{Metric: metric, Aggregate: aggregate, Operator: operator, Value: value, Raw: s}, nil
}

// ParseMultiple parses every entry and reports all failures together.
func ParseMultiple(inputs []string) ([]Threshold, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([]Threshold, 0, len(inputs))
	var problems []string
	for i, s := range inputs {
		t, err := Parse(s)
		if err != nil {
			problems = append(problems, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		out = append(out, t)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(problems, "; "))
	}
	return out, nil
}

// Evaluator checks a fixed set of thresholds.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate returns one Result per threshold, in order.
func (e *Evaluator) Evaluate(stats metrics.Stats) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}
	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluate(t, stats))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluate(t Threshold, stats metrics.Stats) Result {
	extract, ok := aggregates[t.Metric][t.Aggregate]
	if !ok {
		return Result{Threshold: t, Message: fmt.Sprintf("error: unsupported threshold %s:%s", t.Metric, t.Aggregate)}
	}
	actual := extract(stats)
	pass := compare(actual, t.Operator, t.Value)
	mark := "PASS"
	if !pass {
		mark = "FAIL"
	}
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: actual %.2f", mark, t.Raw, actual),
	}
}

func validOperator(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "==":
		return true
	}
	return false
}

func compare(actual float64, op string, expected float64) bool {
	const epsilon = 1e-9
	switch op {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
