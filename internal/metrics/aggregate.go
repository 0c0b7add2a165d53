package metrics

import (
	"errors"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// ErrEmptyResultSet is returned when Aggregate is called without results.
var ErrEmptyResultSet = errors.New("no results to aggregate")

// highestOperateTimeMs bounds the histogram; longer calls are clamped.
const highestOperateTimeMs = 3_600_000

// Stats is the summary of one run. It is always derived from a result list.
type Stats struct {
	TotalCount           int     `json:"totalCount"`
	OKCount              int     `json:"okCount"`
	NGCount              int     `json:"ngCount"`
	AverageOperateTimeMs int64   `json:"averageOperateTime"`
	BestOperateTimeMs    int64   `json:"bestOperateTime"`
	WorstOperateTimeMs   int64   `json:"worstOperateTime"`
	OKPercent            float64 `json:"okPercent"`

	P50OperateTimeMs int64 `json:"p50OperateTime"`
	P90OperateTimeMs int64 `json:"p90OperateTime"`
	P99OperateTimeMs int64 `json:"p99OperateTime"`

	StatusCodes map[int]int    `json:"statusCodes,omitempty"`
	Failures    map[string]int `json:"failures,omitempty"`
}

// Aggregate folds results into Stats.
func Aggregate(results []TestResult) (Stats, error) {
	if len(results) == 0 {
		return Stats{}, ErrEmptyResultSet
	}

	// Operate times from 1ms up to one hour with 3 significant figures.
	hist := hdrhistogram.New(1, highestOperateTimeMs, 3)
	stats := Stats{
		TotalCount:  len(results),
		StatusCodes: make(map[int]int),
	}

	var sum int64
	for i, r := range results {
		ms := nonNegative(r.OperateTimeMs)
		sum += ms
		if i == 0 || ms < stats.BestOperateTimeMs {
			stats.BestOperateTimeMs = ms
		}
		if ms > stats.WorstOperateTimeMs {
			stats.WorstOperateTimeMs = ms
		}
		_ = hist.RecordValue(min(ms, hist.HighestTrackableValue()))

		if r.OK() {
			stats.OKCount++
		}
		stats.StatusCodes[r.StatusCode]++
		if r.Synthetic() {
			if stats.Failures == nil {
				stats.Failures = make(map[string]int)
			}
			stats.Failures[r.Category]++
		}
	}

	stats.NGCount = stats.TotalCount - stats.OKCount
	stats.AverageOperateTimeMs = sum / int64(stats.TotalCount)
	stats.OKPercent = roundHalfUp(100*float64(stats.OKCount)/float64(stats.TotalCount), 2)

	stats.P50OperateTimeMs = hist.ValueAtQuantile(50)
	stats.P90OperateTimeMs = hist.ValueAtQuantile(90)
	stats.P99OperateTimeMs = hist.ValueAtQuantile(99)

	return stats, nil
}

// SameSummary reports whether the historical summary fields of a and b agree.
func SameSummary(a, b Stats) bool {
	return a.TotalCount == b.TotalCount &&
		a.OKCount == b.OKCount &&
		a.NGCount == b.NGCount &&
		a.AverageOperateTimeMs == b.AverageOperateTimeMs &&
		a.BestOperateTimeMs == b.BestOperateTimeMs &&
		a.WorstOperateTimeMs == b.WorstOperateTimeMs &&
		math.Abs(a.OKPercent-b.OKPercent) < 0.005
}

func roundHalfUp(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5) / scale
}
