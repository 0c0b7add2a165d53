package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/torosent/apiperf/internal/metrics"
)

// Summary holds the aggregate fields stored next to the per-task results.
type Summary struct {
	TotalCount           int     `json:"totalCount"`
	AverageOperateTimeMs int64   `json:"averageOperateTime"`
	BestOperateTimeMs    int64   `json:"bestOperateTime"`
	WorstOperateTimeMs   int64   `json:"worstOperateTime"`
	OKCount              int     `json:"okCount"`
	NGCount              int     `json:"ngCount"`
	OKPercent            float64 `json:"okPercent"`
}

// SummaryOf keeps the persisted fields of stats.
func SummaryOf(stats metrics.Stats) Summary {
	return Summary{
		TotalCount:           stats.TotalCount,
		AverageOperateTimeMs: stats.AverageOperateTimeMs,
		BestOperateTimeMs:    stats.BestOperateTimeMs,
		WorstOperateTimeMs:   stats.WorstOperateTimeMs,
		OKCount:              stats.OKCount,
		NGCount:              stats.NGCount,
		OKPercent:            stats.OKPercent,
	}
}

// Stats widens s back into metrics.Stats. Fields that are not persisted stay zero.
func (s Summary) Stats() metrics.Stats {
	return metrics.Stats{
		TotalCount:           s.TotalCount,
		OKCount:              s.OKCount,
		NGCount:              s.NGCount,
		AverageOperateTimeMs: s.AverageOperateTimeMs,
		BestOperateTimeMs:    s.BestOperateTimeMs,
		WorstOperateTimeMs:   s.WorstOperateTimeMs,
		OKPercent:            s.OKPercent,
	}
}

// ResultFile is the persisted outcome of a run. Results are keyed "1".."N" on
// disk, in task order.
type ResultFile struct {
	Results []metrics.TestResult
	Summary Summary
}

// NewResultFile aggregates results into a ResultFile.
func NewResultFile(results []metrics.TestResult) (ResultFile, error) {
	stats, err := metrics.Aggregate(results)
	if err != nil {
		return ResultFile{}, err
	}
	return ResultFile{
		Results: append([]metrics.TestResult(nil), results...),
		Summary: SummaryOf(stats),
	}, nil
}

func (f ResultFile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"performanceTestResults":{`)
	for i, result := range f.Results {
		if i > 0 {
			buf.WriteByte(',')
		}
		entry, err := marshalNoEscape(result)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i+1, err)
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(i + 1)))
		buf.WriteByte(':')
		buf.Write(entry)
	}
	buf.WriteString(`},`)

	summary, err := json.Marshal(f.Summary)
	if err != nil {
		return nil, err
	}
	// splice the summary object's members after the results member
	buf.Write(summary[1:])
	return buf.Bytes(), nil
}

func (f *ResultFile) UnmarshalJSON(data []byte) error {
	var raw struct {
		Results map[string]json.RawMessage `json:"performanceTestResults"`
		Summary
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	indexes := make([]int, 0, len(raw.Results))
	byIndex := make(map[int]json.RawMessage, len(raw.Results))
	for key, value := range raw.Results {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 1 {
			return fmt.Errorf("performanceTestResults: invalid task index %q", key)
		}
		indexes = append(indexes, idx)
		byIndex[idx] = value
	}
	sort.Ints(indexes)

	results := make([]metrics.TestResult, 0, len(indexes))
	for pos, idx := range indexes {
		if idx != pos+1 {
			return fmt.Errorf("performanceTestResults: missing task %d", pos+1)
		}
		var result metrics.TestResult
		if err := json.Unmarshal(byIndex[idx], &result); err != nil {
			return fmt.Errorf("performanceTestResults[%d]: %w", idx, err)
		}
		results = append(results, result)
	}

	f.Results = results
	f.Summary = raw.Summary
	return nil
}

// Verify recomputes the summary from the stored results. It returns the fresh
// stats and whether they agree with the stored summary.
func (f ResultFile) Verify() (metrics.Stats, bool, error) {
	stats, err := metrics.Aggregate(f.Results)
	if err != nil {
		return metrics.Stats{}, false, err
	}
	return stats, metrics.SameSummary(stats, f.Summary.Stats()), nil
}

// SaveResults writes f to path as indented JSON.
func SaveResults(path string, f ResultFile, overwrite bool) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return newError("save results", path, err)
	}
	return writeFile("save results", path, out.Bytes(), overwrite)
}

// LoadResults reads the result file at path.
func LoadResults(path string) (ResultFile, error) {
	raw, err := readFile("load results", path)
	if err != nil {
		return ResultFile{}, err
	}
	var f ResultFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return ResultFile{}, newError("load results", path, err)
	}
	if len(f.Results) == 0 {
		return ResultFile{}, newError("load results", path, metrics.ErrEmptyResultSet)
	}
	return f, nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
