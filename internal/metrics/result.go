package metrics

import "net/http"

// SyntheticStatus is the status reported for failures that never produced an HTTP response.
const SyntheticStatus = http.StatusBadRequest

// TestResult is the outcome of one task.
type TestResult struct {
	OperateTimeMs int64                  `json:"operateTime"`
	StatusCode    int                    `json:"statusCode"`
	ResponseBody  map[string]interface{} `json:"responseDatas"`

	// Category and Cause are set only on synthetic results.
	Category string `json:"-"`
	Cause    error  `json:"-"`
}

// FailureResult builds the synthetic result for a local failure.
func FailureResult(operateTimeMs int64, category, message string) TestResult {
	return TestResult{
		OperateTimeMs: nonNegative(operateTimeMs),
		StatusCode:    SyntheticStatus,
		ResponseBody:  map[string]interface{}{"error": message},
		Category:      category,
	}
}

// OK reports whether the task counts towards the OK total.
func (r TestResult) OK() bool { return r.StatusCode == http.StatusOK }

// Synthetic reports whether r describes a local failure.
func (r TestResult) Synthetic() bool { return r.Category != "" }

// ErrorMessage returns the "error" entry of a synthetic result.
func (r TestResult) ErrorMessage() string {
	if msg, ok := r.ResponseBody["error"].(string); ok {
		return msg
	}
	return ""
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
