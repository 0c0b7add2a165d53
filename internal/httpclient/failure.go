package httpclient

import (
	"fmt"

	"github.com/torosent/apiperf/internal/metrics"
)

// Failure categories.
const (
	CategoryUnsupported = "unsupported"
	CategoryEncode      = "encode"
	CategoryTransport   = "transport"
	CategoryIO          = "io"
	CategoryDecode      = "decode"
)

const (
	msgEncode    = "execution failed, could not build the request"
	msgTransport = "execution failed, execute failed"
	msgIO        = "execution failed, I/O error while reading the response"
	msgTooLarge  = "execution failed, response body too large"
	msgDecode    = "response body is not a JSON object"
)

// Failure is a per-call error that never produced a usable HTTP response.
type Failure struct {
	Category string
	Message  string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Category, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Category, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func unsupported(method, contentType string) *Failure {
	return &Failure{
		Category: CategoryUnsupported,
		Message:  fmt.Sprintf("%s:%s unsupported", method, contentType),
	}
}

// Outcome is the variant produced by one call: either a response or a Failure.
type Outcome struct {
	StatusCode int
	Body       map[string]interface{}
	Failure    *Failure
	OperateMs  int64
}

// Result folds the outcome into a TestResult.
func (o Outcome) Result() metrics.TestResult {
	if o.Failure != nil {
		r := metrics.FailureResult(o.OperateMs, o.Failure.Category, o.Failure.Message)
		r.Cause = o.Failure.Err
		return r
	}
	body := o.Body
	if body == nil {
		body = map[string]interface{}{}
	}
	return metrics.TestResult{
		OperateTimeMs: o.OperateMs,
		StatusCode:    o.StatusCode,
		ResponseBody:  body,
	}
}
