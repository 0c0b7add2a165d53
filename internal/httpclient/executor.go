package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/request"
	"github.com/torosent/apiperf/internal/tracing"
)

// DefaultMaxBodySize is the largest response body an Executor reads by default.
const DefaultMaxBodySize = 16 * 1024 * 1024

// Tracing supplies the tracer used for one client span per call.
type Tracing interface {
	Tracer() trace.Tracer
	ShouldPropagate() bool
}

type Executor struct {
	client   *http.Client
	encoding BodyEncoding
	tracing  Tracing
	maxBody  int64
	now      func() time.Time
}

type ExecutorOption func(*Executor)

// WithBodyEncoding selects the body written for POST + form-urlencoded.
func WithBodyEncoding(enc BodyEncoding) ExecutorOption {
	return func(e *Executor) { e.encoding = enc }
}

// WithMaxBodySize caps the bytes read from a response body. A larger body is an
// io failure. Values below 1 keep the default.
func WithMaxBodySize(n int64) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxBody = n
		}
	}
}

// WithTracing wraps every call in a client span.
func WithTracing(t Tracing) ExecutorOption {
	return func(e *Executor) { e.tracing = t }
}

func NewExecutor(client *http.Client, opts ...ExecutorOption) *Executor {
	if client == nil {
		client = NewClient(30*time.Second, false)
	}
	e := &Executor{
		client:   client,
		encoding: BodyJSON,
		maxBody:  DefaultMaxBodySize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs one call for cfg. It never fails: every error is folded into a
// synthetic result.
func (e *Executor) Execute(ctx context.Context, cfg request.Config) metrics.TestResult {
	return e.Call(ctx, cfg).Result()
}

// Call performs one call for cfg and reports it as an Outcome.
// Cancelling ctx does not abort a call already in flight.
func (e *Executor) Call(ctx context.Context, cfg request.Config) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	start := e.now()
	if !Supported(cfg.Method(), cfg.ContentType()) {
		return Outcome{
			Failure:   unsupported(string(cfg.Method()), cfg.ContentType()),
			OperateMs: e.now().Sub(start).Milliseconds(),
		}
	}

	var span trace.Span
	if e.tracing != nil {
		ctx, span = tracing.StartCallSpan(ctx, e.tracing.Tracer(), string(cfg.Method()), cfg.URL())
	}

	out := e.call(ctx, cfg, span)
	out.OperateMs = e.now().Sub(start).Milliseconds()

	if span != nil {
		var err error
		if out.Failure != nil {
			err = out.Failure
		}
		tracing.EndCallSpan(span, out.Result().StatusCode, err)
	}
	return out
}

func (e *Executor) call(ctx context.Context, cfg request.Config, span trace.Span) Outcome {
	builder, err := NewRequestBuilder(cfg, e.encoding)
	if err != nil {
		return Outcome{Failure: asFailure(err, CategoryEncode, msgEncode)}
	}
	req, err := builder.Build(ctx)
	if err != nil {
		return Outcome{Failure: &Failure{Category: CategoryEncode, Message: msgEncode, Err: err}}
	}
	if span != nil && e.tracing.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Outcome{Failure: &Failure{Category: CategoryTransport, Message: msgTransport, Err: err}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody+1))
	if err != nil {
		return Outcome{Failure: &Failure{Category: CategoryIO, Message: msgIO, Err: err}}
	}
	if int64(len(raw)) > e.maxBody {
		return Outcome{Failure: &Failure{
			Category: CategoryIO,
			Message:  msgTooLarge,
			Err:      fmt.Errorf("response body exceeds %d bytes", e.maxBody),
		}}
	}

	body, err := decodeBody(resp.Header, raw)
	if err != nil {
		return Outcome{Failure: asFailure(err, CategoryDecode, msgDecode)}
	}

	return Outcome{StatusCode: resp.StatusCode, Body: body}
}

// decodeBody converts raw into a string keyed mapping. An empty body yields an
// empty mapping.
func decodeBody(h http.Header, raw []byte) (map[string]interface{}, error) {
	text, err := decodeCharset(h, raw)
	if err != nil {
		return nil, &Failure{Category: CategoryIO, Message: msgIO, Err: err}
	}
	text = bytes.TrimSpace(text)
	if len(text) == 0 {
		return map[string]interface{}{}, nil
	}
	if !gjson.ValidBytes(text) {
		return nil, errors.New("invalid JSON")
	}
	parsed := gjson.ParseBytes(text)
	if !parsed.IsObject() {
		return nil, errors.New("JSON value is not an object")
	}
	body, ok := parsed.Value().(map[string]interface{})
	if !ok {
		return nil, errors.New("JSON value is not an object")
	}
	return body, nil
}

func asFailure(err error, category, message string) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Category: category, Message: message, Err: err}
}
