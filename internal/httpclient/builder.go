package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/torosent/apiperf/internal/request"
)

// Supported reports whether the (method, content type) pair can be dispatched.
func Supported(method request.Method, contentType string) bool {
	switch method {
	case request.MethodGet:
		return contentType == "" || contentType == request.ContentTypeJSON
	case request.MethodPost:
		return contentType == request.ContentTypeJSON || contentType == request.ContentTypeForm
	default:
		return false
	}
}

type RequestBuilder struct {
	method  string
	target  string
	headers http.Header
	body    BodySource
}

// NewRequestBuilder prepares the request shared by every task of a run.
// Unsupported pairs return a *Failure of category CategoryUnsupported.
func NewRequestBuilder(cfg request.Config, enc BodyEncoding) (*RequestBuilder, error) {
	if cfg.IsZero() {
		return nil, errors.New("request config is required")
	}
	if !Supported(cfg.Method(), cfg.ContentType()) {
		return nil, unsupported(string(cfg.Method()), cfg.ContentType())
	}

	target := cfg.URL()
	var body BodySource = emptyBodySource{}
	switch cfg.Method() {
	case request.MethodGet:
		target = appendQuery(target, cfg.Params())
	case request.MethodPost:
		source, err := NewBodySource(cfg.ContentType(), cfg.Params(), enc)
		if err != nil {
			return nil, &Failure{Category: CategoryEncode, Message: msgEncode, Err: err}
		}
		body = source
	}

	headers := http.Header{}
	setIfPresent(headers, "Content-Type", cfg.ContentType())
	setIfPresent(headers, "Authorization", cfg.Authorization())
	setIfPresent(headers, "Accept", cfg.Accept())
	// Extra headers win over the reserved ones.
	for _, h := range cfg.Headers() {
		headers.Set(http.CanonicalHeaderKey(strings.TrimSpace(h.Key)), h.Value)
	}

	return &RequestBuilder{
		method:  string(cfg.Method()),
		target:  target,
		headers: headers,
		body:    body,
	}, nil
}

// Target is the URL every request is sent to, query string included.
func (b *RequestBuilder) Target() string { return b.target }

func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := b.body.NewReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	req.Header = b.headers.Clone()
	if length, ok := b.body.ContentLength(); ok {
		req.ContentLength = length
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return b.body.NewReader()
	}

	return req, nil
}

// appendQuery adds k=v pairs after a '?' without escaping them.
func appendQuery(target string, params []request.Param) string {
	if len(params) == 0 {
		return target
	}
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, p.Key+"="+p.Value)
	}
	return target + "?" + strings.Join(pairs, "&")
}

func setIfPresent(h http.Header, key, value string) {
	if strings.TrimSpace(value) != "" {
		h.Set(key, value)
	}
}
