package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/torosent/apiperf/internal/request"
)

// BodyEncoding selects how POST + form-urlencoded bodies are written.
type BodyEncoding string

const (
	// BodyJSON writes the same flat JSON object as POST + application/json.
	BodyJSON BodyEncoding = "json"
	// BodyURLEncoded writes a real application/x-www-form-urlencoded body.
	BodyURLEncoded BodyEncoding = "urlencoded"
)

// ParseBodyEncoding maps a setting value to a BodyEncoding. Blank means BodyJSON.
func ParseBodyEncoding(value string) (BodyEncoding, error) {
	switch BodyEncoding(value) {
	case "", BodyJSON:
		return BodyJSON, nil
	case BodyURLEncoded:
		return BodyURLEncoded, nil
	default:
		return "", fmt.Errorf("unsupported form body encoding %q: use %q or %q", value, BodyJSON, BodyURLEncoded)
	}
}

type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

// NewBodySource returns the body for a POST of params.
func NewBodySource(contentType string, params []request.Param, enc BodyEncoding) (BodySource, error) {
	if len(params) == 0 {
		return emptyBodySource{}, nil
	}
	if contentType == request.ContentTypeForm && enc == BodyURLEncoded {
		return &inlineBodySource{data: []byte(formBody(params))}, nil
	}
	data, err := jsonBody(params)
	if err != nil {
		return nil, err
	}
	return &inlineBodySource{data: data}, nil
}

// jsonBody writes params as {"k":"v",...} in key order.
func jsonBody(params []request.Param) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range params {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, p.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func formBody(params []request.Param) string {
	values := url.Values{}
	for _, p := range params {
		values.Set(p.Key, p.Value)
	}
	return values.Encode()
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *inlineBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return http.NoBody, nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
