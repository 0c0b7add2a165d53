// Package request holds the immutable description of the endpoint a run targets.
package request

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = errors.New("invalid request config")

// ParseMethod maps a user supplied method to a Method. Blank means GET.
func ParseMethod(value string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(MethodGet):
		return MethodGet, nil
	case string(MethodPost):
		return MethodPost, nil
	default:
		return "", fmt.Errorf("unsupported http method %q", value)
	}
}

// Spec is the mutable input a Config is built from.
type Spec struct {
	URL             string
	Method          string
	TaskLimit       int
	WaitTimeSeconds int
	ContentType     string
	Accept          string
	Authorization   string
	ExtraHeaders    map[string]string
	ExtraParams     map[string]string
	SourceFilePath  string
}

// Param is one key/value entry of the extra headers or extra params mappings.
type Param struct {
	Key   string
	Value string
}

// Config is a validated, read-only request description shared by every task of a run.
type Config struct {
	url            string
	method         Method
	taskLimit      int
	waitTime       int
	contentType    string
	accept         string
	authorization  string
	headers        map[string]string
	params         map[string]string
	sourceFilePath string
}

// New validates spec and returns the Config it describes.
func New(spec Spec) (Config, error) {
	if err := spec.Validate(); err != nil {
		return Config{}, err
	}
	method, _ := ParseMethod(spec.Method)
	return Config{
		url:            strings.TrimSpace(spec.URL),
		method:         method,
		taskLimit:      spec.TaskLimit,
		waitTime:       spec.WaitTimeSeconds,
		contentType:    strings.TrimSpace(spec.ContentType),
		accept:         strings.TrimSpace(spec.Accept),
		authorization:  spec.Authorization,
		headers:        copyMap(spec.ExtraHeaders),
		params:         copyMap(spec.ExtraParams),
		sourceFilePath: spec.SourceFilePath,
	}, nil
}

// Validate reports every problem with spec as a single *ValidationError.
func (s Spec) Validate() error {
	var issues []string

	if strings.TrimSpace(s.URL) == "" {
		issues = append(issues, "url is required")
	}
	if _, err := ParseMethod(s.Method); err != nil {
		issues = append(issues, fmt.Sprintf("method must be GET or POST, got %q", s.Method))
	}
	if s.TaskLimit < 1 {
		issues = append(issues, fmt.Sprintf("task limit must be >= 1, got %d", s.TaskLimit))
	}
	if s.WaitTimeSeconds < 1 {
		issues = append(issues, fmt.Sprintf("wait time must be >= 1 second, got %d", s.WaitTimeSeconds))
	}

	switch strings.TrimSpace(s.ContentType) {
	case "", ContentTypeJSON, ContentTypeForm:
	default:
		issues = append(issues, fmt.Sprintf("content type must be %s or %s, got %q", ContentTypeJSON, ContentTypeForm, s.ContentType))
	}
	switch strings.TrimSpace(s.Accept) {
	case "", ContentTypeJSON:
	default:
		issues = append(issues, fmt.Sprintf("accept must be %s, got %q", ContentTypeJSON, s.Accept))
	}
	if strings.ContainsAny(s.Authorization, "\r\n") {
		issues = append(issues, "authorization must not contain line breaks")
	}

	for _, key := range sortedKeys(s.ExtraHeaders) {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n:") {
			issues = append(issues, fmt.Sprintf("invalid header name %q", key))
			continue
		}
		if strings.ContainsAny(s.ExtraHeaders[key], "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid value for header %s", key))
		}
	}
	for _, key := range sortedKeys(s.ExtraParams) {
		if strings.TrimSpace(key) == "" {
			issues = append(issues, "param names must not be blank")
		}
	}

	if len(issues) > 0 {
		return &ValidationError{issues: issues}
	}
	return nil
}

func (c Config) URL() string           { return c.url }
func (c Config) Method() Method        { return c.method }
func (c Config) TaskLimit() int        { return c.taskLimit }
func (c Config) WaitTimeSeconds() int  { return c.waitTime }
func (c Config) ContentType() string   { return c.contentType }
func (c Config) Accept() string        { return c.accept }
func (c Config) Authorization() string { return c.authorization }
func (c Config) SourceFilePath() string {
	return c.sourceFilePath
}

// WaitTime is the pacing interval applied after every task but the last.
func (c Config) WaitTime() time.Duration {
	return time.Duration(c.waitTime) * time.Second
}

// ExtraHeaders returns a copy of the extra header mapping.
func (c Config) ExtraHeaders() map[string]string { return copyMap(c.headers) }

// ExtraParams returns a copy of the extra param mapping.
func (c Config) ExtraParams() map[string]string { return copyMap(c.params) }

// Headers returns the extra headers ordered by name.
func (c Config) Headers() []Param { return sortedParams(c.headers) }

// Params returns the extra params ordered by name.
func (c Config) Params() []Param { return sortedParams(c.params) }

// IsZero reports whether c was never constructed through New.
func (c Config) IsZero() bool { return c.method == "" }

// Spec converts c back into its mutable form.
func (c Config) Spec() Spec {
	return Spec{
		URL:             c.url,
		Method:          string(c.method),
		TaskLimit:       c.taskLimit,
		WaitTimeSeconds: c.waitTime,
		ContentType:     c.contentType,
		Accept:          c.accept,
		Authorization:   c.authorization,
		ExtraHeaders:    copyMap(c.headers),
		ExtraParams:     copyMap(c.params),
		SourceFilePath:  c.sourceFilePath,
	}
}

// WithSource returns a copy of c that records where it was loaded from.
func (c Config) WithSource(path string) Config {
	c.headers = copyMap(c.headers)
	c.params = copyMap(c.params)
	c.sourceFilePath = path
	return c
}

// ValidationError lists every issue found while validating a Spec.
type ValidationError struct {
	issues []string
}

func (e *ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "invalid request config"
	}
	return fmt.Sprintf("invalid request config: %s", strings.Join(e.issues, "; "))
}

func (e *ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedParams(m map[string]string) []Param {
	keys := sortedKeys(m)
	out := make([]Param, 0, len(keys))
	for _, k := range keys {
		out = append(out, Param{Key: k, Value: m[k]})
	}
	return out
}
