// Package config loads the run settings of apiperf from flags and an optional
// JSON or YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/torosent/apiperf/internal/request"
)

// Config holds the settings of one invocation. The request itself is described by
// a profile, by the interactive wizard or by the Request overrides.
type Config struct {
	ProfilePath     string
	Interactive     bool
	Request         RequestSettings
	SaveProfile     string
	ResultFile      string
	Overwrite       bool
	Timeout         time.Duration
	KeepAlive       bool
	MaxBodyBytes    int64
	FormBody        string
	JSONOutput      bool
	LogLevel        string
	LogFormat       string
	Thresholds      []string
	MetricsTextfile string
	HTMLOutput      string
	ReportFile      string
	Tracing         TracingConfig
	ConfigFile      string
}

// RequestSettings are request fields given explicitly in the config file or on
// the command line. Nil fields were not given.
type RequestSettings struct {
	URL           *string
	Method        *string
	TaskLimit     *int
	WaitTime      *int
	ContentType   *string
	Accept        *string
	Authorization *string
	Headers       map[string]string
	Params        map[string]string
}

// IsEmpty reports whether no request field was given.
func (r RequestSettings) IsEmpty() bool {
	return r.URL == nil && r.Method == nil && r.TaskLimit == nil && r.WaitTime == nil &&
		r.ContentType == nil && r.Accept == nil && r.Authorization == nil &&
		len(r.Headers) == 0 && len(r.Params) == 0
}

// Apply overlays the given fields onto spec. Headers and params are merged.
func (r RequestSettings) Apply(spec request.Spec) request.Spec {
	if r.URL != nil {
		spec.URL = *r.URL
	}
	if r.Method != nil {
		spec.Method = *r.Method
	}
	if r.TaskLimit != nil {
		spec.TaskLimit = *r.TaskLimit
	}
	if r.WaitTime != nil {
		spec.WaitTimeSeconds = *r.WaitTime
	}
	if r.ContentType != nil {
		spec.ContentType = *r.ContentType
	}
	if r.Accept != nil {
		spec.Accept = *r.Accept
	}
	if r.Authorization != nil {
		spec.Authorization = *r.Authorization
	}
	spec.ExtraHeaders = merge(spec.ExtraHeaders, r.Headers)
	spec.ExtraParams = merge(spec.ExtraParams, r.Params)
	return spec
}

func merge(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// TracingConfig configures OpenTelemetry export. An empty Endpoint disables it.
type TracingConfig struct {
	Endpoint    string
	Protocol    string
	ServiceName string
	SampleRate  float64
	Insecure    bool
	Propagate   *bool
}

func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate defaults to true when Propagate is unset.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate == nil || *t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	report := strings.TrimSpace(c.ReportFile) != ""
	profile := strings.TrimSpace(c.ProfilePath) != ""

	switch {
	case report && (profile || c.Interactive || !c.Request.IsEmpty()):
		issues = append(issues, "report cannot be combined with a profile, interactive mode or request flags")
	case profile && c.Interactive:
		issues = append(issues, "profile and interactive are mutually exclusive")
	case !report && !profile && !c.Interactive && (c.Request.URL == nil || strings.TrimSpace(*c.Request.URL) == ""):
		issues = append(issues, "url is required unless a profile, interactive mode or report is used (use --help for usage information)")
	}

	if c.Timeout < 0 {
		issues = append(issues, "timeout must be non-negative")
	}
	if c.MaxBodyBytes < 1 {
		issues = append(issues, fmt.Sprintf("max body bytes must be >= 1, got %d", c.MaxBodyBytes))
	}
	switch c.FormBody {
	case "", "json", "urlencoded":
	default:
		issues = append(issues, fmt.Sprintf("form body must be json or urlencoded, got %q", c.FormBody))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		issues = append(issues, fmt.Sprintf("log level: %v", err))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("log format must be text or json, got %q", c.LogFormat))
	}
	for _, raw := range c.Thresholds {
		if strings.TrimSpace(raw) == "" {
			issues = append(issues, "thresholds must not be blank")
		}
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol must be grpc or http, got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
