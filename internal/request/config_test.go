package request_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/torosent/apiperf/internal/request"
)

func validSpec() request.Spec {
	return request.Spec{
		URL:             "http://localhost:8080/api",
		Method:          "GET",
		TaskLimit:       3,
		WaitTimeSeconds: 1,
		ContentType:     request.ContentTypeJSON,
		Accept:          request.ContentTypeJSON,
		Authorization:   "Bearer token",
		ExtraHeaders:    map[string]string{"X-Trace": "abc"},
		ExtraParams:     map[string]string{"id": "7"},
	}
}

func TestNewValidSpec(t *testing.T) {
	cfg, err := request.New(validSpec())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.URL() != "http://localhost:8080/api" {
		t.Errorf("URL = %q", cfg.URL())
	}
	if cfg.Method() != request.MethodGet {
		t.Errorf("Method = %q, want GET", cfg.Method())
	}
	if cfg.TaskLimit() != 3 {
		t.Errorf("TaskLimit = %d, want 3", cfg.TaskLimit())
	}
	if cfg.WaitTime() != time.Second {
		t.Errorf("WaitTime = %s, want 1s", cfg.WaitTime())
	}
	if got := cfg.Params(); len(got) != 1 || got[0].Key != "id" || got[0].Value != "7" {
		t.Errorf("Params = %v", got)
	}
	if cfg.IsZero() {
		t.Error("IsZero() = true for constructed config")
	}
}

func TestNewBlankMethodDefaultsToGet(t *testing.T) {
	spec := validSpec()
	spec.Method = ""
	cfg, err := request.New(spec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Method() != request.MethodGet {
		t.Errorf("Method = %q, want GET", cfg.Method())
	}

	spec.Method = "post"
	cfg, err = request.New(spec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Method() != request.MethodPost {
		t.Errorf("Method = %q, want POST", cfg.Method())
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*request.Spec)
		want   string
	}{
		{name: "blank url", mutate: func(s *request.Spec) { s.URL = "   " }, want: "url is required"},
		{name: "zero task limit", mutate: func(s *request.Spec) { s.TaskLimit = 0 }, want: "task limit must be >= 1"},
		{name: "zero wait time", mutate: func(s *request.Spec) { s.WaitTimeSeconds = 0 }, want: "wait time must be >= 1"},
		{name: "text content type", mutate: func(s *request.Spec) { s.ContentType = "text/plain" }, want: "content type must be"},
		{name: "xml accept", mutate: func(s *request.Spec) { s.Accept = "application/xml" }, want: "accept must be"},
		{name: "put method", mutate: func(s *request.Spec) { s.Method = "PUT" }, want: "method must be GET or POST"},
		{name: "blank header name", mutate: func(s *request.Spec) { s.ExtraHeaders = map[string]string{"": "x"} }, want: "invalid header name"},
		{name: "header value with newline", mutate: func(s *request.Spec) { s.ExtraHeaders = map[string]string{"X-A": "a\nb"} }, want: "invalid value for header X-A"},
		{name: "blank param name", mutate: func(s *request.Spec) { s.ExtraParams = map[string]string{" ": "x"} }, want: "param names must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)

			_, err := request.New(spec)
			if err == nil {
				t.Fatal("New() expected error")
			}
			if !errors.Is(err, request.ErrInvalidConfig) {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = false for %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidationErrorListsEveryIssue(t *testing.T) {
	_, err := request.New(request.Spec{})
	var verr *request.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if len(verr.Issues()) != 3 {
		t.Errorf("Issues() = %v, want 3 entries", verr.Issues())
	}
}

func TestConfigIsImmutable(t *testing.T) {
	spec := validSpec()
	cfg, err := request.New(spec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	spec.ExtraParams["id"] = "8"
	headers := cfg.ExtraHeaders()
	headers["X-Trace"] = "changed"

	if cfg.ExtraParams()["id"] != "7" {
		t.Errorf("ExtraParams()[id] = %q, want 7", cfg.ExtraParams()["id"])
	}
	if cfg.ExtraHeaders()["X-Trace"] != "abc" {
		t.Errorf("ExtraHeaders()[X-Trace] = %q, want abc", cfg.ExtraHeaders()["X-Trace"])
	}
}

func TestConfigSpecRoundTrip(t *testing.T) {
	cfg, err := request.New(validSpec())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	again, err := request.New(cfg.WithSource("profile.json").Spec())
	if err != nil {
		t.Fatalf("New(Spec()) error = %v", err)
	}
	if again.URL() != cfg.URL() || again.TaskLimit() != cfg.TaskLimit() || again.Authorization() != cfg.Authorization() {
		t.Errorf("round trip mismatch: %+v vs %+v", again.Spec(), cfg.Spec())
	}
	if again.SourceFilePath() != "profile.json" {
		t.Errorf("SourceFilePath = %q, want profile.json", again.SourceFilePath())
	}
	if cfg.SourceFilePath() != "" {
		t.Errorf("original SourceFilePath = %q, want empty", cfg.SourceFilePath())
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    request.Method
		wantErr bool
	}{
		{in: "", want: request.MethodGet},
		{in: "get", want: request.MethodGet},
		{in: " POST ", want: request.MethodPost},
		{in: "DELETE", wantErr: true},
	}
	for _, tt := range tests {
		got, err := request.ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
