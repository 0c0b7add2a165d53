package profile_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/torosent/apiperf/internal/profile"
	"github.com/torosent/apiperf/internal/request"
)

func sampleConfig(t *testing.T) request.Config {
	t.Helper()
	cfg, err := request.New(request.Spec{
		URL:             "http://localhost:8080/api/orders",
		Method:          "POST",
		TaskLimit:       5,
		WaitTimeSeconds: 2,
		ContentType:     request.ContentTypeJSON,
		Accept:          request.ContentTypeJSON,
		Authorization:   "Bearer abc",
		ExtraHeaders:    map[string]string{"X-Tenant": "blue"},
		ExtraParams:     map[string]string{"id": "7", "name": "<widget>"},
	})
	if err != nil {
		t.Fatalf("request.New() error = %v", err)
	}
	return cfg
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestNumericStringInt(t *testing.T) {
	tests := []struct {
		in      profile.NumericString
		want    int
		wantErr bool
	}{
		{in: "5", want: 5},
		{in: "5.0", want: 5},
		{in: " 12 ", want: 12},
		{in: "", wantErr: true},
		{in: "5.5", wantErr: true},
		{in: "five", wantErr: true},
	}
	for _, tt := range tests {
		got, err := tt.in.Int()
		if (err != nil) != tt.wantErr {
			t.Errorf("Int(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeStoresNumbersAsStrings(t *testing.T) {
	raw, err := profile.Marshal(sampleConfig(t), profile.FormatJSON)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if generic["taskLimit"] != "5" || generic["waitTime"] != "2" {
		t.Errorf("numeric fields = %v/%v, want strings 5/2", generic["taskLimit"], generic["waitTime"])
	}
	if generic["httpMethod"] != "POST" {
		t.Errorf("httpMethod = %v", generic["httpMethod"])
	}
	if !strings.Contains(string(raw), "<widget>") {
		t.Errorf("expected unescaped param value in %s", raw)
	}
	if !strings.Contains(string(raw), "\n  \"url\"") {
		t.Errorf("expected two space indentation in %s", raw)
	}
}

func TestDecodeDoubleArtifact(t *testing.T) {
	path := writeTemp(t, "profile.json", `{
  "url": "http://localhost/api",
  "httpMethod": "GET",
  "taskLimit": "5.0",
  "waitTime": "1.0",
  "authorization": null,
  "contentType": "application/json",
  "accept": null,
  "otherHeadersParams": null,
  "otherParams": {"id": "7"}
}`)

	cfg, err := profile.LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest() error = %v", err)
	}
	if cfg.TaskLimit() != 5 || cfg.WaitTimeSeconds() != 1 {
		t.Errorf("TaskLimit/WaitTime = %d/%d, want 5/1", cfg.TaskLimit(), cfg.WaitTimeSeconds())
	}
	if cfg.SourceFilePath() != path {
		t.Errorf("SourceFilePath = %q, want %q", cfg.SourceFilePath(), path)
	}
	if cfg.ExtraParams()["id"] != "7" {
		t.Errorf("ExtraParams = %v", cfg.ExtraParams())
	}
}

func TestDecodeToleratesNumbersAndBlankMethod(t *testing.T) {
	path := writeTemp(t, "profile.json", `{"url":"http://localhost","httpMethod":"","taskLimit":3,"waitTime":2.0}`)

	cfg, err := profile.LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest() error = %v", err)
	}
	if cfg.Method() != request.MethodGet {
		t.Errorf("Method = %q, want GET", cfg.Method())
	}
	if cfg.TaskLimit() != 3 || cfg.WaitTimeSeconds() != 2 {
		t.Errorf("TaskLimit/WaitTime = %d/%d, want 3/2", cfg.TaskLimit(), cfg.WaitTimeSeconds())
	}
}

func TestLoadRequestErrors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantInvalid bool
		want        string
	}{
		{name: "malformed json", content: `{"url":`, want: "parse json"},
		{name: "missing task limit", content: `{"url":"http://x","waitTime":"1"}`, wantInvalid: true, want: "taskLimit"},
		{name: "zero wait time", content: `{"url":"http://x","taskLimit":"1","waitTime":"0"}`, wantInvalid: true, want: "wait time must be >= 1"},
		{name: "blank url", content: `{"url":" ","taskLimit":"1","waitTime":"1"}`, wantInvalid: true, want: "url is required"},
		{name: "unsupported content type", content: `{"url":"http://x","taskLimit":"1","waitTime":"1","contentType":"text/plain"}`, wantInvalid: true, want: "content type"},
		{name: "unknown method", content: `{"url":"http://x","httpMethod":"PUT","taskLimit":"1","waitTime":"1"}`, wantInvalid: true, want: "method"},
		{name: "non string header", content: `{"url":"http://x","taskLimit":"1","waitTime":"1","otherHeadersParams":{"X-N":5}}`, wantInvalid: true, want: "otherHeadersParams: values must be strings (X-N)"},
		{name: "non string param", content: `{"url":"http://x","taskLimit":"1","waitTime":"1","otherParams":{"a":true}}`, wantInvalid: true, want: "otherParams"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "profile.json", tt.content)
			cfg, err := profile.LoadRequest(path)
			if err == nil {
				t.Fatal("LoadRequest() expected error")
			}
			if !cfg.IsZero() {
				t.Error("expected no partial config on error")
			}
			if !errors.Is(err, profile.ErrPersistence) {
				t.Errorf("errors.Is(err, ErrPersistence) = false for %v", err)
			}
			if got := errors.Is(err, request.ErrInvalidConfig); got != tt.wantInvalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, want %v (%v)", got, tt.wantInvalid, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.want)
			}
			var perr *profile.Error
			if !errors.As(err, &perr) || perr.Path != path {
				t.Errorf("expected *profile.Error with path %q, got %#v", path, err)
			}
		})
	}
}

func TestLoadRequestMissingFile(t *testing.T) {
	_, err := profile.LoadRequest(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, profile.ErrPersistence) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected persistence error wrapping ErrNotExist, got %v", err)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	for _, name := range []string{"profile.json", "profile.yaml", "profile.yml"} {
		t.Run(name, func(t *testing.T) {
			cfg := sampleConfig(t)
			path := filepath.Join(t.TempDir(), name)
			if err := profile.SaveRequest(path, cfg, false); err != nil {
				t.Fatalf("SaveRequest() error = %v", err)
			}

			loaded, err := profile.LoadRequest(path)
			if err != nil {
				t.Fatalf("LoadRequest() error = %v", err)
			}
			want := cfg.Spec()
			got := loaded.Spec()
			got.SourceFilePath = ""
			if got.URL != want.URL || got.Method != want.Method || got.TaskLimit != want.TaskLimit ||
				got.WaitTimeSeconds != want.WaitTimeSeconds || got.ContentType != want.ContentType ||
				got.Accept != want.Accept || got.Authorization != want.Authorization {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
			if got.ExtraHeaders["X-Tenant"] != "blue" || got.ExtraParams["name"] != "<widget>" || len(got.ExtraParams) != 2 {
				t.Errorf("maps mismatch: %v %v", got.ExtraHeaders, got.ExtraParams)
			}
			if ok, err := flock.New(path + ".lock").TryLock(); err != nil || !ok {
				t.Errorf("lock still held after save: %v, %v", ok, err)
			}
		})
	}
}

func TestYAMLDoubleArtifact(t *testing.T) {
	path := writeTemp(t, "profile.yaml", "url: http://localhost/api\nhttpMethod: POST\ntaskLimit: \"5.0\"\nwaitTime: 1\ncontentType: application/x-www-form-urlencoded\notherParams:\n  q: go\n")
	cfg, err := profile.LoadRequest(path)
	if err != nil {
		t.Fatalf("LoadRequest() error = %v", err)
	}
	if cfg.TaskLimit() != 5 || cfg.Method() != request.MethodPost || cfg.ContentType() != request.ContentTypeForm {
		t.Errorf("unexpected config %+v", cfg.Spec())
	}
}

func TestSaveRequestOverwrite(t *testing.T) {
	cfg := sampleConfig(t)
	path := writeTemp(t, "profile.json", "{}")

	err := profile.SaveRequest(path, cfg, false)
	if !errors.Is(err, profile.ErrFileExists) || !errors.Is(err, profile.ErrPersistence) {
		t.Fatalf("expected ErrFileExists, got %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "{}" {
		t.Fatalf("existing file modified: %s", data)
	}

	if err := profile.SaveRequest(path, cfg, true); err != nil {
		t.Fatalf("SaveRequest(overwrite) error = %v", err)
	}
	if _, err := profile.LoadRequest(path); err != nil {
		t.Fatalf("LoadRequest() after overwrite error = %v", err)
	}
}

func TestSaveRequestRejectsZeroConfig(t *testing.T) {
	err := profile.SaveRequest(filepath.Join(t.TempDir(), "p.json"), request.Config{}, false)
	if !errors.Is(err, request.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSaveRequestKeepsLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := profile.SaveRequest(path, sampleConfig(t), false); err != nil {
		t.Fatalf("SaveRequest() error = %v", err)
	}
	before, err := os.Stat(path + ".lock")
	if err != nil {
		t.Fatalf("lock file missing after save: %v", err)
	}

	if err := profile.SaveRequest(path, sampleConfig(t), true); err != nil {
		t.Fatalf("SaveRequest(overwrite) error = %v", err)
	}
	after, err := os.Stat(path + ".lock")
	if err != nil {
		t.Fatalf("lock file missing after second save: %v", err)
	}
	if !os.SameFile(before, after) {
		t.Error("lock file was replaced between saves")
	}
}

func TestSaveRequestLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}
	defer lock.Unlock()

	err = profile.SaveRequest(path, sampleConfig(t), true)
	if !errors.Is(err, profile.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	cases := map[string]profile.Format{
		"a.json": profile.FormatJSON,
		"a.YAML": profile.FormatYAML,
		"a.yml":  profile.FormatYAML,
		"a":      profile.FormatJSON,
	}
	for path, want := range cases {
		if got := profile.FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %v, want %v", path, got, want)
		}
	}
}
