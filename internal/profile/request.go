package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/torosent/apiperf/internal/request"
)

// doubleSuffix is appended to integers by encoders that store them as doubles.
const doubleSuffix = ".0"

// NumericString is an integer that is stored as a string on disk.
type NumericString string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected a numeric string, got %s", data)
	}
	*n = NumericString(num.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (n *NumericString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a numeric string", node.Line)
	}
	if node.Tag == "!!null" {
		*n = ""
		return nil
	}
	*n = NumericString(node.Value)
	return nil
}

// Int parses n after removing a trailing ".0".
func (n NumericString) Int() (int, error) {
	value := strings.TrimSpace(string(n))
	if value == "" {
		return 0, fmt.Errorf("value is required")
	}
	value = strings.TrimSuffix(value, doubleSuffix)
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", string(n))
	}
	return i, nil
}

// FileData is the on-disk request profile.
type FileData struct {
	URL                string                 `json:"url" yaml:"url"`
	HTTPMethod         string                 `json:"httpMethod" yaml:"httpMethod"`
	TaskLimit          NumericString          `json:"taskLimit" yaml:"taskLimit"`
	WaitTime           NumericString          `json:"waitTime" yaml:"waitTime"`
	Authorization      *string                `json:"authorization" yaml:"authorization"`
	ContentType        *string                `json:"contentType" yaml:"contentType"`
	Accept             *string                `json:"accept" yaml:"accept"`
	OtherHeadersParams map[string]interface{} `json:"otherHeadersParams" yaml:"otherHeadersParams"`
	OtherParams        map[string]interface{} `json:"otherParams" yaml:"otherParams"`
}

// Encode converts cfg into its file representation.
func Encode(cfg request.Config) FileData {
	return FileData{
		URL:                cfg.URL(),
		HTTPMethod:         string(cfg.Method()),
		TaskLimit:          NumericString(strconv.Itoa(cfg.TaskLimit())),
		WaitTime:           NumericString(strconv.Itoa(cfg.WaitTimeSeconds())),
		Authorization:      optional(cfg.Authorization()),
		ContentType:        optional(cfg.ContentType()),
		Accept:             optional(cfg.Accept()),
		OtherHeadersParams: toAnyMap(cfg.ExtraHeaders()),
		OtherParams:        toAnyMap(cfg.ExtraParams()),
	}
}

// Decode converts data into a validated request.Config. path is recorded as
// the config's source.
func Decode(data FileData, path string) (request.Config, error) {
	var issues []string

	taskLimit, err := data.TaskLimit.Int()
	if err != nil {
		issues = append(issues, "taskLimit: "+err.Error())
	}
	waitTime, err := data.WaitTime.Int()
	if err != nil {
		issues = append(issues, "waitTime: "+err.Error())
	}
	headers, err := toStringMap("otherHeadersParams", data.OtherHeadersParams)
	if err != nil {
		issues = append(issues, err.Error())
	}
	params, err := toStringMap("otherParams", data.OtherParams)
	if err != nil {
		issues = append(issues, err.Error())
	}
	if len(issues) > 0 {
		return request.Config{}, fmt.Errorf("%w: %s", request.ErrInvalidConfig, strings.Join(issues, "; "))
	}

	return request.New(request.Spec{
		URL:             data.URL,
		Method:          data.HTTPMethod,
		TaskLimit:       taskLimit,
		WaitTimeSeconds: waitTime,
		ContentType:     deref(data.ContentType),
		Accept:          deref(data.Accept),
		Authorization:   deref(data.Authorization),
		ExtraHeaders:    headers,
		ExtraParams:     params,
		SourceFilePath:  path,
	})
}

// Marshal serializes cfg in the given format.
func Marshal(cfg request.Config, format Format) ([]byte, error) {
	data := Encode(cfg)
	if format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses raw in the given format and decodes it.
func Unmarshal(raw []byte, format Format, path string) (request.Config, error) {
	var data FileData
	if format == FormatYAML {
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return request.Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &data); err != nil {
			return request.Config{}, fmt.Errorf("parse json: %w", err)
		}
	}
	return Decode(data, path)
}

// LoadRequest reads the request profile at path.
func LoadRequest(path string) (request.Config, error) {
	raw, err := readFile("load profile", path)
	if err != nil {
		return request.Config{}, err
	}
	cfg, err := Unmarshal(raw, FormatFor(path), path)
	if err != nil {
		return request.Config{}, newError("load profile", path, err)
	}
	return cfg, nil
}

// SaveRequest validates cfg again and writes it to path. The format follows the
// file extension.
func SaveRequest(path string, cfg request.Config, overwrite bool) error {
	checked, err := request.New(cfg.Spec())
	if err != nil {
		return newError("save profile", path, err)
	}
	raw, err := Marshal(checked, FormatFor(path))
	if err != nil {
		return newError("save profile", path, err)
	}
	return writeFile("save profile", path, raw, overwrite)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAnyMap(in map[string]string) map[string]interface{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func toStringMap(field string, in map[string]interface{}) (map[string]string, error) {
	out := make(map[string]string, len(in))
	var bad []string
	for k, v := range in {
		s, ok := v.(string)
		if !ok {
			bad = append(bad, k)
			continue
		}
		out[k] = s
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return nil, fmt.Errorf("%s: values must be strings (%s)", field, strings.Join(bad, ", "))
	}
	return out, nil
}
