package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// settings is one section of a config file. Keys are stored normalized so that
// saveProfile, save_profile and save-profile name the same setting.
type settings map[string]interface{}

var keyReplacer = strings.NewReplacer("_", "", "-", "")

func normalizeKey(key string) string {
	return keyReplacer.Replace(strings.ToLower(strings.TrimSpace(key)))
}

func newSettings(raw interface{}) (settings, error) {
	if raw == nil {
		return settings{}, nil
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, err
	}
	out := make(settings, len(m))
	for k, v := range m {
		out[normalizeKey(k)] = v
	}
	return out, nil
}

func (s settings) lookup(names ...string) (interface{}, bool) {
	for _, name := range names {
		if v, ok := s[normalizeKey(name)]; ok {
			return v, true
		}
	}
	return nil, false
}

// binding copies one setting into its destination when present.
type binding struct {
	names []string
	apply func(raw interface{}) error
}

func (s settings) bind(bindings ...binding) error {
	for _, b := range bindings {
		raw, ok := s.lookup(b.names...)
		if !ok {
			continue
		}
		if err := b.apply(raw); err != nil {
			return fmt.Errorf("%s: %w", b.names[0], err)
		}
	}
	return nil
}

func stringInto(dst *string, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		v, err := cast.ToStringE(raw)
		*dst = strings.TrimSpace(v)
		return err
	}}
}

// stringPtrInto keeps the value untrimmed; request fields are validated later.
func stringPtrInto(dst **string, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		v, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}}
}

func intPtrInto(dst **int, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		if s, ok := raw.(string); ok {
			raw = strings.TrimSpace(s)
		}
		v, err := cast.ToIntE(raw)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}}
}

func int64Into(dst *int64, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		if s, ok := raw.(string); ok {
			raw = strings.TrimSpace(s)
		}
		v, err := cast.ToInt64E(raw)
		*dst = v
		return err
	}}
}

func boolInto(dst *bool, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		v, err := toBool(raw)
		*dst = v
		return err
	}}
}

func boolPtrInto(dst **bool, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		v, err := toBool(raw)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}}
}

func floatInto(dst *float64, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		v, err := cast.ToFloat64E(raw)
		*dst = v
		return err
	}}
}

func durationInto(dst *time.Duration, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		v, err := toDuration(raw)
		*dst = v
		return err
	}}
}

func stringsInto(dst *[]string, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		// A single string is one entry; cast would split it on spaces.
		if s, ok := raw.(string); ok {
			*dst = []string{s}
			return nil
		}
		v, err := cast.ToStringSliceE(raw)
		*dst = v
		return err
	}}
}

// mapInto merges a key/value section into dst.
func mapInto(dst *map[string]string, names ...string) binding {
	return binding{names: names, apply: func(raw interface{}) error {
		if raw == nil {
			return nil
		}
		v, err := cast.ToStringMapStringE(raw)
		if err != nil {
			return err
		}
		for k := range v {
			if strings.TrimSpace(k) == "" {
				return fmt.Errorf("key cannot be empty")
			}
		}
		*dst = merge(*dst, v)
		return nil
	}}
}

func toBool(raw interface{}) (bool, error) {
	if s, ok := raw.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			return false, nil
		}
		raw = s
	}
	return cast.ToBoolE(raw)
}

// toDuration parses strings such as "5s". Bare numbers are seconds.
func toDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return 0, nil
		}
		return time.ParseDuration(v)
	}
	secs, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("unsupported duration %v", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
