package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrHelpRequested is returned by Load after the usage text was printed.
var ErrHelpRequested = errors.New("help requested")

// Loader builds a Config from command line arguments and an optional config file.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses args, reads the --config file when given and applies changed flags
// on top of it. Without any argument the usage text is printed.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	fs := cmd.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}
	if wantsHelp, _ := fs.GetBool("help"); wantsHelp || len(args) == 0 {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	configPath, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg := defaults()
	cfg.ConfigFile = configPath

	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		file, err := newSettings(v.AllSettings())
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
		keyed, err := readKeyedSections(configPath)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
		for name, section := range keyed {
			file[name] = section
		}
		if err := applyConfigSettings(cfg, file); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := applyFlagOverrides(cfg, fs); err != nil {
		return nil, err
	}

	cfg.FormBody = strings.ToLower(strings.TrimSpace(cfg.FormBody))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return cfg, nil
}

// keyedSections hold request keys sent verbatim, so their case must survive.
var keyedSections = []string{"headers", "params"}

// readKeyedSections decodes the headers and params sections of a JSON or YAML
// file again, since viper lowercases every key it reads. Other formats keep
// viper's keys.
func readKeyedSections(path string) (settings, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return settings{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if ext == ".json" {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}

	out := settings{}
	for key, value := range doc {
		name := normalizeKey(key)
		for _, section := range keyedSections {
			if name == section {
				out[name] = value
			}
		}
	}
	return out, nil
}

const defaultMaxBodyBytes = 16 << 20

func defaults() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		MaxBodyBytes: defaultMaxBodyBytes,
		FormBody:     "json",
		LogLevel:     "info",
		LogFormat:    "text",
		Tracing: TracingConfig{
			Protocol:    "grpc",
			ServiceName: "apiperf",
			SampleRate:  1.0,
		},
	}
}

func applyConfigSettings(cfg *Config, s settings) error {
	r := &cfg.Request
	err := s.bind(
		stringInto(&cfg.ProfilePath, "profile"),
		stringInto(&cfg.ReportFile, "report"),
		stringInto(&cfg.SaveProfile, "saveProfile"),
		stringInto(&cfg.ResultFile, "resultFile"),
		stringInto(&cfg.FormBody, "formBody"),
		stringInto(&cfg.LogLevel, "logLevel"),
		stringInto(&cfg.LogFormat, "logFormat"),
		stringInto(&cfg.MetricsTextfile, "metricsTextfile"),
		stringInto(&cfg.HTMLOutput, "htmlOutput"),
		boolInto(&cfg.Interactive, "interactive"),
		boolInto(&cfg.Overwrite, "overwrite"),
		boolInto(&cfg.KeepAlive, "keepAlive"),
		boolInto(&cfg.JSONOutput, "jsonOutput"),
		durationInto(&cfg.Timeout, "timeout"),
		int64Into(&cfg.MaxBodyBytes, "maxBodyBytes"),
		stringsInto(&cfg.Thresholds, "thresholds"),

		stringPtrInto(&r.URL, "url", "target"),
		stringPtrInto(&r.Method, "method", "httpMethod"),
		intPtrInto(&r.TaskLimit, "taskLimit"),
		intPtrInto(&r.WaitTime, "waitTime"),
		stringPtrInto(&r.ContentType, "contentType"),
		stringPtrInto(&r.Accept, "accept"),
		stringPtrInto(&r.Authorization, "authorization"),
		mapInto(&r.Headers, "headers"),
		mapInto(&r.Params, "params"),
	)
	if err != nil {
		return err
	}

	raw, ok := s.lookup("tracing")
	if !ok {
		return nil
	}
	tracing, err := newSettings(raw)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	t := &cfg.Tracing
	if err := tracing.bind(
		stringInto(&t.Endpoint, "endpoint"),
		stringInto(&t.Protocol, "protocol"),
		stringInto(&t.ServiceName, "serviceName"),
		floatInto(&t.SampleRate, "sampleRate"),
		boolInto(&t.Insecure, "insecure"),
		boolPtrInto(&t.Propagate, "propagate"),
	); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}
