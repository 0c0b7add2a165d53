package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apiperf",
		Short:         "Call one HTTP endpoint N times in sequence and report its performance",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request source
	flags.String("profile", "", "Path to a request profile (JSON or YAML)")
	flags.BoolP("interactive", "i", false, "Ask for the request settings interactively")
	flags.String("report", "", "Print the summary of an existing result file and exit")

	// Request fields, overriding the profile
	flags.String("url", "", "Target URL")
	flags.String("method", "", "HTTP method: GET or POST (default GET)")
	flags.IntP("task-limit", "n", 0, "Number of sequential calls")
	flags.IntP("wait-time", "w", 0, "Seconds to wait after each call")
	flags.String("content-type", "", "Content-Type: application/json or application/x-www-form-urlencoded")
	flags.String("accept", "", "Accept header: application/json")
	flags.String("authorization", "", "Authorization header value")
	// StringArray keeps commas inside values intact.
	flags.StringArray("header", nil, "Extra request header in key=value form (repeatable)")
	flags.StringArray("param", nil, "Extra query or body parameter in key=value form (repeatable)")

	// Persistence
	flags.String("save-profile", "", "Write the effective request profile to this path before the run")
	flags.String("result-file", "", "Write the run results to this path")
	flags.Bool("overwrite", false, "Replace existing profile or result files")

	// Transport
	flags.Duration("timeout", 30*time.Second, "Per-call timeout")
	flags.Bool("keep-alive", false, "Reuse connections across calls")
	flags.Int64("max-body-bytes", defaultMaxBodyBytes, "Largest response body read per call; larger bodies count as failures")
	flags.String("form-body", "json", "Body for POST form requests: json or urlencoded")

	// Output
	flags.Bool("json-output", false, "Emit JSON formatted summary")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.StringArray("threshold", nil, "Pass/fail assertion (repeatable, e.g. 'operate_time:p99 < 500')")
	flags.String("metrics-textfile", "", "Write Prometheus text exposition of the run to this path")
	flags.String("html-output", "", "Write a standalone HTML report of the run to this path")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.BoolP("help", "h", false, "Show this help")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP endpoint for tracing (e.g. localhost:4317)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.String("tracing-service-name", "apiperf", "Service name reported in traces")
	flags.Bool("tracing-propagate", true, "Inject W3C trace context headers into calls")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\nUsage: %s\n\nFlags:\n", cmd.Short, cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	for flag, dst := range map[string]*string{
		"profile":          &cfg.ProfilePath,
		"report":           &cfg.ReportFile,
		"save-profile":     &cfg.SaveProfile,
		"result-file":      &cfg.ResultFile,
		"form-body":        &cfg.FormBody,
		"log-level":        &cfg.LogLevel,
		"log-format":       &cfg.LogFormat,
		"metrics-textfile": &cfg.MetricsTextfile,
		"html-output":      &cfg.HTMLOutput,
	} {
		if !fs.Changed(flag) {
			continue
		}
		val, err := fs.GetString(flag)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(val)
	}

	for flag, dst := range map[string]*bool{
		"interactive": &cfg.Interactive,
		"overwrite":   &cfg.Overwrite,
		"keep-alive":  &cfg.KeepAlive,
		"json-output": &cfg.JSONOutput,
	} {
		if !fs.Changed(flag) {
			continue
		}
		val, err := fs.GetBool(flag)
		if err != nil {
			return err
		}
		*dst = val
	}

	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("max-body-bytes") {
		val, err := fs.GetInt64("max-body-bytes")
		if err != nil {
			return err
		}
		cfg.MaxBodyBytes = val
	}
	if fs.Changed("threshold") {
		vals, err := fs.GetStringArray("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = vals
	}

	if err := applyRequestFlags(&cfg.Request, fs); err != nil {
		return err
	}
	return applyTracingFlags(&cfg.Tracing, fs)
}

func applyRequestFlags(r *RequestSettings, fs *pflag.FlagSet) error {
	for flag, dst := range map[string]**string{
		"url":           &r.URL,
		"method":        &r.Method,
		"content-type":  &r.ContentType,
		"accept":        &r.Accept,
		"authorization": &r.Authorization,
	} {
		if !fs.Changed(flag) {
			continue
		}
		val, err := fs.GetString(flag)
		if err != nil {
			return err
		}
		if flag != "authorization" {
			val = strings.TrimSpace(val)
		}
		*dst = &val
	}

	for flag, dst := range map[string]**int{
		"task-limit": &r.TaskLimit,
		"wait-time":  &r.WaitTime,
	} {
		if !fs.Changed(flag) {
			continue
		}
		val, err := fs.GetInt(flag)
		if err != nil {
			return err
		}
		*dst = &val
	}

	if fs.Changed("header") {
		vals, err := fs.GetStringArray("header")
		if err != nil {
			return err
		}
		headers, err := parseKeyValues("header", vals)
		if err != nil {
			return err
		}
		r.Headers = merge(r.Headers, headers)
	}
	if fs.Changed("param") {
		vals, err := fs.GetStringArray("param")
		if err != nil {
			return err
		}
		params, err := parseKeyValues("param", vals)
		if err != nil {
			return err
		}
		r.Params = merge(r.Params, params)
	}
	return nil
}

func applyTracingFlags(t *TracingConfig, fs *pflag.FlagSet) error {
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		t.Protocol = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		t.ServiceName = val
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		t.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		t.SampleRate = val
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		t.Propagate = &val
	}
	return nil
}

func parseKeyValues(kind string, entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s must be in key=value format: %s", kind, entry)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, fmt.Errorf("%s key cannot be empty", kind)
		}
		out[key] = strings.TrimSpace(parts[1])
	}
	return out, nil
}
