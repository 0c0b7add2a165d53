package logging

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/request"
)

// FailureLogger reports synthetic results at warn level.
type FailureLogger struct {
	Log logrus.FieldLogger
}

func (f FailureLogger) LogFailure(result metrics.TestResult) {
	if f.Log == nil {
		return
	}
	entry := f.Log.WithFields(logrus.Fields{
		"category":        result.Category,
		"status":          result.StatusCode,
		"operate_time_ms": result.OperateTimeMs,
	})
	if result.Cause != nil {
		entry = entry.WithError(result.Cause)
	}
	entry.Warn(result.ErrorMessage())
}

// LogConfig writes one line per field of cfg.
func LogConfig(log logrus.FieldLogger, cfg request.Config) {
	log.Infof("url: %s", cfg.URL())
	log.Infof("method: %s", cfg.Method())
	log.Infof("task limit: %d", cfg.TaskLimit())
	log.Infof("wait time: %ds", cfg.WaitTimeSeconds())
	log.Infof("content type: %s", orNone(cfg.ContentType()))
	log.Infof("accept: %s", orNone(cfg.Accept()))
	log.Infof("authorization: %s", orNone(mask(cfg.Authorization())))
	log.Infof("extra headers: %s", joinParams(cfg.Headers()))
	log.Infof("extra params: %s", joinParams(cfg.Params()))
	if cfg.SourceFilePath() != "" {
		log.Infof("profile: %s", cfg.SourceFilePath())
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// mask keeps the auth scheme and hides the credential.
func mask(auth string) string {
	if auth == "" {
		return ""
	}
	if scheme, _, ok := strings.Cut(auth, " "); ok {
		return scheme + " ****"
	}
	return "****"
}

func joinParams(params []request.Param) string {
	if len(params) == 0 {
		return "none"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, ", ")
}
