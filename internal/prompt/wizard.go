package prompt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/torosent/apiperf/internal/profile"
	"github.com/torosent/apiperf/internal/request"
)

// ErrInvalidAnswer is returned for an answer the wizard cannot use. It matches
// request.ErrInvalidConfig.
var ErrInvalidAnswer = fmt.Errorf("%w: invalid answer", request.ErrInvalidConfig)

// Target is a file the operator chose to write.
type Target struct {
	Path      string
	Overwrite bool
}

// Wizard walks the operator through building a request and choosing where to
// save the profile and the results.
type Wizard struct {
	asker  Asker
	log    logrus.FieldLogger
	exists func(path string) bool
	load   func(path string) (request.Config, error)
}

// WizardOption customizes a Wizard.
type WizardOption func(*Wizard)

// WithLogger logs wizard decisions.
func WithLogger(log logrus.FieldLogger) WizardOption {
	return func(w *Wizard) { w.log = log }
}

// WithFileSystem replaces the file existence check and the profile loader.
func WithFileSystem(exists func(string) bool, load func(string) (request.Config, error)) WizardOption {
	return func(w *Wizard) {
		if exists != nil {
			w.exists = exists
		}
		if load != nil {
			w.load = load
		}
	}
}

func NewWizard(asker Asker, opts ...WizardOption) *Wizard {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	w := &Wizard{
		asker:  asker,
		log:    silent,
		exists: profile.Exists,
		load:   profile.LoadRequest,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Request loads a profile or collects every request field from the operator.
func (w *Wizard) Request() (request.Config, error) {
	fromFile, err := w.confirm("Load request settings from a profile file? (Y/N, default N)")
	if err != nil {
		return request.Config{}, err
	}
	if fromFile {
		path, err := w.asker.Ask("Profile file path:")
		if err != nil {
			return request.Config{}, err
		}
		cfg, err := w.load(path)
		if err != nil {
			return request.Config{}, err
		}
		w.log.Infof("loaded request settings from %s", cfg.SourceFilePath())
		return cfg, nil
	}
	return w.collect()
}

func (w *Wizard) collect() (request.Config, error) {
	var spec request.Spec
	var err error

	if spec.URL, err = w.asker.Ask("URL (without query parameters):"); err != nil {
		return request.Config{}, err
	}
	if strings.TrimSpace(spec.URL) == "" {
		return request.Config{}, fmt.Errorf("%w: url is required", ErrInvalidAnswer)
	}

	method, err := w.asker.Ask("HTTP method (1=GET, 2=POST, default GET):")
	if err != nil {
		return request.Config{}, err
	}
	switch method {
	case "", "1":
		spec.Method = string(request.MethodGet)
	case "2":
		spec.Method = string(request.MethodPost)
	default:
		return request.Config{}, fmt.Errorf("%w: method %q", ErrInvalidAnswer, method)
	}

	if spec.TaskLimit, err = w.askInt("Number of calls:"); err != nil {
		return request.Config{}, err
	}
	if spec.WaitTimeSeconds, err = w.askInt("Wait time between calls in seconds:"); err != nil {
		return request.Config{}, err
	}

	if spec.ContentType, err = w.asker.Ask("Content-Type (application/json or application/x-www-form-urlencoded, blank for none):"); err != nil {
		return request.Config{}, err
	}
	if spec.Authorization, err = w.asker.Ask("Authorization (blank for none):"); err != nil {
		return request.Config{}, err
	}
	if spec.Accept, err = w.asker.Ask("Accept (application/json, blank for none):"); err != nil {
		return request.Config{}, err
	}

	if spec.ExtraHeaders, err = w.pairs("header"); err != nil {
		return request.Config{}, err
	}
	if spec.ExtraParams, err = w.pairs("parameter"); err != nil {
		return request.Config{}, err
	}

	return request.New(spec)
}

// pairs reads key/value pairs until a blank key. Pairs with a blank value are skipped.
func (w *Wizard) pairs(kind string) (map[string]string, error) {
	out := make(map[string]string)
	for {
		key, err := w.asker.Ask(fmt.Sprintf("Extra %s name (blank to finish):", kind))
		if err != nil {
			return nil, err
		}
		if key == "" {
			return out, nil
		}
		value, err := w.asker.Ask(fmt.Sprintf("Value for %s:", key))
		if err != nil {
			return nil, err
		}
		if value == "" {
			w.log.Infof("skipping %s %s with blank value", kind, key)
			continue
		}
		out[key] = value
	}
}

// ProfileTarget asks whether and where to save the request profile.
func (w *Wizard) ProfileTarget() (Target, bool, error) {
	return w.target("Save these request settings to a profile file? (Y/N, default N)", "Profile file path:")
}

// ResultTarget asks whether and where to save the results.
func (w *Wizard) ResultTarget() (Target, bool, error) {
	return w.target("Save the test results to a file? (Y/N, default N)", "Result file path:")
}

func (w *Wizard) target(question, pathQuestion string) (Target, bool, error) {
	save, err := w.confirm(question)
	if err != nil || !save {
		return Target{}, false, err
	}
	path, err := w.asker.Ask(pathQuestion)
	if err != nil {
		return Target{}, false, err
	}
	for {
		if strings.TrimSpace(path) == "" {
			return Target{}, false, fmt.Errorf("%w: file path is required", ErrInvalidAnswer)
		}
		if !w.exists(path) {
			return Target{Path: path}, true, nil
		}
		overwrite, err := w.confirm(fmt.Sprintf("%s already exists. Overwrite it? (Y/N, default N)", path))
		if err != nil {
			return Target{}, false, err
		}
		if overwrite {
			w.log.Infof("overwriting %s", path)
			return Target{Path: path, Overwrite: true}, true, nil
		}
		if path, err = w.asker.Ask("New file path:"); err != nil {
			return Target{}, false, err
		}
	}
}

// confirm accepts y/n in any case. A blank answer means no.
func (w *Wizard) confirm(question string) (bool, error) {
	answer, err := w.asker.Ask(question)
	if err != nil {
		return false, err
	}
	switch strings.ToUpper(answer) {
	case "Y":
		return true, nil
	case "", "N":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected Y or N, got %q", ErrInvalidAnswer, answer)
	}
}

func (w *Wizard) askInt(question string) (int, error) {
	answer, err := w.asker.Ask(question)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidAnswer, answer)
	}
	return n, nil
}
