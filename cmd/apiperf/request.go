package main

import (
	"github.com/torosent/apiperf/internal/config"
	"github.com/torosent/apiperf/internal/profile"
	"github.com/torosent/apiperf/internal/prompt"
	"github.com/torosent/apiperf/internal/request"
)

// resolveRequest builds the request config from the wizard, a profile file or
// the request flags. Request flags override fields of a loaded profile.
func resolveRequest(cfg *config.Config, wizard *prompt.Wizard) (request.Config, error) {
	var base request.Config
	var err error

	switch {
	case wizard != nil:
		base, err = wizard.Request()
	case cfg.ProfilePath != "":
		base, err = profile.LoadRequest(cfg.ProfilePath)
	default:
		return request.New(cfg.Request.Apply(request.Spec{}))
	}
	if err != nil {
		return request.Config{}, err
	}

	if cfg.Request.IsEmpty() {
		return base, nil
	}
	return request.New(cfg.Request.Apply(base.Spec()))
}
