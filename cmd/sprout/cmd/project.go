package cmd

import (
	"github.com/go-drift/sprout/pkg/config"
	"github.com/go-drift/sprout/pkg/errors"
)

// loadProject resolves the configuration of the enclosing project, or the
// defaults when the working directory is not inside one.
func loadProject() (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, errors.Wrap("config.Resolve", errors.KindConfig, err)
	}
	return cfg, nil
}

func installErrorHandler(cfg *config.Resolved) {
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Verbose})
}
