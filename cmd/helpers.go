package cmd

import (
	"fmt"

	"github.com/ziadkadry99/peta-ikm/internal/config"
	"github.com/ziadkadry99/peta-ikm/internal/pipeline"
)

// loadConfig loads and validates the config, providing a user-friendly error.
// A missing config file is not an error; the defaults describe the Jambi
// dataset in the current directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `petaikm init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// bannerError is a failed pipeline run. Its text is the banner shown to
// the user; the underlying error stays reachable through errors.As.
type bannerError struct {
	err error
}

func (e *bannerError) Error() string { return pipeline.Message(e.err) }
func (e *bannerError) Unwrap() error { return e.err }
