// FILE: lixenwraith/vlog/env.go
package vlog

import (
	"fmt"
	"os"
)

// Environment variables read by NewConfigFromEnv
const (
	EnvDir           = "VLOG_DIR"
	EnvLevel         = "VLOG_LEVEL"
	EnvFileRetention = "VLOG_FILE_RETENTION"
	EnvFileSize      = "VLOG_FILE_SIZE"
	EnvLayout        = "VLOG_LAYOUT"
)

var envKeys = []struct {
	env string
	key string
}{
	{EnvDir, "directory"},
	{EnvLevel, "level"},
	{EnvFileRetention, "retention_days"},
	{EnvFileSize, "max_file_bytes"},
	{EnvLayout, "layout"},
}

// NewConfigFromEnv returns the defaults overridden by any VLOG_* variables set
// in the environment. Invalid values fail with a configuration error.
func NewConfigFromEnv() (*Config, error) {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overrides cfg with VLOG_* variables and validates the result.
func ApplyEnv(cfg *Config) (*Config, error) {
	next := cfg.Clone()

	var errs []error
	for _, ek := range envKeys {
		value, ok := os.LookupEnv(ek.env)
		if !ok {
			continue
		}
		if err := applyConfigField(next, ek.key, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ek.env, err))
		}
	}
	if len(errs) > 0 {
		return nil, combineConfigErrors(errs)
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}
