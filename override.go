// FILE: lixenwraith/vlog/override.go
package vlog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ApplyOverride applies "key=value" overrides to the configuration in place.
// All overrides are parsed before any error is returned; on error the
// configuration is left unchanged.
//
// Example:
//
//	cfg := vlog.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "directory=/var/log/app",
//	    "level=debug",
//	    "max_file_size=10MB",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	next := c.Clone()

	var errs []error
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := applyConfigField(next, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = *next
	return nil
}

// NewConfigFromOverrides returns the defaults with overrides applied.
func NewConfigFromOverrides(overrides ...string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyOverride(overrides...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString("vlog: multiple configuration errors:")
	for i, err := range errs {
		errMsg := strings.TrimPrefix(err.Error(), "vlog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	// Basic settings
	case "level":
		if _, err := ParseLevel(value); err != nil {
			return err
		}
		cfg.Level = strings.ToLower(value)
	case "directory", "dir":
		cfg.Directory = value
	case "layout":
		cfg.Layout = value

	// Rolling files
	case "retention_days", "file_retention":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for retention_days '%s': %w", value, err)
		}
		cfg.RetentionDays = intVal
	case "max_file_bytes", "max_file_size", "file_size":
		size, err := parseByteSize(value)
		if err != nil {
			return fmtErrorf("invalid size value for max_file_bytes '%s': %w", value, err)
		}
		cfg.MaxFileBytes = size
	case "cleanup_interval_mins":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for cleanup_interval_mins '%s': %w", value, err)
		}
		cfg.CleanupIntervalMins = intVal

	// Formatting
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitize":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for sanitize '%s': %w", value, err)
		}
		cfg.Sanitize = boolVal
	case "trace_depth":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for trace_depth '%s': %w", value, err)
		}
		cfg.TraceDepth = intVal

	// Delivery
	case "buffer_size":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for buffer_size '%s': %w", value, err)
		}
		cfg.BufferSize = intVal
	case "stop_timeout_ms":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for stop_timeout_ms '%s': %w", value, err)
		}
		cfg.StopTimeoutMs = intVal
	case "flush_interval_ms":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for flush_interval_ms '%s': %w", value, err)
		}
		cfg.FlushIntervalMs = intVal

	// Console
	case "enable_console":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for enable_console '%s': %w", value, err)
		}
		cfg.EnableConsole = boolVal
	case "console_color":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for console_color '%s': %w", value, err)
		}
		cfg.ConsoleColor = boolVal

	// Heartbeat
	case "heartbeat_interval_s":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for heartbeat_interval_s '%s': %w", value, err)
		}
		cfg.HeartbeatIntervalS = intVal

	// Internal error handling
	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}

// parseByteSize accepts plain byte counts and human sizes such as "10MB" or "512KiB".
func parseByteSize(value string) (int64, error) {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
