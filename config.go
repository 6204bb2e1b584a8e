// FILE: lixenwraith/vlog/config.go
package vlog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"

	"github.com/lixenwraith/vlog/formatter"
)

// Config holds all runtime configuration values
type Config struct {
	// Basic settings
	Level     string `toml:"level"`     // trace, debug, info, warn, error
	Directory string `toml:"directory"` // Empty disables the file sink
	Layout    string `toml:"layout"`    // Registered layout name

	// Rolling files
	RetentionDays       int64 `toml:"retention_days"`        // Days of files kept (0=unlimited)
	MaxFileBytes        int64 `toml:"max_file_bytes"`        // Rotation size (0=unbounded)
	CleanupIntervalMins int64 `toml:"cleanup_interval_mins"` // Retention schedule

	// Formatting
	TimestampFormat string `toml:"timestamp_format"`
	Sanitize        bool   `toml:"sanitize"`    // Hex encode non-printable message bytes
	TraceDepth      int64  `toml:"trace_depth"` // Call trace depth (0-10)

	// Delivery
	BufferSize      int64 `toml:"buffer_size"`       // Per-sink queue bound (0=unbounded)
	StopTimeoutMs   int64 `toml:"stop_timeout_ms"`   // Wait for the in-flight event on stop
	FlushIntervalMs int64 `toml:"flush_interval_ms"` // Periodic sync (0=disabled)

	// Console
	EnableConsole bool `toml:"enable_console"`
	ConsoleColor  bool `toml:"console_color"`

	// Heartbeat
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // Stats event interval (0=disabled)

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:     "info",
	Directory: "",
	Layout:    LayoutLine,

	RetentionDays:       7,
	MaxFileBytes:        0,
	CleanupIntervalMins: 60,

	TimestampFormat: formatter.DefaultTimestampFormat,
	Sanitize:        false,
	TraceDepth:      0,

	BufferSize:      0,
	StopTimeoutMs:   2000,
	FlushIntervalMs: 0,

	EnableConsole: true,
	ConsoleColor:  false,

	HeartbeatIntervalS: 0,

	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [vlog] table of a TOML file
// and returns a validated Config. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("vlog.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "vlog.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies loader values into cfg, keyed by toml tag
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Keep default
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	if !layoutRegistered(c.Layout) {
		return fmtErrorf("%w: '%s' (registered: %s)", ErrUnknownLayout, c.Layout, strings.Join(LayoutNames(), ", "))
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.RetentionDays < 0 {
		return fmtErrorf("retention_days cannot be negative: %d", c.RetentionDays)
	}

	if c.MaxFileBytes < 0 {
		return fmtErrorf("max_file_bytes cannot be negative: %d", c.MaxFileBytes)
	}

	if c.BufferSize < 0 {
		return fmtErrorf("buffer_size cannot be negative: %d", c.BufferSize)
	}

	if c.StopTimeoutMs <= 0 {
		return fmtErrorf("stop_timeout_ms must be positive: %d", c.StopTimeoutMs)
	}

	if c.FlushIntervalMs < 0 || c.HeartbeatIntervalS < 0 {
		return fmtErrorf("interval settings cannot be negative")
	}

	if c.TraceDepth < 0 || c.TraceDepth > maxTraceDepth {
		return fmtErrorf("trace_depth must be between 0 and %d: %d", maxTraceDepth, c.TraceDepth)
	}

	if c.RetentionDays > 0 && c.CleanupIntervalMins <= 0 {
		return fmtErrorf("cleanup_interval_mins must be positive when retention is enabled: %d", c.CleanupIntervalMins)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// level returns the parsed threshold; Validate guarantees it parses
func (c *Config) level() Level {
	l, _ := ParseLevel(c.Level)
	return l
}
