// Package config provides configuration types and defaults for backendhub.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/backendhub/internal/flags"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/resource"
	"github.com/zjrosen/backendhub/internal/tracing"
)

// Config holds all configuration options for backendhub.
type Config struct {
	// Qualifier is appended to the hub's own resource name, e.g. "agent=web".
	Qualifier string `mapstructure:"qualifier"`

	// Environment is forwarded verbatim to the detected environment's
	// post-detection hook.
	Environment map[string]string `mapstructure:"environment"`

	Report  ReportConfig    `mapstructure:"report"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Log     LogConfig       `mapstructure:"log"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// ReportConfig holds diagnostic report options.
type ReportConfig struct {
	// CacheTTL keeps a rendered report this long. Zero renders every time.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // Empty logs to stderr when debug is on
	Level string `mapstructure:"level"` // debug, info (default), warn, error
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Environment: map[string]string{},
		Report: ReportConfig{
			CacheTTL: 0,
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Level: "info",
		},
		Flags: flags.Defaults(),
	}
}

// DefaultTracesFilePath returns ~/.config/backendhub/traces/traces.jsonl or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "backendhub", "traces", "traces.jsonl")
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateQualifier(cfg.Qualifier); err != nil {
		return err
	}
	if cfg.Report.CacheTTL < 0 {
		return fmt.Errorf("report.cache_ttl must not be negative, got %v", cfg.Report.CacheTTL)
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", cfg.Log.Level)
	}
	return nil
}

// ValidateQualifier checks that q is a comma-separated key=value list that
// can extend the hub's resource name, whose "type" key is taken. Empty is
// valid.
func ValidateQualifier(q string) error {
	if q == "" {
		return nil
	}
	if _, err := resource.Parse("qualifier:type=BackendHandler," + q); err != nil {
		return fmt.Errorf("qualifier %q must be key=value pairs: %w", q, err)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	if tc.Enabled {
		if tc.Exporter == "file" && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the commented YAML written by
// WriteDefaultConfig.
func DefaultConfigTemplate() string {
	return `# backendhub configuration

# Appended to the hub's resource name (backendhub:type=BackendHandler,<qualifier>)
# to tell several hubs in one process apart.
# qualifier: agent=web

# Passed verbatim to the detected environment after detection.
environment: {}
  # exclude_backends: jetty,legacy

report:
  cache_ttl: 0s   # Keep a rendered report this long (0 disables caching)

tracing:
  enabled: false
  exporter: file            # none, file, stdout, otlp
  # file_path: ~/.config/backendhub/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: backendhub

log:
  # path: /tmp/backendhub.log
  level: info               # debug, info, warn, error

# Feature flags
flags:
  detect-kubernetes: true
  detect-container: true
  detect-systemd: true
  runtime-info: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
