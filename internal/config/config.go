// Package config loads uglifyphp settings from YAML files and UGLIFYPHP_*
// environment variables.
package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "uglifyphp"

	// DefaultConfigFile is looked up in the current directory.
	DefaultConfigFile = ".uglifyphp.yml"

	// UserConfigFile is looked up in the XDG config directory.
	UserConfigFile = "config.yml"

	// DefaultValidateTimeout bounds each PHP process started by --validate.
	DefaultValidateTimeout = 30 * time.Second

	// Report formats.
	ReportJSON     = "json"
	ReportMarkdown = "markdown"
)

// Config is the full set of settings. The embedded engine.Options are the
// minifier options; the rest configure the CLI around it.
type Config struct {
	engine.Options `yaml:",inline"`

	// Jobs is the number of files minified concurrently.
	Jobs int `yaml:"jobs,omitempty"`

	// Cache enables the result cache under the XDG cache directory.
	Cache bool `yaml:"cache,omitempty"`

	// Report selects a report format: json, markdown or "" for none.
	Report string `yaml:"report,omitempty"`

	// ValidateMode runs the PHP CLI on the result: lint, run or "" for none.
	ValidateMode    string        `yaml:"validate,omitempty"`
	ValidateTimeout time.Duration `yaml:"validate_timeout,omitempty"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Jobs:            runtime.NumCPU(),
		ValidateTimeout: DefaultValidateTimeout,
	}
}

// XDGConfigDir returns the XDG config directory for uglifyphp.
// On Linux: ~/.config/uglifyphp
// On macOS: ~/Library/Application Support/uglifyphp
// On Windows: %APPDATA%\uglifyphp
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	if c.Jobs <= 0 {
		return ErrInvalidJobs
	}
	switch strings.ToLower(c.Report) {
	case "", ReportJSON, ReportMarkdown:
	default:
		return ErrInvalidReportFormat
	}
	switch strings.ToLower(c.ValidateMode) {
	case "", engine.ValidateLint, engine.ValidateRun:
	default:
		return ErrInvalidValidateMode
	}
	if c.ValidateTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}
