package config

import "errors"

// Configuration errors. Validate wraps the engine's option errors unchanged,
// so callers can test for either set with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly named config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidJobs is returned when the worker count is not positive.
	ErrInvalidJobs = errors.New("invalid jobs: must be positive")

	// ErrInvalidReportFormat is returned for a report format other than json or markdown.
	ErrInvalidReportFormat = errors.New("invalid report format: must be json or markdown")

	// ErrInvalidValidateMode is returned for a validate mode other than lint or run.
	ErrInvalidValidateMode = errors.New("invalid validate mode: must be lint or run")

	// ErrInvalidTimeout is returned when the validation timeout is negative.
	ErrInvalidTimeout = errors.New("invalid validate timeout: must be non-negative")

	// ErrInvalidEnv is returned when an UGLIFYPHP_* variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment value")
)
