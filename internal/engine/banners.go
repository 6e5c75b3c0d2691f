package engine

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// version is overridden at build time with -ldflags "-X ...engine.version=".
var version = "0.3.0"

// Version returns the version string.
func Version() string {
	return version
}

// VersionFull returns version with Go and platform info.
func VersionFull() string {
	return fmt.Sprintf("uglifyphp v%s (%s/%s, %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// ErrorHint returns a helpful hint for common errors.
func ErrorHint(err error) string {
	if err == nil {
		return ""
	}
	var syn *SyntaxError
	switch {
	case errors.As(err, &syn):
		return fmt.Sprintf("The PHP source could not be tokenised near line %d. Check it with: php -l <file>", syn.Line)
	case errors.Is(err, ErrNotFound):
		return "Check the path. Use --code to pass PHP source instead of a file name."
	case errors.Is(err, ErrIsDirectory):
		return "Pass individual .php files, e.g. uglifyphp minify src/*.php --out-dir dist"
	case errors.Is(err, ErrTooLarge):
		return "The input exceeds the 100 MB safety limit. Split the file."
	case errors.Is(err, ErrDuplicateDest):
		return "Inputs with the same file name cannot share --out-dir. Run them in separate batches."
	case errors.Is(err, ErrPHPNotFound):
		return "Install the PHP CLI or put php in PATH to use --validate."
	case errors.Is(err, ErrValidation):
		return "The minified script behaves differently. Run uglifyphp analyze and add the suggested --exclude names."
	case errors.Is(err, ErrInvalidOption):
		return "Check option values: --names is short or random, excludes are variable names like $config."
	case strings.Contains(err.Error(), "yaml"):
		return "The config file is not valid YAML. Regenerate one with: uglifyphp init --force"
	}
	return ""
}
