package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	ValidateLint = "lint" // php -l on the minified file
	ValidateRun  = "run"  // run both files, compare stdout and exit code
)

const defaultValidateTimeout = 30 * time.Second

// ValidateOptions configures Validate.
type ValidateOptions struct {
	Mode    string
	Timeout time.Duration
	// Args is passed to both scripts in run mode; quotes group words.
	Args string
	// PHP overrides the interpreter looked up in PATH.
	PHP    string
	Logger *slog.Logger
}

// Validate checks the minified file with the PHP CLI. Original is only used
// in run mode.
func Validate(ctx context.Context, original, minified string, vo ValidateOptions) error {
	logger := vo.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := strings.ToLower(strings.TrimSpace(vo.Mode))
	switch mode {
	case "", ValidateLint, ValidateRun:
	default:
		return fmt.Errorf("%w: validate mode %q (want lint or run)", ErrInvalidOption, vo.Mode)
	}
	php, err := findPHP(vo.PHP)
	if err != nil {
		return err
	}
	timeout := vo.Timeout
	if timeout <= 0 {
		timeout = defaultValidateTimeout
	}

	if mode != ValidateRun {
		out, code, err := runPHP(ctx, php, timeout, "", "-l", minified)
		if err != nil {
			return fmt.Errorf("lint: %w", err)
		}
		if code != 0 {
			return fmt.Errorf("%w: %s", ErrValidation, strings.TrimSpace(string(out)))
		}
		logger.Info("validate: PASS", "mode", ValidateLint, "file", minified)
		return nil
	}

	// Both scripts run from the original's directory so relative includes resolve the same way.
	dir := filepath.Dir(original)
	args := splitArgs(vo.Args)
	origOut, origCode, err := runPHP(ctx, php, timeout, dir, scriptArgs(original, args)...)
	if err != nil {
		return fmt.Errorf("original script: %w", err)
	}
	minOut, minCode, err := runPHP(ctx, php, timeout, dir, scriptArgs(minified, args)...)
	if err != nil {
		return fmt.Errorf("minified script: %w", err)
	}
	if origCode == minCode && bytes.Equal(origOut, minOut) {
		logger.Info("validate: PASS", "mode", ValidateRun, "exit", origCode, "stdout", len(origOut))
		return nil
	}
	var diffs []string
	if origCode != minCode {
		diffs = append(diffs, fmt.Sprintf("exit: original=%d minified=%d", origCode, minCode))
	}
	if !bytes.Equal(origOut, minOut) {
		diffs = append(diffs, fmt.Sprintf("stdout differs (orig %d bytes, min %d bytes)", len(origOut), len(minOut)))
	}
	logger.Warn("validate: FAIL", "mode", ValidateRun, "diff", strings.Join(diffs, "; "))
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(diffs, "; "))
}

// ValidateCode writes original and minified source to temporary files and
// validates them.
func ValidateCode(ctx context.Context, original, minified string, vo ValidateOptions) error {
	dir, err := os.MkdirTemp("", "uglifyphp-validate-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	origPath := filepath.Join(dir, "original.php")
	minPath := filepath.Join(dir, "minified.php")
	if err := os.WriteFile(origPath, []byte(original), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(minPath, []byte(minified), 0o600); err != nil {
		return err
	}
	return Validate(ctx, origPath, minPath, vo)
}

func scriptArgs(script string, args []string) []string {
	abs, err := filepath.Abs(script)
	if err != nil {
		abs = script
	}
	return append([]string{"-d", "display_errors=stderr", "-f", abs, "--"}, args...)
}

func findPHP(override string) (string, error) {
	name := "php"
	if override != "" {
		name = override
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPHPNotFound, name)
	}
	return p, nil
}

// splitArgs splits s on blanks, keeping quoted groups together:
// -n "foo bar" -> ["-n", "foo bar"].
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	var buf strings.Builder
	inQuote := false
	var quote rune
	for _, r := range s {
		switch {
		case r == '"' || r == '\'':
			if !inQuote {
				inQuote = true
				quote = r
			} else if r == quote {
				inQuote = false
				out = append(out, buf.String())
				buf.Reset()
			} else {
				buf.WriteRune(r)
			}
		case inQuote:
			buf.WriteRune(r)
		case r == ' ' || r == '\t':
			if buf.Len() > 0 {
				out = append(out, buf.String())
				buf.Reset()
			}
		default:
			buf.WriteRune(r)
		}
	}
	// an unclosed quote keeps what it collected
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

// runPHP returns stdout and the exit code. A non-zero exit is not an error.
func runPHP(ctx context.Context, php string, timeout time.Duration, dir string, args ...string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, php, args...)
	cmd.Dir = dir
	var outBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &outBuf
	if len(args) > 0 && args[0] != "-l" {
		// stderr carries file paths, which differ between the two scripts
		cmd.Stderr = nil
	}
	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, -1, fmt.Errorf("timed out after %s: %w", timeout, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return outBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, -1, err
	}
	return outBuf.Bytes(), 0, nil
}
