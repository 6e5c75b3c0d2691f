package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxInputSize is a safety limit to prevent memory exhaustion (100 MB).
const maxInputSize = 100 * 1024 * 1024

// maxPathLen bounds what is worth a stat call; longer strings are always code.
const maxPathLen = 4096

// InputMode says how a path-or-code string is interpreted.
type InputMode int

const (
	InputAuto InputMode = iota // stat the string; a regular file is a path
	InputPath                  // always a path, never stat'ed
	InputCode                  // always code, never touches the filesystem
)

// statFile is swapped out in tests to observe existence checks.
var statFile = os.Stat

// ResolveInput returns the PHP source for pathOrCode and the path it was read
// from ("" for inline code).
func ResolveInput(pathOrCode string, mode InputMode) (string, string, error) {
	switch mode {
	case InputCode:
		return pathOrCode, "", nil
	case InputPath:
		data, err := readSourceFile(pathOrCode)
		if err != nil {
			return "", "", err
		}
		return string(data), pathOrCode, nil
	}
	if !couldBePath(pathOrCode) {
		return pathOrCode, "", nil
	}
	fi, err := statFile(pathOrCode)
	if err != nil || !fi.Mode().IsRegular() {
		return pathOrCode, "", nil
	}
	if fi.Size() > maxInputSize {
		return "", "", fmt.Errorf("%w (%d bytes, max %d)", ErrTooLarge, fi.Size(), maxInputSize)
	}
	data, err := readSourceFile(pathOrCode)
	if err != nil {
		return "", "", err
	}
	return string(data), pathOrCode, nil
}

func couldBePath(s string) bool {
	return s != "" && len(s) <= maxPathLen && !strings.ContainsRune(s, 0)
}

func readSourceFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading input: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxInputSize+1))
	if err != nil {
		if errors.Is(err, syscall.EISDIR) {
			return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("%w (>%d bytes, safety limit)", ErrTooLarge, maxInputSize)
	}
	return data, nil
}

// ReadStdin reads PHP source from r with the same size limit as files.
func ReadStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("stdin: %w", err)
	}
	if len(data) > maxInputSize {
		return "", fmt.Errorf("%w (>%d bytes, safety limit)", ErrTooLarge, maxInputSize)
	}
	return string(data), nil
}

// writeOutput writes data to path, creating parent directories. An empty
// path writes nothing.
func writeOutput(path, data string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// minifiedName returns where a batch writes the result for input:
// <outDir>/<base> when outDir is set, otherwise name.min.php beside the source.
func minifiedName(outDir, input string) string {
	if outDir != "" {
		return filepath.Join(outDir, filepath.Base(input))
	}
	ext := filepath.Ext(input)
	if strings.EqualFold(ext, ".php") {
		return input[:len(input)-len(ext)] + ".min" + ext
	}
	return input + ".min.php"
}
