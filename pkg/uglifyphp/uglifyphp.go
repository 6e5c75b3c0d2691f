// Package uglifyphp minifies PHP source: it renames variables to short
// names, strips comments and collapses whitespace.
//
//	out, err := uglifyphp.Minify(ctx, "src/index.php", &uglifyphp.Options{
//		Excludes: []string{"$config"},
//	})
//
// A nil *Options means all defaults.
package uglifyphp

import (
	"context"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

type (
	Options       = engine.Options
	MinifyOptions = engine.MinifyOptions
	Metrics       = engine.Metrics
	FileResult    = engine.FileResult
	BatchOption   = engine.BatchOption
)

// Batch options for MinifyFiles.
var (
	WithConcurrency = engine.WithConcurrency
	WithCache       = engine.WithCache
	WithLogger      = engine.WithBatchLogger
)

// Bool returns a pointer to v, for filling MinifyOptions.
func Bool(v bool) *bool { return engine.Bool(v) }

// Result is the value delivered by MinifyAsync.
type Result struct {
	Code string
	Err  error
}

// Minify reads pathOrCode as a file when it names one (always, with
// FilesOnly) and as PHP source otherwise. When opts.Output is set the result
// is also written there.
func Minify(ctx context.Context, pathOrCode string, opts *Options) (string, error) {
	res, err := engine.Process(ctx, pathOrCode, engine.InputAuto, opts)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// MinifyAsync runs Minify in its own goroutine. The channel receives exactly
// one Result and is then closed.
func MinifyAsync(ctx context.Context, pathOrCode string, opts *Options) <-chan Result {
	ch := make(chan Result, 1)
	opts = opts.Clone()
	go func() {
		defer close(ch)
		code, err := Minify(ctx, pathOrCode, opts)
		ch <- Result{Code: code, Err: err}
	}()
	return ch
}

// MinifySync is Minify without a context.
func MinifySync(pathOrCode string, opts *Options) (string, error) {
	return Minify(context.Background(), pathOrCode, opts)
}

// MinifyCode treats code as PHP source and never touches the filesystem for
// input.
func MinifyCode(code string, opts *Options) (string, error) {
	res, err := engine.Process(context.Background(), code, engine.InputCode, opts)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// MinifyFiles minifies paths concurrently. Results keep the order of paths;
// per-file failures are reported in FileResult.Err. Output goes to outDir,
// or next to each source as name.min.php when outDir is empty.
func MinifyFiles(ctx context.Context, paths []string, outDir string, opts *Options, options ...BatchOption) ([]FileResult, error) {
	options = append([]BatchOption{engine.WithOutDir(outDir)}, options...)
	return engine.NewBatchProcessor(opts, options...).Process(ctx, paths)
}
