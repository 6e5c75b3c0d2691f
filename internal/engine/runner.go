package engine

import (
	"context"
	"fmt"
	"time"
)

// Result is what one minification produced.
type Result struct {
	Code       string
	SourcePath string // "" for inline code
	OutputPath string // "" when nothing was written
	Metrics    Metrics
}

func buildPipeline(opts *Options) []Transform {
	var transforms []Transform
	if opts.ShouldReplaceVariables() {
		transforms = append(transforms, &RenameTransform{})
	}
	if opts.ShouldRemoveWhitespace() || opts.ShouldRemoveComments() {
		transforms = append(transforms, &StripTransform{
			Whitespace: opts.ShouldRemoveWhitespace(),
			Comments:   opts.ShouldRemoveComments(),
		})
	}
	return transforms
}

// MinifyString runs the pipeline over src without touching the filesystem.
// Identical src and options always give identical output.
func MinifyString(src string, opts *Options) (string, Metrics, error) {
	start := time.Now()
	var m Metrics
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.Validate(); err != nil {
		return "", m, err
	}
	toks, err := Lex(src)
	if err != nil {
		return "", m, err
	}
	m.Tokens = len(toks)
	hash := SumBlake3([]byte(src))
	ctx := &Ctx{
		Rng:        InitRNG(opts.Seed, hash),
		Opts:       opts,
		SourceHash: HexString(hash),
		Stats:      &m,
	}
	for _, t := range buildPipeline(opts) {
		toks, err = t.Apply(toks, ctx)
		if err != nil {
			return "", m, fmt.Errorf("transform %s failed: %w", t.Name(), err)
		}
	}
	out := Join(toks)
	m.finish(src, out)
	m.Duration = time.Since(start)
	return out, m, nil
}

// Process resolves pathOrCode, minifies it and writes the result to
// opts.Output when that is set. The caller's options are not modified.
func Process(ctx context.Context, pathOrCode string, mode InputMode, opts *Options) (*Result, error) {
	opts = opts.Clone()
	if mode == InputAuto && opts.FilesOnly {
		mode = InputPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, path, err := ResolveInput(pathOrCode, mode)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, m, err := MinifyString(src, opts)
	if err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dest := opts.OutputPath()
	if err := writeOutput(dest, out); err != nil {
		return nil, err
	}
	label := path
	if label == "" {
		label = "<code>"
	}
	opts.logger().Debug("minified", "source", label, "output", orEmpty(dest), "metrics", m)
	return &Result{Code: out, SourcePath: path, OutputPath: dest, Metrics: m}, nil
}

func orEmpty(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
