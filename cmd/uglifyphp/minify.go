package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benzoXdev/uglifyphp/internal/cache"
	"github.com/benzoXdev/uglifyphp/internal/config"
	"github.com/benzoXdev/uglifyphp/internal/engine"
)

// NewMinifyCmd creates the minify command.
func NewMinifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minify [file...]",
		Short: "Minify PHP files or code",
		Long: `Minify renames variables, removes comments and collapses whitespace.

A single input is written to stdout, or to --output. Several inputs, or
--out-dir, switch to batch mode: files are minified concurrently and written
to the output directory (or next to each source as name.min.php).

Examples:
  # Minify one file to stdout
  uglifyphp minify index.php

  # Keep some variables and write to a file
  uglifyphp minify index.php -e config -e db -o index.min.php

  # Minify a tree into dist/ with a Markdown report
  uglifyphp minify src/*.php --out-dir dist --report markdown

  # Minify inline code
  uglifyphp minify -c '<?php $greeting = "hi"; echo $greeting;'

  # Check that the result still runs the same
  uglifyphp minify app.php -o app.min.php --validate run`,
		Args: cobra.ArbitraryArgs,
		RunE: runMinifyCmd,
	}

	// Output flags
	cmd.Flags().StringP("output", "o", "", "Write the result to this file instead of stdout")
	cmd.Flags().String("out-dir", "", "Write each result into this directory (batch mode)")

	// Renaming flags
	cmd.Flags().StringSliceP("exclude", "e", nil, "Variable names to keep (with or without $, repeatable)")
	cmd.Flags().Bool("keep-variables", false, "Do not rename variables")
	cmd.Flags().String("names", engine.NameStyleShort, "Name style for renamed variables: short or random")
	cmd.Flags().Int64("seed", 0, "Seed for --names random (0 derives it from the source)")
	cmd.Flags().String("profile", "", "Preset: "+strings.Join(engine.ProfileNames(), ", "))

	// Stripping flags
	cmd.Flags().Bool("keep-whitespace", false, "Do not collapse whitespace")
	cmd.Flags().Bool("keep-comments", false, "Do not remove comments")
	cmd.Flags().Bool("minify-html", false, "Accepted for compatibility; inline HTML is kept as is")

	// Input flags
	cmd.Flags().Bool("files-only", false, "Treat every input as a file path")
	cmd.Flags().StringP("code", "c", "", "Minify this PHP code instead of files")
	cmd.Flags().Bool("stdin", false, "Read PHP code from stdin")

	// Batch flags
	cmd.Flags().IntP("jobs", "j", 0, "Number of files minified concurrently (default: number of CPUs)")
	cmd.Flags().Bool("cache", false, "Reuse results of unchanged files from the cache")
	cmd.Flags().String("cache-dir", "", "Cache directory (default: XDG cache directory)")

	// Report flags
	cmd.Flags().String("report", "", "Print a report: json or markdown")
	cmd.Flags().String("report-file", "", "Write the report to this file instead of stdout")

	// Validation flags
	cmd.Flags().String("validate", "", "Check the result with the PHP CLI: lint or run")
	cmd.Flags().Duration("validate-timeout", config.DefaultValidateTimeout, "Timeout for each PHP process")
	cmd.Flags().String("validate-args", "", "Arguments passed to both scripts in run mode")
	cmd.Flags().String("php", "", "PHP interpreter (default: php in PATH)")

	return cmd
}

// minifyRun is everything runMinifyCmd needs after flag parsing.
type minifyRun struct {
	cfg        *config.Config
	logger     *slog.Logger
	outDir     string
	code       string
	stdin      bool
	cacheDir   string
	reportFile string
	quiet      bool
	validate   engine.ValidateOptions
	out        io.Writer
	errOut     io.Writer
}

// runMinifyCmd executes the minify command.
func runMinifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyMinifyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	r := &minifyRun{
		cfg:    cfg,
		logger: loggerFor(cmd),
		quiet:  getBoolFlag(cmd, "quiet"),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	cfg.Logger = r.logger
	flags := cmd.Flags()
	if r.outDir, err = flags.GetString("out-dir"); err != nil {
		return err
	}
	if r.code, err = flags.GetString("code"); err != nil {
		return err
	}
	if r.stdin, err = flags.GetBool("stdin"); err != nil {
		return err
	}
	if r.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return err
	}
	if r.reportFile, err = flags.GetString("report-file"); err != nil {
		return err
	}
	r.validate = engine.ValidateOptions{Mode: cfg.ValidateMode, Timeout: cfg.ValidateTimeout, Logger: r.logger}
	if r.validate.Args, err = flags.GetString("validate-args"); err != nil {
		return err
	}
	if r.validate.PHP, err = flags.GetString("php"); err != nil {
		return err
	}
	r.logger.Debug(engine.VersionFull())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sources := len(args)
	if r.code != "" {
		sources++
	}
	if r.stdin {
		sources++
	}
	switch {
	case sources == 0:
		return errors.New("no input (pass files, --code or --stdin)")
	case (r.code != "" || r.stdin) && sources > 1:
		return errors.New("--code and --stdin cannot be combined with other inputs")
	case r.code != "":
		return r.single(ctx, r.code, engine.InputCode)
	case r.stdin:
		src, err := engine.ReadStdin(cmd.InOrStdin())
		if err != nil {
			return err
		}
		return r.single(ctx, src, engine.InputCode)
	case len(args) == 1 && r.outDir == "":
		return r.single(ctx, args[0], engine.InputPath)
	}
	if cfg.OutputPath() != "" {
		return errors.New("--output takes a single input; use --out-dir for several files")
	}
	return r.batch(ctx, args)
}

// single minifies one input to stdout or cfg.Output.
func (r *minifyRun) single(ctx context.Context, input string, mode engine.InputMode) error {
	res, err := engine.Process(ctx, input, mode, &r.cfg.Options)
	if err != nil {
		return err
	}
	if res.OutputPath == "" {
		if _, err := io.WriteString(r.out, res.Code); err != nil {
			return err
		}
	} else {
		r.logger.Info("minified", "source", orCode(res.SourcePath), "output", res.OutputPath, "metrics", res.Metrics)
	}

	if r.cfg.ValidateMode != "" {
		if res.SourcePath != "" && res.OutputPath != "" {
			err = engine.Validate(ctx, res.SourcePath, res.OutputPath, r.validate)
		} else {
			original := input
			if res.SourcePath != "" {
				data, readErr := os.ReadFile(res.SourcePath)
				if readErr != nil {
					return readErr
				}
				original = string(data)
			}
			err = engine.ValidateCode(ctx, original, res.Code, r.validate)
		}
		if err != nil {
			return err
		}
	}

	if r.cfg.Report != "" {
		results := []engine.FileResult{{
			Path:       orCode(res.SourcePath),
			OutputPath: res.OutputPath,
			Metrics:    res.Metrics,
		}}
		return r.writeReport(engine.NewReport(results, &r.cfg.Options))
	}
	return nil
}

// batch minifies files concurrently into outDir.
func (r *minifyRun) batch(ctx context.Context, paths []string) error {
	options := []engine.BatchOption{
		engine.WithConcurrency(r.cfg.Jobs),
		engine.WithOutDir(r.outDir),
		engine.WithBatchLogger(r.logger),
	}
	if r.cfg.Cache {
		dir := r.cacheDir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		store, err := cache.Open(dir)
		if err != nil {
			return err
		}
		defer store.Close()
		r.logger.Debug("using cache", "path", store.Path())
		options = append(options, engine.WithCache(store))
	}

	results, err := engine.NewBatchProcessor(&r.cfg.Options, options...).Process(ctx, paths)
	if err != nil {
		return err
	}

	if r.cfg.ValidateMode != "" {
		for i := range results {
			if results[i].Err != nil {
				continue
			}
			if err := engine.Validate(ctx, results[i].Path, results[i].OutputPath, r.validate); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				results[i].Err = err
			}
		}
	}

	report := engine.NewReport(results, &r.cfg.Options)
	if r.cfg.Report != "" {
		if err := r.writeReport(report); err != nil {
			return err
		}
	} else if !r.quiet {
		engine.PrintSummary(r.errOut, report)
	}

	if report.Failed > 0 {
		for _, res := range results {
			if res.Err != nil {
				return fmt.Errorf("%d of %d files failed, first: %w", report.Failed, len(results), res.Err)
			}
		}
	}
	return nil
}

// writeReport renders report in the configured format to stdout or the
// report file.
func (r *minifyRun) writeReport(report *engine.Report) error {
	w := r.out
	if r.reportFile != "" {
		if dir := filepath.Dir(r.reportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(r.reportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	switch strings.ToLower(r.cfg.Report) {
	case config.ReportJSON:
		data, err := report.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return report.WriteMarkdown(w)
	}
}

// applyMinifyFlags overrides cfg with the flags given on the command line.
// Flags left at their defaults do not touch values from the config file.
func applyMinifyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	minify := func() *engine.MinifyOptions {
		if cfg.Minify == nil {
			cfg.Minify = &engine.MinifyOptions{}
		}
		return cfg.Minify
	}

	if flags.Changed("output") {
		if cfg.Output, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("exclude") {
		excludes, err := flags.GetStringSlice("exclude")
		if err != nil {
			return err
		}
		cfg.Excludes = append(cfg.Excludes, excludes...)
	}
	for _, b := range []struct {
		flag string
		set  func(keep bool)
	}{
		{"keep-variables", func(keep bool) { minify().ReplaceVariables = engine.Bool(!keep) }},
		{"keep-whitespace", func(keep bool) { minify().RemoveWhitespace = engine.Bool(!keep) }},
		{"keep-comments", func(keep bool) { minify().RemoveComments = engine.Bool(!keep) }},
		{"minify-html", func(on bool) { minify().MinifyHTML = engine.Bool(on) }},
		{"files-only", func(on bool) { cfg.FilesOnly = on }},
		{"cache", func(on bool) { cfg.Cache = on }},
	} {
		if !flags.Changed(b.flag) {
			continue
		}
		v, err := flags.GetBool(b.flag)
		if err != nil {
			return err
		}
		b.set(v)
	}
	if flags.Changed("names") {
		if cfg.NameStyle, err = flags.GetString("names"); err != nil {
			return err
		}
	}
	if flags.Changed("seed") {
		if cfg.Seed, err = flags.GetInt64("seed"); err != nil {
			return err
		}
	}
	if flags.Changed("profile") {
		if cfg.Profile, err = flags.GetString("profile"); err != nil {
			return err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Jobs, err = flags.GetInt("jobs"); err != nil {
			return err
		}
	}
	if flags.Changed("report") {
		if cfg.Report, err = flags.GetString("report"); err != nil {
			return err
		}
	}
	if flags.Changed("validate") {
		if cfg.ValidateMode, err = flags.GetString("validate"); err != nil {
			return err
		}
	}
	if flags.Changed("validate-timeout") {
		if cfg.ValidateTimeout, err = flags.GetDuration("validate-timeout"); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the config file and UGLIFYPHP_* variables.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, used, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if used != "" {
		slog.Debug("loaded config", "path", used)
	}
	envFiles, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}
	env, err := config.Environment(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func orCode(path string) string {
	if path == "" {
		return "<code>"
	}
	return path
}
