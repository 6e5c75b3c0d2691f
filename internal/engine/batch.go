package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// ResultCache stores minified output by CacheKey.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, code string) error
}

// FileResult is the outcome for one file of a batch.
type FileResult struct {
	Path       string
	OutputPath string
	Metrics    Metrics
	Cached     bool
	Err        error
}

// BatchProcessor minifies many files concurrently. Files are independent: a
// failure is recorded in its FileResult and the others carry on.
type BatchProcessor struct {
	opts        *Options
	outDir      string
	concurrency int
	logger      *slog.Logger
	cache       ResultCache
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithConcurrency sets the maximum number of files processed at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithOutDir writes results into dir instead of name.min.php beside each source.
func WithOutDir(dir string) BatchOption {
	return func(b *BatchProcessor) {
		b.outDir = dir
	}
}

func WithCache(c ResultCache) BatchOption {
	return func(b *BatchProcessor) {
		b.cache = c
	}
}

func NewBatchProcessor(opts *Options, options ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		opts:        opts.Clone(),
		concurrency: runtime.NumCPU(),
	}
	for _, o := range options {
		o(bp)
	}
	if bp.logger == nil {
		bp.logger = bp.opts.logger()
	}
	return bp
}

// Process minifies paths and returns one result per path, in order. The
// error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) Process(ctx context.Context, paths []string) ([]FileResult, error) {
	bp.logger.Info("starting batch", "files", len(paths), "concurrency", bp.concurrency)
	start := time.Now()
	results := make([]FileResult, len(paths))

	// Two inputs with the same destination would race on one file; the
	// first keeps it and the rest fail without being read.
	owner := make(map[string]string, len(paths))
	skip := make([]bool, len(paths))
	for i, path := range paths {
		dest := filepath.Clean(minifiedName(bp.outDir, path))
		if first, ok := owner[dest]; ok {
			skip[i] = true
			results[i] = FileResult{
				Path:       path,
				OutputPath: dest,
				Err:        fmt.Errorf("%w: %s (also %s)", ErrDuplicateDest, dest, first),
			}
			bp.logger.Warn("minify skipped", "file", path, "error", results[i].Err)
			continue
		}
		owner[dest] = path
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)
	for i, path := range paths {
		if skip[i] {
			continue
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			// Each goroutine owns results[i]; no locking needed.
			results[i] = bp.processFile(ctx, path)
			if err := results[i].Err; err != nil {
				bp.logger.Warn("minify failed", "file", path, "error", err)
			} else {
				bp.logger.Debug("minified", "file", path, "cached", results[i].Cached, "metrics", results[i].Metrics)
			}
			return nil
		})
	}
	err := g.Wait()
	bp.logger.Info("batch complete", "files", len(paths), "elapsed", time.Since(start).Round(time.Millisecond))
	return results, err
}

func (bp *BatchProcessor) processFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path, OutputPath: minifiedName(bp.outDir, path)}
	src, _, err := ResolveInput(path, InputPath)
	if err != nil {
		res.Err = err
		return res
	}
	key := CacheKey(src, bp.opts)
	var out string
	if bp.cache != nil {
		if code, ok, err := bp.cache.Get(ctx, key); err != nil {
			bp.logger.Warn("cache lookup failed", "file", path, "error", err)
		} else if ok {
			out = code
			res.Cached = true
			res.Metrics.finish(src, out)
		}
	}
	if !res.Cached {
		out, res.Metrics, err = MinifyString(src, bp.opts)
		if err != nil {
			res.Err = err
			return res
		}
		if bp.cache != nil {
			if err := bp.cache.Put(ctx, key, out); err != nil {
				bp.logger.Warn("cache store failed", "file", path, "error", err)
			}
		}
	}
	res.Err = writeOutput(res.OutputPath, out)
	return res
}

// CacheKey identifies src minified under the effective options.
func CacheKey(src string, opts *Options) string {
	h := SumBlake3(append([]byte(src), Fingerprint(opts)...))
	return HexString(h)
}

// Fingerprint serialises the options that influence the output.
func Fingerprint(opts *Options) []byte {
	excludes := make([]string, 0)
	if opts != nil {
		for _, ex := range opts.Excludes {
			excludes = append(excludes, normalizeVar(ex))
		}
	}
	slices.Sort(excludes)
	var seed int64
	if opts != nil {
		seed = opts.Seed
	}
	b, _ := json.Marshal(struct {
		Replace    bool     `json:"r"`
		Whitespace bool     `json:"w"`
		Comments   bool     `json:"c"`
		Names      string   `json:"n"`
		Seed       int64    `json:"s"`
		Excludes   []string `json:"e"`
	}{
		opts.ShouldReplaceVariables(),
		opts.ShouldRemoveWhitespace(),
		opts.ShouldRemoveComments(),
		opts.nameStyle(),
		seed,
		excludes,
	})
	return append([]byte{0}, b...)
}
