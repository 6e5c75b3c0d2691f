package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu   sync.Mutex
	m    map[string]string
	puts int
}

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.m[key]
	return code, ok, nil
}

func (c *memCache) Put(_ context.Context, key, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]string{}
	}
	c.m[key] = code
	c.puts++
	return nil
}

func writeSources(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.php", "b.php", "c.php"} {
		src, ok := files[name]
		if !ok {
			continue
		}
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
		paths = append(paths, p)
	}
	return dir, paths
}

func TestBatchProcessor(t *testing.T) {
	t.Parallel()
	_, paths := writeSources(t, map[string]string{
		"a.php": "<?php $x = 1;",
		"b.php": "<?php $y = 'open;",
		"c.php": "<?php // c\n$z = 2;",
	})
	outDir := filepath.Join(t.TempDir(), "dist")

	bp := NewBatchProcessor(nil, WithOutDir(outDir), WithConcurrency(2))
	results, err := bp.Process(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
	}

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrSyntax)
	assert.NoError(t, results[2].Err)

	data, err := os.ReadFile(filepath.Join(outDir, "a.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php $a=1;", string(data))
	data, err = os.ReadFile(filepath.Join(outDir, "c.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php $a=2;", string(data))
	_, err = os.Stat(filepath.Join(outDir, "b.php"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, results[2].Metrics.CommentsRemoved)
}

func TestBatchProcessorRejectsDuplicateDestinations(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := filepath.Join(dir, "a", "x.php")
	second := filepath.Join(dir, "b", "x.php")
	for p, src := range map[string]string{first: "<?php $one = 1;", second: "<?php $two = 2; $three = 3;"} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	}
	outDir := filepath.Join(dir, "dist")

	results, err := NewBatchProcessor(nil, WithOutDir(outDir)).Process(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrDuplicateDest)
	assert.Contains(t, results[1].Err.Error(), first)

	data, err := os.ReadFile(filepath.Join(outDir, "x.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php $a=1;", string(data))
}

func TestBatchProcessorBesideSource(t *testing.T) {
	t.Parallel()
	dir, paths := writeSources(t, map[string]string{"a.php": "<?php $x = 1;"})
	results, err := NewBatchProcessor(&Options{}).Process(context.Background(), paths)
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Equal(t, filepath.Join(dir, "a.min.php"), results[0].OutputPath)
	assert.FileExists(t, results[0].OutputPath)
}

func TestBatchProcessorCache(t *testing.T) {
	t.Parallel()
	_, paths := writeSources(t, map[string]string{
		"a.php": "<?php $x = 1;",
		"c.php": "<?php $z = 2;",
	})
	outDir := t.TempDir()
	cache := &memCache{}

	first, err := NewBatchProcessor(nil, WithOutDir(outDir), WithCache(cache)).Process(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)
	for _, res := range first {
		assert.False(t, res.Cached)
	}

	require.NoError(t, os.Remove(filepath.Join(outDir, "a.php")))
	second, err := NewBatchProcessor(nil, WithOutDir(outDir), WithCache(cache)).Process(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)
	for i, res := range second {
		assert.True(t, res.Cached)
		assert.Equal(t, first[i].Metrics.SizeBytes, res.Metrics.SizeBytes)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "a.php"))
	require.NoError(t, err)
	assert.Equal(t, "<?php $a=1;", string(data))

	// different options miss the cache
	_, err = NewBatchProcessor(&Options{Profile: "safe"}, WithOutDir(outDir), WithCache(cache)).Process(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 4, cache.puts)
}

func TestBatchProcessorCancelled(t *testing.T) {
	t.Parallel()
	_, paths := writeSources(t, map[string]string{"a.php": "<?php $x = 1;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := NewBatchProcessor(nil, WithOutDir(t.TempDir())).Process(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()
	src := "<?php $x = 1;"
	base := CacheKey(src, &Options{Excludes: []string{"a", "$b"}})
	assert.Len(t, base, 64)
	assert.Equal(t, base, CacheKey(src, &Options{Excludes: []string{"b", "a"}}))
	assert.NotEqual(t, base, CacheKey(src, &Options{}))
	assert.NotEqual(t, base, CacheKey(src+" ", &Options{Excludes: []string{"a", "b"}}))
	assert.NotEqual(t, CacheKey(src, nil), CacheKey(src, &Options{NameStyle: NameStyleRandom}))
	assert.Equal(t, CacheKey(src, nil), CacheKey(src, &Options{Profile: "default"}))
}
