package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

const phpSource = "<?php\n$total = 1; // one\necho $total;\n"

// run executes the root command with an empty config file so the user's
// own configuration is never read.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o600))

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writePHP(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestMinifyCode(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, "", "minify", "-c", phpSource)
	require.NoError(t, err)
	assert.Equal(t, "<?php $a=1;echo$a;", out)
}

func TestMinifyStdin(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, phpSource, "minify", "--stdin", "--keep-variables")
	require.NoError(t, err)
	assert.Equal(t, "<?php $total=1;echo$total;", out)
}

func TestMinifyFileToOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := writePHP(t, dir, "app.php", phpSource)
	dest := filepath.Join(dir, "dist", "app.php")

	out, _, err := run(t, "", "minify", src, "-o", dest, "--keep-comments", "-e", "total", "-q")
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<?php $total=1;// one\necho$total;", string(data))
}

func TestMinifyInputErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := writePHP(t, dir, "a.php", phpSource)
	b := writePHP(t, dir, "b.php", phpSource)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"minify"}, "no input"},
		{"code and files", []string{"minify", a, "-c", phpSource}, "cannot be combined"},
		{"output with several files", []string{"minify", a, b, "-o", filepath.Join(dir, "x.php")}, "single input"},
		{"missing file", []string{"minify", filepath.Join(dir, "nope.php")}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMinifyInvalidOptions(t *testing.T) {
	t.Parallel()
	_, _, err := run(t, "", "minify", "-c", phpSource, "--names", "tiny")
	assert.ErrorIs(t, err, engine.ErrInvalidOption)

	_, _, err = run(t, "", "minify", "-c", phpSource, "--report", "html")
	assert.Error(t, err)
}

func TestMinifyBatchWithReport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := []string{writePHP(t, dir, "a.php", phpSource), writePHP(t, dir, "b.php", phpSource)}
	outDir := filepath.Join(dir, "dist")
	reportFile := filepath.Join(dir, "reports", "report.json")

	args := append([]string{"minify", "--out-dir", outDir, "-j", "2", "--report", "json", "--report-file", reportFile}, paths...)
	_, _, err := run(t, "", args...)
	require.NoError(t, err)

	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(outDir, filepath.Base(p)))
		require.NoError(t, err)
		assert.Equal(t, "<?php $a=1;echo$a;", string(data))
	}

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	var report struct {
		Files  []map[string]any `json:"files"`
		Failed int              `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Len(t, report.Files, 2)
	assert.Zero(t, report.Failed)
}

func TestMinifyBatchBesideSources(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := writePHP(t, dir, "a.php", phpSource)
	b := writePHP(t, dir, "b.php", "<?php echo 'open;")

	_, stderr, err := run(t, "", "minify", a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.ErrorIs(t, err, engine.ErrSyntax)
	assert.FileExists(t, filepath.Join(dir, "a.min.php"))
	assert.NoFileExists(t, filepath.Join(dir, "b.min.php"))
	assert.Contains(t, stderr, "UglifyPHP")
}

func TestMinifyCacheAndStats(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	a := writePHP(t, dir, "a.php", phpSource)
	b := writePHP(t, dir, "b.php", "<?php $x = 2;")
	outDir := filepath.Join(dir, "dist")

	for range 2 {
		_, _, err := run(t, "", "minify", a, b, "--out-dir", outDir, "--cache", "--cache-dir", cacheDir, "-q")
		require.NoError(t, err)
	}

	out, _, err := run(t, "", "cache", "stats", "--cache-dir", cacheDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 2")

	out, _, err = run(t, "", "cache", "prune", "--cache-dir", cacheDir, "--older-than", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 entries")
}

func TestMinifyEnvFile(t *testing.T) {
	t.Parallel()
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("UGLIFYPHP_EXCLUDES=total\n"), 0o600))

	out, _, err := run(t, "", "--env-file", envFile, "minify", "-c", phpSource)
	require.NoError(t, err)
	assert.Equal(t, "<?php $total=1;echo$total;", out)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()
	src := "<?php\n$name = 'config';\n$config = 1;\necho $$name;\n"

	out, _, err := run(t, "", "analyze", "-c", src)
	require.NoError(t, err)
	assert.Contains(t, out, "<code>")
	assert.Contains(t, out, "Suggested excludes: $config")

	out, _, err = run(t, "", "analyze", "--json", "-c", src)
	require.NoError(t, err)
	var got []analysis
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.True(t, got[0].Features.HasVariableVariables)
	assert.Equal(t, []string{"$config"}, got[0].Features.SuggestedExcludes)
}
