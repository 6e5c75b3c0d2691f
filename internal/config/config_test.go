package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	assert.Equal(t, runtime.NumCPU(), cfg.Jobs)
	assert.Equal(t, 30*time.Second, cfg.ValidateTimeout)
	assert.False(t, cfg.Cache)
	assert.True(t, cfg.ShouldReplaceVariables())
	assert.True(t, cfg.ShouldRemoveWhitespace())
	assert.True(t, cfg.ShouldRemoveComments())
	assert.False(t, cfg.ShouldMinifyHTML())
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero jobs", func(c *Config) { c.Jobs = 0 }, ErrInvalidJobs},
		{"bad report", func(c *Config) { c.Report = "html" }, ErrInvalidReportFormat},
		{"markdown report", func(c *Config) { c.Report = "Markdown" }, nil},
		{"bad validate", func(c *Config) { c.ValidateMode = "exec" }, ErrInvalidValidateMode},
		{"run validate", func(c *Config) { c.ValidateMode = "run" }, nil},
		{"negative timeout", func(c *Config) { c.ValidateTimeout = -time.Second }, ErrInvalidTimeout},
		{"bad names", func(c *Config) { c.NameStyle = "tiny" }, engine.ErrInvalidOption},
		{"bad exclude", func(c *Config) { c.Excludes = []string{"9x"} }, engine.ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `excludes:
  - $config
  - db
minify:
  remove_comments: false
output: dist/out.php
names: random
seed: 99
profile: readable
jobs: 3
cache: true
report: json
validate: lint
validate_timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"$config", "db"}, cfg.Excludes)
	assert.False(t, cfg.ShouldRemoveComments())
	assert.False(t, cfg.ShouldRemoveWhitespace(), "readable profile keeps whitespace")
	assert.True(t, cfg.ShouldReplaceVariables())
	assert.Equal(t, "dist/out.php", cfg.Output)
	assert.Equal(t, engine.NameStyleRandom, cfg.NameStyle)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 3, cfg.Jobs)
	assert.True(t, cfg.Cache)
	assert.Equal(t, ReportJSON, cfg.Report)
	assert.Equal(t, engine.ValidateLint, cfg.ValidateMode)
	assert.Equal(t, 45*time.Second, cfg.ValidateTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("files_only: true\n"), 0o600))
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.FilesOnly)
	assert.Equal(t, runtime.NumCPU(), cfg.Jobs)
	assert.Equal(t, DefaultValidateTimeout, cfg.ValidateTimeout)

	empty := filepath.Join(t.TempDir(), "empty.yml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err = LoadConfigFile(empty)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Jobs)
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := LoadConfigFile(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	unknown := filepath.Join(dir, "unknown.yml")
	require.NoError(t, os.WriteFile(unknown, []byte("exclude: [a]\n"), 0o600))
	_, err = LoadConfigFile(unknown)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("excludes: [a\n"), 0o600))
	_, err = LoadConfigFile(broken)
	assert.Error(t, err)
}

func TestLoadExplicitPath(t *testing.T) {
	t.Parallel()
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	path := filepath.Join(t.TempDir(), "c.yml")
	require.NoError(t, os.WriteFile(path, []byte("jobs: 2\n"), 0o600))
	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	cfg := NewConfig()
	err := cfg.ApplyEnv(map[string]string{
		"UGLIFYPHP_EXCLUDES":          "$a, b  c",
		"UGLIFYPHP_REPLACE_VARIABLES": "false",
		"UGLIFYPHP_REMOVE_WHITESPACE": "0",
		"UGLIFYPHP_REMOVE_COMMENTS":   "true",
		"UGLIFYPHP_MINIFY_HTML":       "1",
		"UGLIFYPHP_OUTPUT":            "out.php",
		"UGLIFYPHP_FILES_ONLY":        "true",
		"UGLIFYPHP_NAMES":             "random",
		"UGLIFYPHP_SEED":              "7",
		"UGLIFYPHP_JOBS":              "5",
		"UGLIFYPHP_PROFILE":           "safe",
		"UGLIFYPHP_CACHE":             "yes-please",
		"OTHER":                       "ignored",
	})
	assert.ErrorIs(t, err, ErrInvalidEnv)

	cfg = NewConfig()
	require.NoError(t, cfg.ApplyEnv(map[string]string{
		"UGLIFYPHP_EXCLUDES":          "$a, b  c",
		"UGLIFYPHP_REPLACE_VARIABLES": "false",
		"UGLIFYPHP_REMOVE_WHITESPACE": "0",
		"UGLIFYPHP_MINIFY_HTML":       "1",
		"UGLIFYPHP_OUTPUT":            "out.php",
		"UGLIFYPHP_FILES_ONLY":        "true",
		"UGLIFYPHP_NAMES":             "random",
		"UGLIFYPHP_SEED":              "7",
		"UGLIFYPHP_JOBS":              "5",
	}))
	assert.Equal(t, []string{"$a", "b", "c"}, cfg.Excludes)
	assert.False(t, cfg.ShouldReplaceVariables())
	assert.False(t, cfg.ShouldRemoveWhitespace())
	assert.True(t, cfg.ShouldRemoveComments())
	assert.True(t, cfg.ShouldMinifyHTML())
	assert.Equal(t, "out.php", cfg.Output)
	assert.True(t, cfg.FilesOnly)
	assert.Equal(t, engine.NameStyleRandom, cfg.NameStyle)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 5, cfg.Jobs)

	assert.ErrorIs(t, NewConfig().ApplyEnv(map[string]string{"UGLIFYPHP_SEED": "x"}), ErrInvalidEnv)
	assert.ErrorIs(t, NewConfig().ApplyEnv(map[string]string{"UGLIFYPHP_JOBS": "many"}), ErrInvalidEnv)
}

func TestReadEnvFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := filepath.Join(dir, "a.env")
	second := filepath.Join(dir, "b.env")
	require.NoError(t, os.WriteFile(first, []byte("UGLIFYPHP_NAMES=random\nUGLIFYPHP_JOBS=2\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("# override\nUGLIFYPHP_JOBS=4\n"), 0o600))

	env, err := ReadEnvFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, "random", env["UGLIFYPHP_NAMES"])
	assert.Equal(t, "4", env["UGLIFYPHP_JOBS"])

	_, err = ReadEnvFiles(filepath.Join(dir, "missing.env"))
	assert.ErrorContains(t, err, "(config-godotenv)")
}

// TestEnvironment sets process variables and must not run in parallel.
func TestEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("UGLIFYPHP_SEED=1\nUGLIFYPHP_JOBS=2\nHOME_ISH=x\n"), 0o600))
	t.Setenv("UGLIFYPHP_JOBS", "8")

	env, err := Environment(path)
	require.NoError(t, err)
	assert.Equal(t, "1", env["UGLIFYPHP_SEED"])
	assert.Equal(t, "8", env["UGLIFYPHP_JOBS"])
	assert.NotContains(t, env, "HOME_ISH")
}

func TestXDGConfigDir(t *testing.T) {
	t.Parallel()
	assert.Equal(t, AppName, filepath.Base(XDGConfigDir()))
}
