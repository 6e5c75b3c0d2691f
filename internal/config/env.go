package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

// EnvPrefix starts every environment variable the config reads.
const EnvPrefix = "UGLIFYPHP_"

// ReadEnvFiles parses .env style files. Later files override earlier ones.
func ReadEnvFiles(filenames ...string) (map[string]string, error) {
	data := map[string]string{}
	for _, name := range filenames {
		m, err := godotenv.Read(name)
		if err != nil {
			return nil, fmt.Errorf("(config-godotenv) %w", err)
		}
		for k, v := range m {
			data[k] = v
		}
	}
	return data, nil
}

// Environment returns the UGLIFYPHP_* variables from the given env files,
// overlaid with the process environment.
func Environment(filenames ...string) (map[string]string, error) {
	env, err := ReadEnvFiles(filenames...)
	if err != nil {
		return nil, err
	}
	for k := range env {
		if !strings.HasPrefix(k, EnvPrefix) {
			delete(env, k)
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides c with the UGLIFYPHP_* values in env. Unknown keys
// are ignored.
func (c *Config) ApplyEnv(env map[string]string) error {
	boolVar := func(key string, set func(bool)) error {
		v, ok := env[EnvPrefix+key]
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, key, v)
		}
		set(b)
		return nil
	}
	minify := func() *engine.MinifyOptions {
		if c.Minify == nil {
			c.Minify = &engine.MinifyOptions{}
		}
		return c.Minify
	}

	if v, ok := env[EnvPrefix+"EXCLUDES"]; ok {
		c.Excludes = engine.SplitList(v)
	}
	for _, b := range []struct {
		key string
		set func(bool)
	}{
		{"REPLACE_VARIABLES", func(v bool) { minify().ReplaceVariables = engine.Bool(v) }},
		{"REMOVE_WHITESPACE", func(v bool) { minify().RemoveWhitespace = engine.Bool(v) }},
		{"REMOVE_COMMENTS", func(v bool) { minify().RemoveComments = engine.Bool(v) }},
		{"MINIFY_HTML", func(v bool) { minify().MinifyHTML = engine.Bool(v) }},
		{"FILES_ONLY", func(v bool) { c.FilesOnly = v }},
		{"CACHE", func(v bool) { c.Cache = v }},
	} {
		if err := boolVar(b.key, b.set); err != nil {
			return err
		}
	}
	if v, ok := env[EnvPrefix+"OUTPUT"]; ok {
		c.Output = v
	}
	if v, ok := env[EnvPrefix+"NAMES"]; ok {
		c.NameStyle = strings.TrimSpace(v)
	}
	if v, ok := env[EnvPrefix+"PROFILE"]; ok {
		c.Profile = strings.TrimSpace(v)
	}
	if v, ok := env[EnvPrefix+"SEED"]; ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.Seed = seed
	}
	if v, ok := env[EnvPrefix+"JOBS"]; ok {
		jobs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sJOBS=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.Jobs = jobs
	}
	return nil
}
