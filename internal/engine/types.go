package engine

import (
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"regexp"
	"strings"
)

// Name styles for generated variable names.
const (
	NameStyleShort  = "short"
	NameStyleRandom = "random"
)

// MinifyOptions holds the minifier switches. Nil fields take their defaults,
// so a partially filled record (e.g. from a YAML file) behaves as documented.
type MinifyOptions struct {
	ReplaceVariables *bool `yaml:"replace_variables,omitempty" json:"replace_variables,omitempty"`
	RemoveWhitespace *bool `yaml:"remove_whitespace,omitempty" json:"remove_whitespace,omitempty"`
	RemoveComments   *bool `yaml:"remove_comments,omitempty" json:"remove_comments,omitempty"`
	// MinifyHTML is reserved and has no effect; inline HTML is always kept verbatim.
	MinifyHTML *bool `yaml:"minify_html,omitempty" json:"minify_html,omitempty"`
}

type Options struct {
	// Excludes lists variable names that must keep their name, with or without "$".
	Excludes []string       `yaml:"excludes,omitempty" json:"excludes,omitempty"`
	Minify   *MinifyOptions `yaml:"minify,omitempty" json:"minify,omitempty"`
	// Output is the file to write the result to. Only "" means no file is
	// written; any other value, whitespace included, is used as the path.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
	// FilesOnly asserts that path-or-code inputs are always paths, skipping the stat.
	FilesOnly bool   `yaml:"files_only,omitempty" json:"files_only,omitempty"`
	NameStyle string `yaml:"names,omitempty" json:"names,omitempty"`
	// Seed drives NameStyleRandom. Zero derives the seed from the source hash.
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	// Profile presets the Minify switches left unset (see ProfileNames).
	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`

	Logger *slog.Logger `yaml:"-" json:"-"`
}

// Bool returns a pointer to v, for filling MinifyOptions.
func Bool(v bool) *bool { return &v }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (o *Options) minify() *MinifyOptions {
	if o == nil {
		return &MinifyOptions{}
	}
	var m MinifyOptions
	if o.Minify != nil {
		m = *o.Minify
	}
	m = applyProfile(m, o.Profile)
	return &m
}

func (o *Options) ShouldReplaceVariables() bool { return boolOr(o.minify().ReplaceVariables, true) }
func (o *Options) ShouldRemoveWhitespace() bool { return boolOr(o.minify().RemoveWhitespace, true) }
func (o *Options) ShouldRemoveComments() bool   { return boolOr(o.minify().RemoveComments, true) }
func (o *Options) ShouldMinifyHTML() bool       { return boolOr(o.minify().MinifyHTML, false) }

// OutputPath returns the destination path, or "" when nothing should be written.
func (o *Options) OutputPath() string {
	if o == nil {
		return ""
	}
	return o.Output
}

func (o *Options) nameStyle() string {
	if o == nil || o.NameStyle == "" {
		return NameStyleShort
	}
	return strings.ToLower(o.NameStyle)
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Validate checks the option values that can be wrong.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	switch o.nameStyle() {
	case NameStyleShort, NameStyleRandom:
	default:
		return fmt.Errorf("%w: names %q (short|random)", ErrInvalidOption, o.NameStyle)
	}
	if _, err := lookupProfile(o.Profile); err != nil {
		return err
	}
	for _, ex := range o.Excludes {
		if !reVarName.MatchString(normalizeVar(ex)) {
			return fmt.Errorf("%w: exclude %q is not a PHP variable name", ErrInvalidOption, ex)
		}
	}
	return nil
}

// Clone returns a deep copy so callers' records are never mutated.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	c := *o
	c.Excludes = append([]string(nil), o.Excludes...)
	if o.Minify != nil {
		m := *o.Minify
		c.Minify = &m
	}
	return &c
}

// Transform rewrites a token stream.
type Transform interface {
	Apply(toks []Token, ctx *Ctx) ([]Token, error)
	Name() string
}

type Ctx struct {
	Rng        *mathrand.Rand
	Opts       *Options
	SourceHash string
	Stats      *Metrics
}

var (
	// reVarName matches a complete PHP variable including the leading "$".
	reVarName = regexp.MustCompile(`^\$[A-Za-z_[:^ascii:]][A-Za-z0-9_[:^ascii:]]*$`)
)

// normalizeVar returns name with exactly one leading "$".
func normalizeVar(name string) string {
	name = strings.TrimSpace(name)
	return "$" + strings.TrimLeft(name, "$")
}
