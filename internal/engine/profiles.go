package engine

import (
	"fmt"
	"slices"
	"strings"
)

// Profiles are presets for the minify switches. A profile only fills
// switches the caller left unset.
var profiles = map[string]MinifyOptions{
	"default": {},
	// strip only; for code that reaches variables by name
	"safe": {ReplaceVariables: Bool(false)},
	// keep line structure so stack traces stay useful
	"readable": {RemoveWhitespace: Bool(false)},
	// rename only; output diffs cleanly against the source
	"debug": {RemoveWhitespace: Bool(false), RemoveComments: Bool(false)},
}

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupProfile(name string) (MinifyOptions, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return MinifyOptions{}, nil
	}
	p, ok := profiles[name]
	if !ok {
		return MinifyOptions{}, fmt.Errorf("%w: profile %q (%s)", ErrInvalidOption, name, strings.Join(ProfileNames(), "|"))
	}
	return p, nil
}

// applyProfile fills the nil fields of m from the profile.
func applyProfile(m MinifyOptions, profile string) MinifyOptions {
	p, err := lookupProfile(profile)
	if err != nil {
		return m
	}
	if m.ReplaceVariables == nil {
		m.ReplaceVariables = p.ReplaceVariables
	}
	if m.RemoveWhitespace == nil {
		m.RemoveWhitespace = p.RemoveWhitespace
	}
	if m.RemoveComments == nil {
		m.RemoveComments = p.RemoveComments
	}
	if m.MinifyHTML == nil {
		m.MinifyHTML = p.MinifyHTML
	}
	return m
}

// SplitList splits a comma or whitespace separated list, dropping empty items.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
