package engine

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

// SourceFeatures holds the result of static analysis on a PHP file.
type SourceFeatures struct {
	HasVariableVariables bool `json:"variableVariables"` // $$name
	HasDynamicNames      bool `json:"dynamicNames"`      // ${expr}
	HasExtract           bool `json:"extract"`           // extract()
	HasCompact           bool `json:"compact"`           // compact()
	HasEval              bool `json:"eval"`              // eval()
	HasDefinedVars       bool `json:"definedVars"`       // get_defined_vars()
	HasIncludes          bool `json:"includes"`          // include/require and the _once forms
	HasGlobals           bool `json:"globals"`           // global statement, $GLOBALS
	HasHeredoc           bool `json:"heredoc"`
	HasInlineHTML        bool `json:"inlineHtml"`
	HasHaltCompiler      bool `json:"haltCompiler"`

	LineCount      int      `json:"lines"`
	FunctionCount  int      `json:"functions"`
	ClassCount     int      `json:"classes"`
	VariableCount  int      `json:"variables"`
	RenamableCount int      `json:"renamable"`
	CommentCount   int      `json:"comments"`
	Warnings       []string `json:"warnings,omitempty"`
	// SuggestedExcludes are renamable variables that some dynamic feature
	// may reach by name.
	SuggestedExcludes []string `json:"suggestedExcludes,omitempty"`
}

var reStringVar = regexp.MustCompile(`\$[A-Za-z_[:^ascii:]][A-Za-z0-9_[:^ascii:]]*`)

// Analyze lexes src and reports the features that matter for variable
// renaming, with warnings and exclude suggestions.
func Analyze(src string) (*SourceFeatures, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	f := &SourceFeatures{LineCount: countLines(src)}

	var order []string
	seen := map[string]bool{}
	topLevel := map[string]bool{}
	literals := map[string]bool{}
	inStrings := map[string]bool{}

	// braces records, per open "{", whether it started a function body.
	var braces []bool
	pendingFunc := false
	inFunc := 0
	note := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
		if inFunc == 0 && !pendingFunc {
			topLevel[name] = true
		}
	}
	callFollows := func(i int) bool {
		j := nextSignificant(toks, i)
		return j >= 0 && toks[j].Is("(")
	}

	for i, tok := range toks {
		switch tok.Kind {
		case TokInlineHTML:
			if strings.TrimSpace(tok.Text) != "" {
				f.HasInlineHTML = true
			}
		case TokLineComment, TokBlockComment, TokDocComment:
			f.CommentCount++
		case TokVariable:
			note(tok.Text)
			if tok.Text == "$GLOBALS" {
				f.HasGlobals = true
			}
		case TokTemplate:
			f.HasHeredoc = f.HasHeredoc || tok.Heredoc
			scanTemplateVariables(tok, func(name string, _, _ int, _ bool) {
				note(name)
			})
		case TokString:
			f.HasHeredoc = f.HasHeredoc || tok.Heredoc
			if name, ok := literalName(tok); ok {
				literals[name] = true
			}
			for _, name := range reStringVar.FindAllString(tok.Text, -1) {
				inStrings[name] = true
			}
		case TokOperator:
			switch tok.Text {
			case "$":
				if j := nextSignificant(toks, i); j >= 0 {
					if toks[j].Is("{") {
						f.HasDynamicNames = true
					} else if toks[j].Kind == TokVariable || toks[j].Is("$") {
						f.HasVariableVariables = true
					}
				}
			case "{":
				braces = append(braces, pendingFunc)
				if pendingFunc {
					inFunc++
					pendingFunc = false
				}
			case "}":
				if n := len(braces); n > 0 {
					if braces[n-1] {
						inFunc--
					}
					braces = braces[:n-1]
				}
			case ";":
				// abstract and interface methods have no body
				pendingFunc = false
			}
		case TokIdent:
			if p := prevSignificant(toks, i); p >= 0 && (toks[p].Is("->") || toks[p].Is("?->") || toks[p].Is("::")) {
				continue
			}
			switch lower := strings.ToLower(tok.Text); lower {
			case "function":
				f.FunctionCount++
				pendingFunc = true
			case "fn":
				if callFollows(i) {
					f.FunctionCount++
				}
			case "class", "interface", "trait", "enum":
				if j := nextSignificant(toks, i); j >= 0 && toks[j].Kind == TokIdent && !isKeyword(strings.ToLower(toks[j].Text)) {
					f.ClassCount++
				}
			case "extract":
				f.HasExtract = f.HasExtract || callFollows(i)
			case "compact":
				f.HasCompact = f.HasCompact || callFollows(i)
			case "eval":
				f.HasEval = true
			case "get_defined_vars":
				f.HasDefinedVars = f.HasDefinedVars || callFollows(i)
			case "include", "include_once", "require", "require_once":
				f.HasIncludes = true
			case "global":
				f.HasGlobals = true
			case "__halt_compiler":
				f.HasHaltCompiler = true
			}
		}
	}

	protected := findProtectedVariables(toks, nil)
	renamable := map[string]bool{}
	for _, name := range order {
		if !protected[name] && !isReservedVariable(name) {
			renamable[name] = true
		}
	}
	f.VariableCount = len(order)
	f.RenamableCount = len(renamable)

	suggest := map[string]bool{}
	addFrom := func(names map[string]bool) {
		for name := range names {
			if renamable[name] {
				suggest[name] = true
			}
		}
	}
	if f.HasVariableVariables || f.HasDynamicNames || f.HasExtract {
		addFrom(literals)
	}
	if f.HasEval {
		addFrom(inStrings)
	}
	if f.HasIncludes {
		addFrom(topLevel)
	}
	for name := range suggest {
		f.SuggestedExcludes = append(f.SuggestedExcludes, name)
	}
	slices.Sort(f.SuggestedExcludes)

	f.computeWarnings()
	return f, nil
}

func (f *SourceFeatures) computeWarnings() {
	if f.HasVariableVariables || f.HasDynamicNames {
		f.Warnings = append(f.Warnings, "Variable variables ($$x, ${expr}) resolve names at runtime; renamed targets will not be found")
	}
	if f.HasExtract {
		f.Warnings = append(f.Warnings, "extract() creates variables from array keys; list those variables in excludes")
	}
	if f.HasEval {
		f.Warnings = append(f.Warnings, "eval() code is a string and is not rewritten; variables it shares with this file must be excluded")
	}
	if f.HasDefinedVars {
		f.Warnings = append(f.Warnings, "get_defined_vars() returns minified names as array keys")
	}
	if f.HasIncludes {
		f.Warnings = append(f.Warnings, "include/require share the top-level scope with other files; renaming is per file")
	}
	if f.HasCompact {
		f.Warnings = append(f.Warnings, "compact() arguments are kept under their original names")
	}
	if f.HasGlobals {
		f.Warnings = append(f.Warnings, "global statements and $GLOBALS keys are kept under their original names")
	}
	if f.HasHaltCompiler {
		f.Warnings = append(f.Warnings, "Data after __halt_compiler() is copied verbatim")
	}
	if f.HasInlineHTML {
		f.Warnings = append(f.Warnings, "Inline HTML is copied verbatim")
	}
}

// RenameSafe reports whether no feature that resolves variable names at
// runtime was found.
func (f *SourceFeatures) RenameSafe() bool {
	return !(f.HasVariableVariables || f.HasDynamicNames || f.HasExtract ||
		f.HasEval || f.HasDefinedVars || f.HasIncludes)
}

// FeatureNames lists the detected features for display.
func (f *SourceFeatures) FeatureNames() []string {
	var features []string
	for _, ft := range []struct {
		on   bool
		name string
	}{
		{f.HasVariableVariables, "VariableVariables"},
		{f.HasDynamicNames, "DynamicNames"},
		{f.HasExtract, "extract"},
		{f.HasCompact, "compact"},
		{f.HasEval, "eval"},
		{f.HasDefinedVars, "get_defined_vars"},
		{f.HasIncludes, "Includes"},
		{f.HasGlobals, "Globals"},
		{f.HasHeredoc, "Heredoc"},
		{f.HasInlineHTML, "InlineHTML"},
		{f.HasHaltCompiler, "HaltCompiler"},
	} {
		if ft.on {
			features = append(features, ft.name)
		}
	}
	return features
}

// PrintAnalysis writes a human-readable analysis to w.
func PrintAnalysis(w io.Writer, name string, f *SourceFeatures) {
	c := paletteFor(w)
	fmt.Fprintf(w, "%s╔══ %s%s\n", c.Cyan, name, c.Reset)
	fmt.Fprintf(w, "%s║%s  Lines: %-6d Functions: %-4d Classes: %-4d Comments: %d\n",
		c.Cyan, c.Reset, f.LineCount, f.FunctionCount, f.ClassCount, f.CommentCount)
	fmt.Fprintf(w, "%s║%s  Variables: %-4d Renamable: %d\n", c.Cyan, c.Reset, f.VariableCount, f.RenamableCount)
	if features := f.FeatureNames(); len(features) > 0 {
		fmt.Fprintf(w, "%s║%s  Features: %s\n", c.Cyan, c.Reset, strings.Join(features, ", "))
	}
	if f.RenameSafe() {
		fmt.Fprintf(w, "%s║%s  %s→ Renaming is safe with default options%s\n", c.Cyan, c.Reset, c.Green, c.Reset)
	}
	if len(f.SuggestedExcludes) > 0 {
		fmt.Fprintf(w, "%s║%s  %s→ Suggested excludes: %s%s\n", c.Cyan, c.Reset, c.Green, strings.Join(f.SuggestedExcludes, " "), c.Reset)
	}
	for _, warn := range f.Warnings {
		fmt.Fprintf(w, "%s║%s  %s⚠ %s%s\n", c.Yellow, c.Reset, c.Yellow, warn, c.Reset)
	}
	fmt.Fprintf(w, "%s╚══%s\n", c.Cyan, c.Reset)
}
