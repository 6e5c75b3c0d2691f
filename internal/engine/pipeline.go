package engine

import (
	"strings"
)

// RenameTransform replaces user variables with short names. One mapping is
// used for the whole file, so every occurrence of a name gets the same
// replacement no matter which function it sits in.
type RenameTransform struct{}

func (t *RenameTransform) Name() string { return "rename" }

func (t *RenameTransform) Apply(toks []Token, ctx *Ctx) ([]Token, error) {
	protected := findProtectedVariables(toks, ctx.Opts)

	// Every name present in the source is taken, renamed or not, so a
	// generated name can never shadow an existing variable. Protected names
	// are taken too: excludes, $GLOBALS keys and compact() arguments may
	// never appear as variables here.
	seen := map[string]bool{}
	var order []string
	collect := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, tok := range toks {
		switch tok.Kind {
		case TokVariable:
			collect(tok.Text)
		case TokTemplate:
			scanTemplateVariables(tok, func(name string, _, _ int, _ bool) {
				collect(name)
			})
		}
	}

	taken := make(map[string]bool, len(seen)+len(protected))
	for name := range seen {
		taken[name] = true
	}
	for name := range protected {
		taken[name] = true
	}
	namer := NewNamer(ctx.Opts.nameStyle(), ctx.Rng, taken)
	mapping := map[string]string{}
	for _, name := range order {
		if protected[name] || isReservedVariable(name) {
			continue
		}
		mapping[name] = namer.Next()
	}

	out := make([]Token, len(toks))
	for i, tok := range toks {
		switch tok.Kind {
		case TokVariable:
			if neo, ok := mapping[tok.Text]; ok {
				tok.Text = neo
			}
		case TokTemplate:
			tok.Text = rewriteTemplate(tok, mapping)
		}
		out[i] = tok
	}
	if ctx.Stats != nil {
		ctx.Stats.VariablesRenamed = len(mapping)
		ctx.Stats.VariablesKept = len(order) - len(mapping)
	}
	return out, nil
}

// templateBody returns the byte range of an interpolated token that holds
// string content: inside the quotes, or between a heredoc header and closer.
func templateBody(tok Token) (int, int) {
	text := tok.Text
	if !tok.Heredoc {
		if len(text) < 2 {
			return 0, 0
		}
		return 1, len(text) - 1
	}
	start := strings.IndexByte(text, '\n') + 1
	end := strings.LastIndexByte(text, '\n')
	if start <= 0 || end < start {
		return 0, 0
	}
	return start, end
}

// scanTemplateVariables reports each $name, {$name} and ${name} inside an
// interpolated string. For the braced form, start:end covers the bare name.
func scanTemplateVariables(tok Token, fn func(name string, start, end int, braced bool)) {
	text := tok.Text
	start, end := templateBody(tok)
	for i := start; i < end; i++ {
		switch text[i] {
		case '\\':
			i++
		case '$':
			if i+1 < end && isNameStart(text[i+1]) {
				j := i + 1 + nameLen(text[i+1:end])
				fn(text[i:j], i, j, false)
				i = j - 1
			} else if i+2 < end && text[i+1] == '{' && isNameStart(text[i+2]) {
				j := i + 2 + nameLen(text[i+2:end])
				fn("$"+text[i+2:j], i+2, j, true)
				i = j - 1
			}
		}
	}
}

func rewriteTemplate(tok Token, mapping map[string]string) string {
	var b strings.Builder
	last := 0
	scanTemplateVariables(tok, func(name string, start, end int, braced bool) {
		neo, ok := mapping[name]
		if !ok {
			return
		}
		b.WriteString(tok.Text[last:start])
		if braced {
			b.WriteString(neo[1:])
		} else {
			b.WriteString(neo)
		}
		last = end
	})
	if last == 0 {
		return tok.Text
	}
	b.WriteString(tok.Text[last:])
	return b.String()
}

// findProtectedVariables returns names that must survive renaming because
// something outside the local token stream refers to them by name.
func findProtectedVariables(toks []Token, opts *Options) map[string]bool {
	protected := map[string]bool{}
	if opts != nil {
		for _, ex := range opts.Excludes {
			protected[normalizeVar(ex)] = true
		}
	}
	for i, tok := range toks {
		switch tok.Kind {
		case TokVariable:
			// Foo::$bar, self::$bar, static::$bar
			if p := prevSignificant(toks, i); p >= 0 && toks[p].Is("::") {
				protected[tok.Text] = true
				continue
			}
			if isPropertyDeclaration(toks, i) {
				protected[tok.Text] = true
				continue
			}
			// $GLOBALS['name'] reaches the global $name.
			if tok.Text == "$GLOBALS" {
				if j := nextSignificant(toks, i); j >= 0 && toks[j].Is("[") {
					if k := nextSignificant(toks, j); k >= 0 {
						if name, ok := literalName(toks[k]); ok {
							protected[name] = true
						}
					}
				}
			}
		case TokIdent:
			switch strings.ToLower(tok.Text) {
			case "global":
				for j := i + 1; j < len(toks); j++ {
					if toks[j].Is(";") || toks[j].Kind == TokCloseTag {
						break
					}
					if toks[j].Kind == TokVariable {
						protected[toks[j].Text] = true
					}
				}
			case "compact":
				for _, name := range compactArguments(toks, i) {
					protected[name] = true
				}
			}
		}
	}
	return protected
}

// isPropertyDeclaration walks back over an optional type (Foo, ?int,
// int|string) looking for a property modifier.
func isPropertyDeclaration(toks []Token, i int) bool {
	for j := prevSignificant(toks, i); j >= 0; j = prevSignificant(toks, j) {
		t := toks[j]
		switch t.Kind {
		case TokIdent:
			lower := strings.ToLower(t.Text)
			if propertyModifiers[lower] {
				return true
			}
			if isKeyword(lower) {
				return false
			}
		case TokOperator:
			if t.Text != "?" && t.Text != "|" && t.Text != "&" {
				return false
			}
		default:
			return false
		}
	}
	return false
}

// compactArguments collects the string literals passed to compact(...).
func compactArguments(toks []Token, i int) []string {
	j := nextSignificant(toks, i)
	if j < 0 || !toks[j].Is("(") {
		return nil
	}
	var names []string
	depth := 0
	for k := j; k < len(toks); k++ {
		switch {
		case toks[k].Is("(") || toks[k].Is("["):
			depth++
		case toks[k].Is(")") || toks[k].Is("]"):
			depth--
			if depth == 0 {
				return names
			}
		default:
			if name, ok := literalName(toks[k]); ok {
				names = append(names, name)
			}
		}
	}
	return names
}

// literalName returns "$x" for the literal strings 'x' and "x".
func literalName(tok Token) (string, bool) {
	if (tok.Kind != TokString && tok.Kind != TokTemplate) || tok.Heredoc || len(tok.Text) < 3 {
		return "", false
	}
	inner := tok.Text[1 : len(tok.Text)-1]
	name := "$" + inner
	if !reVarName.MatchString(name) {
		return "", false
	}
	return name, true
}

// StripTransform removes whitespace and/or comments, putting back the
// minimum separator needed to keep adjacent tokens apart.
type StripTransform struct {
	Whitespace bool
	Comments   bool
}

func (t *StripTransform) Name() string { return "strip" }

func (t *StripTransform) Apply(toks []Token, ctx *Ctx) ([]Token, error) {
	out := make([]Token, 0, len(toks))
	gap := false
	for _, tok := range toks {
		switch {
		case tok.Kind == TokWhitespace && t.Whitespace:
			gap = true
			continue
		case tok.IsComment() && t.Comments:
			if ctx != nil && ctx.Stats != nil {
				ctx.Stats.CommentsRemoved++
			}
			gap = true
			continue
		}
		if gap && len(out) > 0 && needsSeparator(out[len(out)-1], tok) {
			out = append(out, Token{Kind: TokWhitespace, Text: " ", Line: tok.Line})
		}
		gap = false
		if t.Whitespace && tok.Kind == TokOpenTag && len(tok.Text) > 3 {
			// "<?php\n" and "<? " keep a single space.
			tok.Text = strings.TrimRight(tok.Text, " \t\r\n") + " "
		}
		out = append(out, tok)
		if t.Whitespace && (tok.Kind == TokLineComment || tok.Heredoc) {
			out = append(out, Token{Kind: TokWhitespace, Text: "\n", Line: tok.Line})
		}
	}
	return out, nil
}

// fusing lists the character sequences that two neighbouring tokens must not
// form once the space between them is gone.
var fusing = func() map[string]bool {
	m := map[string]bool{"?>": true, "<?": true, "//": true, "/*": true, "<<<": true, "#[": true}
	for _, op := range operators {
		m[op] = true
	}
	return m
}()

func needsSeparator(a, b Token) bool {
	if a.Text == "" || b.Text == "" {
		return false
	}
	switch a.Kind {
	case TokWhitespace, TokInlineHTML, TokCloseTag, TokOpenTag:
		return false
	}
	switch b.Kind {
	case TokWhitespace, TokInlineHTML, TokOpenTag:
		return false
	}
	la, fb := a.Text[len(a.Text)-1], b.Text[0]
	if isNameChar(la) && (isNameChar(fb) || fb == '\\') {
		return true
	}
	if a.Kind == TokNumber && fb == '.' {
		return true
	}
	if la == '.' && isDigit(fb) {
		return true
	}
	tail := a.Text[max(0, len(a.Text)-2):]
	head := b.Text[:min(2, len(b.Text))]
	for i := range tail {
		for j := 1; j <= len(head); j++ {
			if fusing[tail[i:]+head[:j]] {
				return true
			}
		}
	}
	return false
}
