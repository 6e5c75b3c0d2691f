package engine

import "strings"

type TokenKind int

const (
	TokInlineHTML TokenKind = iota
	TokOpenTag
	TokCloseTag
	TokWhitespace
	TokLineComment
	TokBlockComment
	TokDocComment
	TokVariable
	TokIdent
	TokNumber
	TokString   // single-quoted string or nowdoc: no interpolation
	TokTemplate // double-quoted, backtick or heredoc: interpolated
	TokOperator
)

var kindNames = [...]string{
	TokInlineHTML:   "inline-html",
	TokOpenTag:      "open-tag",
	TokCloseTag:     "close-tag",
	TokWhitespace:   "whitespace",
	TokLineComment:  "line-comment",
	TokBlockComment: "block-comment",
	TokDocComment:   "doc-comment",
	TokVariable:     "variable",
	TokIdent:        "ident",
	TokNumber:       "number",
	TokString:       "string",
	TokTemplate:     "template",
	TokOperator:     "operator",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Token struct {
	Kind TokenKind
	Text string
	Line int
	// Heredoc is set for heredoc and nowdoc tokens; their closer needs a line break after it.
	Heredoc bool
}

// IsComment reports whether the token is any kind of comment.
func (t Token) IsComment() bool {
	return t.Kind == TokLineComment || t.Kind == TokBlockComment || t.Kind == TokDocComment
}

// Trivia is whitespace or a comment.
func (t Token) Trivia() bool {
	return t.Kind == TokWhitespace || t.IsComment()
}

// Is reports whether t is the operator op or the identifier op (case-insensitive).
func (t Token) Is(op string) bool {
	switch t.Kind {
	case TokOperator:
		return t.Text == op
	case TokIdent:
		return strings.EqualFold(t.Text, op)
	}
	return false
}

// Join concatenates token texts.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

// nextSignificant returns the index of the first non-trivia token after i, or -1.
func nextSignificant(toks []Token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if !toks[j].Trivia() {
			return j
		}
	}
	return -1
}

// prevSignificant returns the index of the last non-trivia token before i, or -1.
func prevSignificant(toks []Token, i int) int {
	for j := i - 1; j >= 0; j-- {
		if !toks[j].Trivia() {
			return j
		}
	}
	return -1
}
