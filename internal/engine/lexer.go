package engine

import (
	"strings"
)

// operators are matched longest first.
var operators = []string{
	"<=>", "**=", "...", "<<=", ">>=", "===", "!==", "??=", "?->",
	"++", "--", "->", "=>", "::", "==", "!=", "<>", "<=", ">=", "&&", "||", "??",
	"+=", "-=", "*=", "/=", ".=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
}

type lexer struct {
	src  string
	pos  int
	line int
	toks []Token
	// halted is set once __halt_compiler has been seen; the next ";" or "?>" ends lexing.
	halted bool
}

// Lex splits PHP source into tokens. Joining the token texts yields src unchanged.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1}
	for l.pos < len(l.src) {
		l.lexHTML()
		if l.pos >= len(l.src) {
			break
		}
		if err := l.lexCode(); err != nil {
			return nil, err
		}
	}
	return l.toks, nil
}

func (l *lexer) emit(kind TokenKind, end int) {
	text := l.src[l.pos:end]
	l.toks = append(l.toks, Token{Kind: kind, Text: text, Line: l.line})
	l.line += strings.Count(text, "\n")
	l.pos = end
}

func (l *lexer) errorf(msg string) error {
	return &SyntaxError{Line: l.line, Msg: msg}
}

// lexHTML consumes inline HTML up to and including the next open tag.
func (l *lexer) lexHTML() {
	from := l.pos
	for {
		idx := strings.Index(l.src[from:], "<?")
		if idx < 0 {
			l.emit(TokInlineHTML, len(l.src))
			return
		}
		start := from + idx
		if end, ok := l.openTagEnd(start); ok {
			if start > l.pos {
				l.emit(TokInlineHTML, start)
			}
			l.emit(TokOpenTag, end)
			return
		}
		from = start + 2
	}
}

// openTagEnd returns where the open tag at start ends, including the single
// whitespace PHP folds into "<?php" and "<?".
func (l *lexer) openTagEnd(start int) (int, bool) {
	rest := l.src[start:]
	switch {
	case len(rest) >= 5 && strings.EqualFold(rest[:5], "<?php"):
		if len(rest) == 5 {
			return start + 5, true
		}
		if n := tagSpace(rest[5:]); n > 0 {
			return start + 5 + n, true
		}
		return 0, false
	case strings.HasPrefix(rest, "<?="):
		return start + 3, true
	default:
		if n := tagSpace(rest[2:]); n > 0 {
			return start + 2 + n, true
		}
	}
	return 0, false
}

func tagSpace(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r'):
		return 1
	}
	return 0
}

func (l *lexer) lexCode() error {
	for l.pos < len(l.src) {
		rest := l.src[l.pos:]
		c := rest[0]
		switch {
		case strings.HasPrefix(rest, "?>"):
			end := l.pos + 2 + newlineLen(rest[2:])
			l.emit(TokCloseTag, end)
			if l.halted {
				l.emitRaw()
			}
			return nil
		case isSpace(c):
			i := l.pos
			for i < len(l.src) && isSpace(l.src[i]) {
				i++
			}
			l.emit(TokWhitespace, i)
		case strings.HasPrefix(rest, "#["):
			l.emit(TokOperator, l.pos+2)
		case c == '#' || strings.HasPrefix(rest, "//"):
			l.emit(TokLineComment, l.pos+lineCommentLen(rest))
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return l.errorf("unterminated comment")
			}
			kind := TokBlockComment
			if len(rest) > 3 && rest[2] == '*' && isSpace(rest[3]) {
				kind = TokDocComment
			}
			l.emit(kind, l.pos+2+end+2)
		case c == '$' && len(rest) > 1 && isNameStart(rest[1]):
			l.emit(TokVariable, l.pos+1+nameLen(rest[1:]))
		case isNameStart(c) || (c == '\\' && len(rest) > 1 && isNameStart(rest[1])):
			l.emit(TokIdent, l.pos+qualifiedNameLen(rest))
			if strings.EqualFold(l.toks[len(l.toks)-1].Text, "__halt_compiler") {
				l.halted = true
			}
		case isDigit(c) || (c == '.' && len(rest) > 1 && isDigit(rest[1])):
			l.emit(TokNumber, l.pos+numberLen(rest))
		case c == '\'':
			end, ok := quotedLen(rest, '\'')
			if !ok {
				return l.errorf("unterminated string")
			}
			l.emit(TokString, l.pos+end)
		case c == '"' || c == '`':
			end, ok := quotedLen(rest, c)
			if !ok {
				return l.errorf("unterminated string")
			}
			l.emit(TokTemplate, l.pos+end)
		case strings.HasPrefix(rest, "<<<"):
			if ok, err := l.lexHeredoc(); err != nil {
				return err
			} else if !ok {
				l.emit(TokOperator, l.pos+operatorLen(rest))
			}
		default:
			l.emit(TokOperator, l.pos+operatorLen(rest))
			if l.halted && c == ';' {
				l.emitRaw()
				return nil
			}
		}
	}
	return nil
}

// emitRaw keeps the data section after __halt_compiler untouched.
func (l *lexer) emitRaw() {
	if l.pos < len(l.src) {
		l.emit(TokInlineHTML, len(l.src))
	}
}

// lexHeredoc reads <<<ID, <<<"ID" or <<<'ID' up to its closing label.
func (l *lexer) lexHeredoc() (bool, error) {
	rest := l.src[l.pos:]
	i := 3
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	quote := byte(0)
	if i < len(rest) && (rest[i] == '\'' || rest[i] == '"') {
		quote = rest[i]
		i++
	}
	if i >= len(rest) || !isNameStart(rest[i]) {
		return false, nil
	}
	n := nameLen(rest[i:])
	label := rest[i : i+n]
	i += n
	if quote != 0 {
		if i >= len(rest) || rest[i] != quote {
			return false, nil
		}
		i++
	}
	nl := newlineLen(rest[i:])
	if nl == 0 {
		return false, nil
	}
	i += nl
	for {
		j := i
		for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
			j++
		}
		if strings.HasPrefix(rest[j:], label) && (j+len(label) == len(rest) || !isNameChar(rest[j+len(label)])) {
			kind := TokTemplate
			if quote == '\'' {
				kind = TokString
			}
			l.emit(kind, l.pos+j+len(label))
			l.toks[len(l.toks)-1].Heredoc = true
			return true, nil
		}
		next := strings.IndexByte(rest[i:], '\n')
		if next < 0 {
			return false, l.errorf("unterminated heredoc " + label)
		}
		i += next + 1
	}
}

func newlineLen(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case strings.HasPrefix(s, "\n"):
		return 1
	}
	return 0
}

// lineCommentLen stops before the line break or a "?>".
func lineCommentLen(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n', '\r':
			return i
		case '?':
			if i+1 < len(s) && s[i+1] == '>' {
				return i
			}
		}
	}
	return len(s)
}

func quotedLen(s string, quote byte) (int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1, true
		}
	}
	return 0, false
}

func nameLen(s string) int {
	i := 0
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	return i
}

// qualifiedNameLen covers Foo, \Foo and Foo\Bar\Baz.
func qualifiedNameLen(s string) int {
	i := 0
	if s[0] == '\\' {
		i++
	}
	i += nameLen(s[i:])
	for i+1 < len(s) && s[i] == '\\' && isNameStart(s[i+1]) {
		i++
		i += nameLen(s[i:])
	}
	return i
}

func numberLen(s string) int {
	if len(s) > 2 && s[0] == '0' {
		var ok func(byte) bool
		switch s[1] {
		case 'x', 'X':
			ok = isHexDigit
		case 'b', 'B':
			ok = func(c byte) bool { return c == '0' || c == '1' }
		case 'o', 'O':
			ok = func(c byte) bool { return c >= '0' && c <= '7' }
		}
		if ok != nil {
			i := 2
			for i < len(s) && (ok(s[i]) || s[i] == '_') {
				i++
			}
			return i
		}
	}
	i := 0
	for i < len(s) && (isDigit(s[i]) || s[i] == '_') {
		i++
	}
	if i < len(s) && s[i] == '.' && !(i+1 < len(s) && s[i+1] == '.') {
		i++
		for i < len(s) && (isDigit(s[i]) || s[i] == '_') {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			i = j
			for i < len(s) && isDigit(s[i]) {
				i++
			}
		}
	}
	return i
}

func operatorLen(s string) int {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return len(op)
		}
	}
	return 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool { return isNameStart(c) || isDigit(c) }
