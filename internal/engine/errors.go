package engine

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax        = errors.New("syntax error")
	ErrNotFound      = errors.New("file not found")
	ErrIsDirectory   = errors.New("input is a directory, not a file")
	ErrTooLarge      = errors.New("input too large")
	ErrInvalidOption = errors.New("invalid option")
	ErrPHPNotFound   = errors.New("PHP interpreter not found (php)")
	ErrValidation    = errors.New("validate failed")
	ErrDuplicateDest = errors.New("output path already used by another input")
)

// SyntaxError reports where the lexer gave up.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error on line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
