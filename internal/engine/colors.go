package engine

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// palette holds ANSI sequences for human-readable output. The zero value
// prints plain text.
type palette struct {
	Reset, Bold, Red, Green, Yellow, Cyan, Gray string
}

var ansiPalette = palette{
	Reset:  "\033[0m",
	Bold:   "\033[1m",
	Red:    "\033[31m",
	Green:  "\033[32m",
	Yellow: "\033[33m",
	Cyan:   "\033[36m",
	Gray:   "\033[90m",
}

// paletteFor returns colours only when w is a terminal.
func paletteFor(w io.Writer) palette {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		return ansiPalette
	}
	return palette{}
}

// IsTerminal reports whether f is a terminal (TTY), including Cygwin/MSYS ptys.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
