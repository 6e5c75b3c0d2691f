// Package main provides the entry point for the uglifyphp CLI.
//
// uglifyphp minifies PHP source files: it renames local variables, strips
// comments and collapses whitespace.
//
// Usage:
//
//	uglifyphp minify index.php > index.min.php
//	uglifyphp minify src/*.php --out-dir dist
//	uglifyphp analyze index.php
//
// See --help for all available options.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

func main() {
	// Ctrl+C cancels the running command instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

// printError writes err and, when there is one, a hint for fixing it.
func printError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Interrupted.")
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := engine.ErrorHint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
