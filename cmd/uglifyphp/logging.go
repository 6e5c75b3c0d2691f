package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

// getBoolFlag retrieves a flag from the command or the root's persistent set.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the CLI logger. Colour is used only on a terminal.
func setupLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !engine.IsTerminal(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
}

func loggerFor(cmd *cobra.Command) *slog.Logger {
	logger := setupLogger(cmd.ErrOrStderr(), getBoolFlag(cmd, "verbose"), getBoolFlag(cmd, "quiet"))
	slog.SetDefault(logger)
	return logger
}
