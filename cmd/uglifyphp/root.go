package main

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for uglifyphp.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uglifyphp",
		Short: "Minify PHP source code",
		Long: `uglifyphp shrinks PHP source files. It renames local variables to short
names, removes comments and collapses whitespace while keeping inline HTML,
heredocs and data after __halt_compiler() untouched.

Settings are read from .uglifyphp.yml in the current directory, or from
config.yml in the XDG config directory (run "uglifyphp init" to create one).
UGLIFYPHP_* environment variables override the file, and flags override both.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")
	cmd.PersistentFlags().String("config", "",
		"Configuration file path (default: .uglifyphp.yml or the XDG config directory)")
	cmd.PersistentFlags().StringSlice("env-file", nil,
		"Read UGLIFYPHP_* variables from .env files (repeatable)")

	cmd.AddCommand(NewMinifyCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Cancelling ctx stops the running command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
