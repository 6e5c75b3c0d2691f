package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Report PHP features that make renaming unsafe",
		Long: `Analyze scans PHP source for variable variables, extract(), compact(),
eval() and includes, which can reference variables by name. It lists the
variables that should be excluded from renaming.

Examples:
  uglifyphp analyze index.php
  uglifyphp analyze --json src/*.php
  uglifyphp analyze -c '<?php $$name = 1;'`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}
	cmd.Flags().StringP("code", "c", "", "Analyze this PHP code instead of files")
	cmd.Flags().Bool("json", false, "Output JSON")
	return cmd
}

// analysis is one entry of the JSON output.
type analysis struct {
	Path     string                 `json:"path"`
	Features *engine.SourceFeatures `json:"features"`
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	code, err := cmd.Flags().GetString("code")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if code == "" && len(args) == 0 {
		return errors.New("no input (pass files or --code)")
	}

	type input struct{ name, src string }
	var inputs []input
	if code != "" {
		inputs = append(inputs, input{"<code>", code})
	}
	for _, path := range args {
		src, _, err := engine.ResolveInput(path, engine.InputPath)
		if err != nil {
			return err
		}
		inputs = append(inputs, input{path, src})
	}

	out := cmd.OutOrStdout()
	var all []analysis
	for _, in := range inputs {
		f, err := engine.Analyze(in.src)
		if err != nil {
			return fmt.Errorf("%s: %w", in.name, err)
		}
		if asJSON {
			all = append(all, analysis{Path: in.name, Features: f})
			continue
		}
		engine.PrintAnalysis(out, in.name, f)
	}
	if asJSON {
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	return nil
}
