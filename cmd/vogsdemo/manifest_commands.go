package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vogsdemo/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Check the scene manifest",
	}

	manifestCmd.AddCommand(newManifestValidateCommand(ctx))
	manifestCmd.AddCommand(newManifestBudgetCommand(ctx))

	return manifestCmd
}

func newManifestValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate the manifest against the manifest contract",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.manifestPath(firstArg(args))
			if err != nil {
				return err
			}
			doc, err := manifest.LoadRaw(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			errs := manifest.ValidateDocument(doc)
			if len(errs) == 0 {
				if m, loadErr := manifest.Load(path); loadErr == nil {
					errs = manifest.Validate(m)
				}
			}
			if len(errs) > 0 {
				fmt.Fprintln(out, "Manifest validation failed:")
				for _, msg := range errs {
					fmt.Fprintf(out, "- %s\n", msg)
				}
				return fmt.Errorf("manifest %s has %d problem(s)", path, len(errs))
			}
			fmt.Fprintf(out, "Manifest validation passed: %s\n", path)
			return nil
		},
	}
}

func newManifestBudgetCommand(ctx *commandContext) *cobra.Command {
	var threshold int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "budget [path]",
		Short: "Check every scene's total asset size against the budget",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := ctx.loadManifest(firstArg(args))
			if err != nil {
				return err
			}
			violations := manifest.BudgetViolations(m, threshold)
			if jsonOutput {
				if violations == nil {
					violations = []manifest.BudgetViolation{}
				}
				if err := writeJSON(cmd, violations); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if len(violations) == 0 {
					fmt.Fprintf(out, "Asset budget check passed (%d scenes, limit %s)\n", len(m.Scenes), formatBytes(threshold))
					return nil
				}
				rows := make([][]string, 0, len(violations))
				for _, v := range violations {
					rows = append(rows, []string{v.SceneID, v.DisplayName, strconv.FormatInt(v.TotalBytes, 10)})
				}
				fmt.Fprintln(out, "Asset budget exceeded:")
				cols := leftColumns("Scene", "Name", "Total Bytes")
				cols[2].align = alignRight
				writeTable(cmd, cols, rows)
			}
			if len(violations) > 0 {
				return errors.New("asset budget exceeded")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&threshold, "threshold", manifest.DefaultBudgetBytes, "Per-scene budget in bytes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output violations as JSON")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
