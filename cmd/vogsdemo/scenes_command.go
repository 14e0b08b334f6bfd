package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vogsdemo/internal/fusion"
	"vogsdemo/internal/manifest"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	var manifestFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List manifest scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := ctx.loadManifest(manifestFlag)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, m.Scenes)
			}
			out := cmd.OutOrStdout()
			if len(m.Scenes) == 0 {
				fmt.Fprintln(out, "Manifest declares no scenes")
				return nil
			}
			cols := leftColumns("Scene", "Name", "Fusion", "Representation", "Assets", "Size", "Within Budget")
			cols[4].align = alignRight
			cols[5].align = alignRight
			writeTable(cmd, cols, sceneRows(m.Scenes))
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestFlag, "manifest", "", "Manifest path (defaults to paths.manifest_path)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func sceneRows(scenes []manifest.Entry) [][]string {
	rows := make([][]string, 0, len(scenes))
	for _, scene := range scenes {
		total := scene.TotalBytes()
		rows = append(rows, []string{
			scene.SceneID,
			scene.DisplayName,
			fusion.ModeLabel(scene.DefaultFusionMode),
			fusion.ModeLabel(scene.DefaultRepresentationMode),
			strconv.Itoa(len(scene.Assets)),
			formatBytes(total),
			yesNo(total <= manifest.DefaultBudgetBytes),
		})
	}
	return rows
}

func formatBytes(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "kMGT"[exp])
}
