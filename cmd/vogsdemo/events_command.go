package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vogsdemo/internal/diagnostics"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent load and mode telemetry events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.DiagnosticsDBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if jsonOutput {
					return writeJSON(cmd, []diagnostics.Event{})
				}
				fmt.Fprintln(out, "No telemetry recorded yet")
				return nil
			}

			store, err := diagnostics.Open(path)
			if err != nil {
				return fmt.Errorf("open diagnostics store: %w", err)
			}
			defer store.Close()

			events, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if events == nil {
					events = []diagnostics.Event{}
				}
				return writeJSON(cmd, events)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No telemetry recorded yet")
				return nil
			}
			cols := leftColumns("Timestamp", "Event", "Scene", "Mode", "Duration", "Error")
			cols[4].align = alignRight
			writeTable(cmd, cols, eventRows(events))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func eventRows(events []diagnostics.Event) [][]string {
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		duration := ""
		if event.DurationMs != nil {
			duration = fmt.Sprintf("%dms", *event.DurationMs)
		}
		rows = append(rows, []string{
			event.TimestampString(),
			string(event.Event),
			event.SceneID,
			event.Mode,
			duration,
			event.ErrorCode,
		})
	}
	return rows
}
