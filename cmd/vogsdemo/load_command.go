package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"vogsdemo/internal/config"
	"vogsdemo/internal/diagnostics"
	"vogsdemo/internal/fusion"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/renderer"
	"vogsdemo/internal/sceneasset"
	"vogsdemo/internal/shell"
)

// loadReport is the --json output of the load command.
type loadReport struct {
	SceneID string                `json:"sceneId"`
	Events  []string              `json:"events"`
	State   fusion.SceneLoadState `json:"state"`
	Loaded  *renderer.Summary     `json:"loaded,omitempty"`
}

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var manifestFlag string
	var jsonOutput bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "load <scene-id>",
		Short: "Load a manifest scene and print its load events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m, _, err := ctx.loadManifest(manifestFlag)
			if err != nil {
				return err
			}
			entry, ok := m.Find(args[0])
			if !ok {
				return fmt.Errorf("scene %q is not in the manifest", args[0])
			}

			out := cmd.OutOrStdout()
			var printer io.Writer = out
			if jsonOutput {
				printer = io.Discard
			}
			report, err := runSceneLoad(cmd.Context(), ctx, cfg, entry, printer, timeout)
			if err != nil {
				return err
			}
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			}
			if report.State.Status != fusion.LoadReady {
				return errors.New("scene load failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestFlag, "manifest", "", "Manifest path (defaults to paths.manifest_path)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the load report as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", sceneasset.DefaultTimeout, "Per-attempt asset request timeout")
	return cmd
}

// runSceneLoad drives one load attempt through the sequencer and reports every
// event the loader emitted.
func runSceneLoad(parent context.Context, ctx *commandContext, cfg *config.Config, entry manifest.Entry, out io.Writer, timeout time.Duration) (loadReport, error) {
	logger := ctx.commandLogger()

	var telemetryOpts []diagnostics.Option
	telemetryOpts = append(telemetryOpts, diagnostics.WithEnabled(cfg.Diagnostics.Enabled))
	if cfg.Diagnostics.Enabled && cfg.Diagnostics.Persist {
		store, err := diagnostics.Open(cfg.DiagnosticsDBPath())
		if err != nil {
			return loadReport{}, fmt.Errorf("open diagnostics store: %w", err)
		}
		defer store.Close()
		telemetryOpts = append(telemetryOpts, diagnostics.WithSink(store))
	}
	telemetry := diagnostics.NewService(logger, telemetryOpts...)

	loader := &reportingLoader{
		inner: sceneasset.NewService(
			sceneasset.WithBaseURL(cfg.Assets.BaseURL),
			sceneasset.WithUserAgent(cfg.Assets.UserAgent),
			sceneasset.WithTimeout(timeout),
			sceneasset.WithLogger(logger),
		),
		out:      out,
		colorize: shouldColorize(out),
	}
	state := fusion.NewStore(logger)
	adapter := renderer.NewAdapter(logger)
	sequencer := shell.NewSequencer(loader, adapter, state,
		shell.WithTelemetry(telemetry),
		shell.WithLogger(logger),
	)

	if parent == nil {
		parent = context.Background()
	}
	sequencer.Start(parent, entry)
	sequencer.Wait()

	report := loadReport{
		SceneID: entry.SceneID,
		Events:  loader.eventKinds(),
		State:   state.State().LoadState,
	}
	if summary, ok := adapter.Summary(); ok {
		report.Loaded = &summary
	}
	if report.State.Error != nil && report.State.Error.Code == sceneasset.CodeRenderer {
		fmt.Fprintln(out, renderStatusLine("renderer", statusForLoad(report.State.Status), report.State.Error.Message, loader.colorize))
	}
	sequencer.Close()
	return report, nil
}

// reportingLoader forwards loader events unchanged while printing each one.
type reportingLoader struct {
	inner    *sceneasset.Service
	out      io.Writer
	colorize bool

	mu    sync.Mutex
	kinds []string
}

func (l *reportingLoader) LoadScene(ctx context.Context, entry manifest.Entry) <-chan sceneasset.LoadEvent {
	return l.tee(entry.SceneID, l.inner.LoadScene(ctx, entry))
}

func (l *reportingLoader) RetryLast(ctx context.Context) <-chan sceneasset.LoadEvent {
	entry, _ := l.inner.LastEntry()
	return l.tee(entry.SceneID, l.inner.RetryLast(ctx))
}

// tee relays every event in order.
func (l *reportingLoader) tee(sceneID string, events <-chan sceneasset.LoadEvent) <-chan sceneasset.LoadEvent {
	relay := make(chan sceneasset.LoadEvent, cap(events))
	go func() {
		defer close(relay)
		for event := range events {
			l.mu.Lock()
			l.kinds = append(l.kinds, string(event.Kind))
			l.mu.Unlock()
			fmt.Fprintln(l.out, describeLoadEvent(sceneID, event, l.colorize))
			relay <- event
		}
	}()
	return relay
}

func (l *reportingLoader) eventKinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.kinds...)
}

func describeLoadEvent(sceneID string, event sceneasset.LoadEvent, colorize bool) string {
	message := string(event.Kind)
	switch {
	case event.Kind == sceneasset.EventReady && event.Payload != nil:
		message = fmt.Sprintf("ready (%s, %d bytes)", event.Payload.Format, event.Payload.SizeBytes)
	case event.Kind == sceneasset.EventFailed && event.Err != nil:
		message = fmt.Sprintf("failed %s: %s", event.Err.Code(), event.Err.Error())
	}
	return renderStatusLine(sceneID, statusForEvent(event.Kind), message, colorize)
}
