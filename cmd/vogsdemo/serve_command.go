package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vogsdemo/internal/daemon"
	"vogsdemo/internal/logging"
	"vogsdemo/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the demo daemon and its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			for _, result := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
				logger.Warn("preflight check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
				)
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}
			if addr := d.Addr(); addr != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
			}

			<-signalCtx.Done()
			logger.Info("vogsdemo shutting down")
			return nil
		},
	}
}
