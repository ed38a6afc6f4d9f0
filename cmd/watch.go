package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxsummary/internal/config"
	"github.com/teemow/inboxsummary/internal/logging"
	"github.com/teemow/inboxsummary/internal/pipeline"
	"github.com/teemow/inboxsummary/internal/server"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan the mailbox on an interval",
		Long: `Scan the mailbox immediately and then every --interval until interrupted.
Failed scans are logged and retried on the next tick.

Prometheus metrics and health probes are served on --metrics-addr:
  /metrics, /healthz, /readyz, /healthz/detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cmd)
		},
	}

	addScanFlags(cmd)
	cmd.Flags().Duration("interval", config.DefaultPollInterval, "Time between scans. Can also use INBOXSUMMARY_POLL_INTERVAL env var.")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "Metrics and health server address. Can also use INBOXSUMMARY_METRICS_ADDR env var.")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command) error {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.shutdown()

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    a.cfg.MetricsAddr,
		InstrumentationProvider: a.provider,
		Logger:                  a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- metricsServer.Start()
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}()

	a.logger.Info("watching mailbox",
		logging.Trigger(a.cfg.Trigger),
		slog.Duration("interval", a.cfg.PollInterval),
		slog.String("metrics_addr", metricsServer.Addr()))

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- a.scanner.Watch(ctx, a.cfg.PollInterval, func(_ pipeline.ScanResult, err error) {
			metricsServer.Health().RecordScan(err)
		})
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return <-watchErr
	case err := <-watchErr:
		a.logger.Info("stopped watching")
		return err
	}
}
