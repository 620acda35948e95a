package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frpguard/frps-guardian/internal/adapters/outbound/procsample"
	"github.com/frpguard/frps-guardian/internal/adapters/outbound/systemd"
	"github.com/frpguard/frps-guardian/internal/config"
	"github.com/frpguard/frps-guardian/internal/httpserver"
	"github.com/frpguard/frps-guardian/internal/infra/cronparser"
	"github.com/frpguard/frps-guardian/internal/infra/logging"
	"github.com/frpguard/frps-guardian/internal/infra/shutdown"
	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the guardian loop until terminated",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGuardian(cmd)
	},
}

// runGuardian wires the adapters and infra together and blocks until a
// termination signal arrives. Exit is clean when the loop stops on signal.
func runGuardian(cmd *cobra.Command) error {
	// Start listening for signals immediately, before any other initialization
	signals := shutdown.Notify()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.LogFormat, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	defer func() {
		_ = closeLog()
	}()

	manager := systemd.New(logger)
	sampler := procsample.New(logger, manager)

	service, err := guardian.New(logger, sampler, manager, cronparser.New(), cfg.Guardian())
	if err != nil {
		return fmt.Errorf("new guardian: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go shutdown.New(logger, signals).HandleSignals(ctx, cancel)

	var shutdowners []shutdown.Shutdowner

	if cfg.HTTPPort != "" {
		server := httpserver.New(logger, service, cfg.HTTPPort)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("start http server: %w", err)
		}

		shutdowners = append(shutdowners, server)
	}

	if cfg.MetricsPort != "" {
		metricsServer := httpserver.NewMetricsServer(logger, cfg.MetricsPort)
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}

		shutdowners = append(shutdowners, metricsServer)
	}

	logger.InfoContext(ctx, "starting guardian")

	// Blocks until the signal handler cancels the context
	service.RunCommand(ctx)

	return shutdown.GracefulShutdown(ctx, logger, shutdowners)
}
