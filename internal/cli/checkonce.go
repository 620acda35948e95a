package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frpguard/frps-guardian/internal/adapters/outbound/procsample"
	"github.com/frpguard/frps-guardian/internal/adapters/outbound/systemd"
	"github.com/frpguard/frps-guardian/internal/config"
	"github.com/frpguard/frps-guardian/internal/infra/cronparser"
	"github.com/frpguard/frps-guardian/internal/infra/logging"
	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

var checkOnceCmd = &cobra.Command{
	Use:   "check-once",
	Short: "Run a single evaluation cycle and print the decided action",
	Long: `check-once samples the supervised service once, evaluates the
configured limits, acts on the decision (at most one restart call) and
prints the action and outcome. It fails when configuration cannot be
loaded or the sample cannot be read.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		action, outcome, err := service.CheckCommand(cmd.Context())
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "action: %s\noutcome: %s\n", action, outcome)

		return nil
	},
}
