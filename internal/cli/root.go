package cli

import (
	"github.com/spf13/cobra"

	"github.com/frpguard/frps-guardian/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "frps-guardian",
	Short: "Resource guardian for a systemd-managed frps service",
	Long: `frps-guardian supervises one systemd service on a small Linux host:
it samples the process's memory and CPU on an interval, warns on soft
limits, and performs rate-limited automatic restarts on hard limits or
sustained high CPU.

Without a subcommand it runs the guardian loop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGuardian(cmd)
	},
}

// Execute runs the command tree. Errors are returned for main to report;
// cobra's own printing is silenced so everything goes through one logger.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgPath,
		"config",
		config.DefaultPath,
		"path to the guardian config file",
	)

	rootCmd.AddCommand(runCmd, checkOnceCmd, createConfigCmd)
}
