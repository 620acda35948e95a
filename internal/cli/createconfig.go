package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frpguard/frps-guardian/internal/config"
)

var createConfigForce bool

var createConfigCmd = &cobra.Command{
	Use:   "create-config",
	Short: "Write the documented default configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.WriteDefault(cfgPath, createConfigForce); err != nil {
			return fmt.Errorf("create config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "default configuration created: %s\n", cfgPath)

		return nil
	},
}

func init() {
	createConfigCmd.Flags().BoolVar(
		&createConfigForce,
		"force",
		false,
		"overwrite an existing config file",
	)
}
