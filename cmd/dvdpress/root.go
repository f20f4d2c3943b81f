// Command dvdpress batch-encodes DVD rips with HandBrakeCLI, selecting audio
// and subtitle tracks from mediainfo metadata and remembering finished files
// in a processed-file ledger.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvdpress/internal/config"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "dvdpress",
		Short:         "Batch DVD transcoder with language-aware track selection",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	rootCmd.AddCommand(newWatchCommand(&configFlag))
	rootCmd.AddCommand(newPlanCommand(&configFlag))
	rootCmd.AddCommand(newLedgerCommand(&configFlag))
	rootCmd.AddCommand(newCheckCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))

	return rootCmd
}

// loadConfig loads and validates the configuration for a command invocation.
func loadConfig(configFlag *string) (*config.Config, error) {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
