package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/dvdpress/internal/check"
	"github.com/backmassage/dvdpress/internal/logging"
)

func newCheckCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify tools, directories, and ledger access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			log, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			check.RunCheck(cfg, log)
			return nil
		},
	}
}
