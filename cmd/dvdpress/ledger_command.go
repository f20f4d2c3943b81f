package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvdpress/internal/display"
	"github.com/backmassage/dvdpress/internal/ledger"
)

func newLedgerCommand(configFlag *string) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the processed-file ledger",
	}
	ledgerCmd.AddCommand(newLedgerListCommand(configFlag))
	ledgerCmd.AddCommand(newLedgerStatsCommand(configFlag))
	return ledgerCmd
}

func newLedgerListCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recorded file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, _, err := ledgerEntries(configFlag, cmd)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(ids))
			for i, id := range ids {
				rows = append(rows, []string{strconv.Itoa(i + 1), id})
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.RenderTable(
				[]string{"#", "File"},
				rows,
				[]display.Alignment{display.AlignRight, display.AlignLeft},
			))
			return nil
		},
	}
}

func newLedgerStatsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, settings, err := ledgerEntries(configFlag, cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", settings.Backend)
			fmt.Fprintf(out, "Path:    %s\n", settings.Path)
			fmt.Fprintf(out, "Files:   %d\n", len(ids))
			return nil
		},
	}
}

// ledgerEntries opens the configured ledger and returns its sorted ids.
func ledgerEntries(configFlag *string, cmd *cobra.Command) ([]string, ledgerSettings, error) {
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return nil, ledgerSettings{}, err
	}
	led, err := ledger.Open(cfg.Ledger)
	if led == nil {
		return nil, ledgerSettings{}, fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: ledger read fault, listing may be incomplete:", err)
	}

	lister, ok := led.(ledger.Lister)
	if !ok {
		return nil, ledgerSettings{}, fmt.Errorf("ledger backend %q does not support listing", cfg.Ledger.Backend)
	}
	ids, err := lister.All(cmd.Context())
	if err != nil {
		return nil, ledgerSettings{}, fmt.Errorf("list ledger: %w", err)
	}
	return ids, ledgerSettings{Backend: cfg.Ledger.Backend, Path: cfg.Ledger.Path}, nil
}

type ledgerSettings struct {
	Backend string
	Path    string
}
