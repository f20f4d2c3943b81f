package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvdpress/internal/check"
	"github.com/backmassage/dvdpress/internal/config"
	"github.com/backmassage/dvdpress/internal/display"
	"github.com/backmassage/dvdpress/internal/handbrake"
	"github.com/backmassage/dvdpress/internal/ledger"
	"github.com/backmassage/dvdpress/internal/logging"
	"github.com/backmassage/dvdpress/internal/pipeline"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var (
		inputFlag  string
		outputFlag string
		dryRun     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Encode every unprocessed file in the input directory once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner(configFlag, inputFlag, outputFlag, dryRun, verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner.Run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input directory (overrides config)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Log planned commands without encoding")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Pass encoder output through to the terminal")
	return cmd
}

func newWatchCommand(configFlag *string) *cobra.Command {
	var (
		inputFlag  string
		outputFlag string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run continuously, encoding files as they appear",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := buildRunner(configFlag, inputFlag, outputFlag, false, verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runner.Watch(ctx)
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input directory (overrides config)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Pass encoder output through to the terminal")
	return cmd
}

// buildRunner assembles the pipeline from config plus command-line overrides.
// The returned cleanup closes the ledger.
func buildRunner(configFlag *string, inputFlag, outputFlag string, dryRun, verbose bool) (*pipeline.Runner, func(), error) {
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return nil, nil, err
	}
	if inputFlag != "" {
		cfg.Paths.InputDir = config.NormalizeDirArg(inputFlag)
	}
	if outputFlag != "" {
		cfg.Paths.OutputDir = config.NormalizeDirArg(outputFlag)
	}
	if err := cfg.ValidateDirs(); err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output directory: %w", err)
	}
	if !dryRun {
		if err := check.CheckDeps(cfg); err != nil {
			return nil, nil, err
		}
	}

	log, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Logging.Format != "json" {
		display.PrintBanner()
	}

	led, err := ledger.Open(cfg.Ledger)
	if led == nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	if err != nil {
		log.Warn("ledger read fault, treating as empty", logging.Err(err))
	}

	runner := pipeline.NewRunner(cfg, log, led, &handbrake.CLI{Verbose: verbose})
	runner.DryRun = dryRun
	return runner, func() { led.Close() }, nil
}
