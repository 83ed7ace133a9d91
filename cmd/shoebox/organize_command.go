package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shoebox/internal/catalog"
	"shoebox/internal/workflow"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Scan the source export and place media into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			store, err := catalog.Open(cfg.Paths.Catalog)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := workflow.NewRunner(cfg, store, logger)
			summary, err := runner.Run(runCtx, dryRun)
			if err != nil {
				if errors.Is(err, workflow.ErrPreflightFailed) {
					return fmt.Errorf("%w; run `shoebox status` for details", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if summary.DryRun {
				fmt.Fprintln(out, "Dry run: no files were moved.")
			}
			fmt.Fprintf(out, "Processed %d files in %s: %d placed, %d duplicates (%d healed, %d sidecar upgrades), %d failures.\n",
				summary.Processed, summary.Elapsed.Round(timeRounding),
				summary.Placed, summary.Duplicates, summary.Healed, summary.SidecarUpgrades, summary.Failures)
			if summary.Failures > 0 {
				fmt.Fprintf(out, "Failed files are listed in %s\n", cfg.Paths.BadFileLog)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Compute every decision without moving files or writing the index")
	return cmd
}
