package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"shoebox/internal/index"
	"shoebox/internal/logging"
	"shoebox/internal/retry"
	"shoebox/internal/sidecar"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the content-hash index",
	}
	indexCmd.AddCommand(newIndexListCommand(ctx))
	indexCmd.AddCommand(newIndexVerifyCommand(ctx))
	return indexCmd
}

func newIndexListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed representatives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ix, err := index.Open(cfg.Paths.IndexLog, logging.NewNop())
			if err != nil {
				return err
			}
			defer ix.Close()

			out := cmd.OutOrStdout()
			records := ix.Records()
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{shortHash(record.Hash), record.Path, formatScore(record.Score)})
			}

			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(
					[]string{"Hash", "Representative", "Sidecar score"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight}))
				fmt.Fprintf(out, "%d entries\n", len(records))
			} else {
				for _, record := range records {
					fmt.Fprintf(out, "%s\t%s\t%d\n", record.Hash, record.Path, record.Score)
				}
			}
			return nil
		},
	}
}

func newIndexVerifyCommand(ctx *commandContext) *cobra.Command {
	var rehash bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every indexed representative still exists",
		Long: "Checks that each index entry points at an existing file under the library. " +
			"With --rehash, every representative is re-read and its content hash compared " +
			"against the indexed one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ix, err := index.Open(cfg.Paths.IndexLog, logging.NewNop())
			if err != nil {
				return err
			}
			defer ix.Close()

			out := cmd.OutOrStdout()
			policy := retry.DefaultPolicy()
			problems := 0
			for _, record := range ix.Records() {
				abs := filepath.Join(cfg.Paths.LibraryDir, record.Path)
				if _, err := os.Stat(abs); err != nil {
					problems++
					fmt.Fprintf(out, "missing\t%s\t%s\n", shortHash(record.Hash), record.Path)
					continue
				}
				if !rehash {
					continue
				}
				got, err := index.HashFile(cmd.Context(), abs, policy)
				if err != nil {
					problems++
					fmt.Fprintf(out, "unreadable\t%s\t%s\t%v\n", shortHash(record.Hash), record.Path, err)
					continue
				}
				if got != record.Hash {
					problems++
					fmt.Fprintf(out, "hash mismatch\t%s\t%s\n", shortHash(record.Hash), record.Path)
				}
			}

			if problems > 0 {
				return fmt.Errorf("index verify found %d problem(s) across %d entries", problems, ix.Len())
			}
			fmt.Fprintf(out, "%d entries verified\n", ix.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&rehash, "rehash", false, "Re-read every representative and compare content hashes")
	return cmd
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func formatScore(score int) string {
	if score == sidecar.ScoreAbsent {
		return "-"
	}
	return strconv.Itoa(score)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
