package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"shoebox/internal/catalog"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the history of organize runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.Paths.Catalog)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return renderRunEvents(cmd, store, runID)
			}
			return renderRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-file events for one run instead")
	return cmd
}

func renderRuns(cmd *cobra.Command, store *catalog.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			formatBool(run.DryRun),
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.Placed),
			strconv.Itoa(run.Duplicates),
			strconv.Itoa(run.Healed),
			strconv.Itoa(run.SidecarUpgrades),
			strconv.Itoa(run.Failures),
		})
	}

	if isTerminal(out) {
		fmt.Fprintln(out, renderTable(
			[]string{"Run", "Started", "Dry run", "Processed", "Placed", "Dup", "Healed", "Upgrades", "Failed"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}))
	} else {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
	}
	return nil
}

func renderRunEvents(cmd *cobra.Command, store *catalog.Store, runID string) error {
	events, err := store.RunEvents(cmd.Context(), runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No events recorded for run %s.\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, event := range events {
		detail := event.DestPath
		if event.Action == "failed" {
			detail = event.Detail
		}
		rows = append(rows, []string{event.SourcePath, event.Action, event.Evidence, event.Year, detail})
	}

	if isTerminal(out) {
		fmt.Fprintln(out, renderTable([]string{"Source", "Action", "Evidence", "Year", "Destination"}, rows, nil))
	} else {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
	}
	return nil
}
