// ABOUTME: CLI commands for listing and showing import runs.
// ABOUTME: The run ledger is the audit trail for every import.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"r"},
	Short:   "List import runs",
	Long: `List recent import runs, newest first.

OUTPUT FORMAT:

  Each line shows: ID  STARTED  SOURCE  STATUS  COUNTERS

  Counters are processed/inserted/skipped/conflicted/enriched. Use the
  full run id with 'runs show' or 'conflicts --run'.

EXAMPLES:

  healthimport runs          # Show last 20 runs
  healthimport runs -n 50    # Show last 50 runs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := store.ListRuns(runsLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No import runs found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, run := range runs {
			status := string(run.Status)
			switch run.Status {
			case "completed":
				status = color.GreenString(status)
			case "failed":
				status = color.RedString(status)
			}
			fmt.Printf("%s %s %-22s %s %d/%d/%d/%d/%d\n",
				faint.Sprint(run.ID.String()),
				faint.Sprint(run.StartedAt.Format("2006-01-02 15:04")),
				run.Source,
				status,
				run.Processed, run.Inserted, run.Skipped, run.Conflicted, run.Enriched)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one import run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id: %s", args[0])
		}
		run, err := store.GetRun(id)
		if err != nil {
			return err
		}

		printRunSummary(run)
		if run.FinishedAt != nil {
			fmt.Printf("  started %s, finished %s\n",
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.FinishedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "max number of results")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
