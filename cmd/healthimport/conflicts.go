// ABOUTME: CLI commands for reviewing and resolving import conflicts.
// ABOUTME: Conflicts never block an import; this is the out-of-band review.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/healthimport/internal/models"
	"github.com/spf13/cobra"
)

var (
	conflictsRun   string
	conflictsLimit int
)

var conflictsCmd = &cobra.Command{
	Use:     "conflicts",
	Aliases: []string{"c"},
	Short:   "List import conflicts",
	Long: `List conflicts logged during imports, newest first.

A conflict means an incoming record matched an existing row's natural key
but disagreed on at least one value. The existing row was kept untouched;
the conflict entry holds both full snapshots for review.

Resolving a conflict only tags it as reviewed. The store is never modified
by resolution; apply any correction by hand first.

EXAMPLES:

  healthimport conflicts                       # Show recent conflicts
  healthimport conflicts --run <run-id>        # Conflicts from one run
  healthimport conflicts resolve 7 manual      # Tag conflict 7 as reviewed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var runID *uuid.UUID
		if conflictsRun != "" {
			id, err := uuid.Parse(conflictsRun)
			if err != nil {
				return fmt.Errorf("invalid run id: %s", conflictsRun)
			}
			runID = &id
		}

		conflicts, err := store.ListConflicts(runID, conflictsLimit)
		if err != nil {
			return fmt.Errorf("failed to list conflicts: %w", err)
		}
		if len(conflicts) == 0 {
			fmt.Println("No conflicts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, c := range conflicts {
			state := color.YellowString("open")
			if c.ResolvedAt != nil {
				state = faint.Sprintf("resolved (%s)", c.Resolution)
			}
			fmt.Printf("#%d %s %s %s\n", c.ID, faint.Sprint(c.CreatedAt.Format("2006-01-02 15:04")),
				c.Table, state)
			fmt.Printf("   %s\n", faint.Sprint(c.RecordKey))
			for _, field := range c.ConflictFields {
				fmt.Printf("   %s: existing %s, incoming %s\n",
					field, c.Existing[field].Display(), c.Incoming[field].Display())
			}
		}
		return nil
	},
}

var conflictsResolveCmd = &cobra.Command{
	Use:   "resolve <conflict-id> <resolution>",
	Short: "Tag a conflict as resolved",
	Long: `Tag a conflict as resolved. Valid resolutions:

  kept_existing   The existing value was right (the default outcome)
  overwritten     You corrected the row by hand to the incoming value
  manual          Settled some other way`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid conflict id: %s", args[0])
		}
		if !models.IsValidResolution(args[1]) {
			return fmt.Errorf("unknown resolution: %s (valid: kept_existing, overwritten, manual)", args[1])
		}

		if err := store.ResolveConflict(id, models.Resolution(args[1])); err != nil {
			return fmt.Errorf("failed to resolve conflict: %w", err)
		}

		color.Green("✓ Conflict %d resolved as %s", id, args[1])
		return nil
	},
}

func init() {
	conflictsCmd.Flags().StringVar(&conflictsRun, "run", "", "filter by import run id")
	conflictsCmd.Flags().IntVarP(&conflictsLimit, "limit", "n", 20, "max number of results")
	conflictsCmd.AddCommand(conflictsResolveCmd)
	rootCmd.AddCommand(conflictsCmd)
}
