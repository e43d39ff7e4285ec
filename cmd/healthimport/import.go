// ABOUTME: CLI command for importing a source export file.
// ABOUTME: Runs the reconciliation engine and prints the run summary.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/healthimport/internal/engine"
	"github.com/harperreed/healthimport/internal/importers"
	"github.com/harperreed/healthimport/internal/models"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <source> <file>",
	Short: "Import a health data export file",
	Long: fmt.Sprintf(`Import a health data export file into the normalized store.

Re-running an import is always safe: records already present are skipped,
and value mismatches become conflict entries instead of overwrites. The
existing row always wins.

SOURCES:

  %s

EXAMPLES:

  healthimport import garmin_activities ~/Downloads/Activities.csv
  healthimport import garmin_weight ~/Downloads/Weight.csv
  healthimport import six_week ~/Downloads/just6weeks.csv
  healthimport import macrofactor ~/Downloads/macrofactor.csv
  healthimport import apple_healthkit ~/Downloads/export.xml`,
		strings.Join(importers.Sources(), "\n  ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, path := args[0], args[1]

		imp, err := importers.Open(source, path)
		if err != nil {
			return err
		}
		defer imp.Close()

		eng := engine.New(store, logger)
		run, err := eng.Import(cmd.Context(), imp, path)
		if err != nil {
			if run != nil {
				printRunSummary(run)
			}
			return fmt.Errorf("import failed: %w", err)
		}

		printRunSummary(run)
		return nil
	},
}

// printRunSummary renders an import run the same way everywhere:
// after file imports, API imports, and in 'runs show'.
func printRunSummary(run *models.ImportRun) {
	faint := color.New(color.Faint)

	switch run.Status {
	case models.RunCompleted:
		color.Green("✓ Import completed")
	case models.RunFailed:
		color.Red("✗ Import failed: %s", run.Error)
	default:
		color.Yellow("… Import running")
	}

	fmt.Printf("  %s %s (%s)\n",
		faint.Sprint(run.ID.String()[:8]), run.Source, run.Origin)
	fmt.Printf("  processed %d: %d inserted, %d skipped, %d conflicted, %d enriched\n",
		run.Processed, run.Inserted, run.Skipped, run.Conflicted, run.Enriched)

	if run.Conflicted > 0 {
		color.Yellow("  %d conflict(s) kept the existing values; review with 'healthimport conflicts --run %s'",
			run.Conflicted, run.ID.String())
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
}
