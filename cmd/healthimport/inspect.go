// ABOUTME: CLI commands for browsing rows in the normalized store.
// ABOUTME: Rows print as one JSON object per line for easy piping into jq.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/spf13/cobra"
)

var (
	inspectLimit      int
	inspectFrom       string
	inspectTo         string
	inspectDateColumn string
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <table>",
	Aliases: []string{"i"},
	Short:   "Browse rows in the store",
	Long: fmt.Sprintf(`Browse rows in one of the normalized tables, newest first.

TABLES:

  %s

Date filtering is inclusive on both ends and compares against the table's
natural date column; override with --date-column.

EXAMPLES:

  healthimport inspect activities
  healthimport inspect body_measurements --from 2024-01-01 --to 2024-03-31
  healthimport inspect nutrition_daily -n 7
  healthimport inspect laps 42          # Lap splits for activity row 42`,
		tableNames()),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidTable(args[0]) {
			return fmt.Errorf("unknown table: %s (valid: %s)", args[0], tableNames())
		}
		table := models.Table(args[0])

		var rows []map[string]any
		var err error
		if inspectFrom != "" || inspectTo != "" {
			dateColumn := inspectDateColumn
			if dateColumn == "" {
				dateColumn = naturalDateColumn(table)
			}
			rows, err = store.ListRowsByDateRange(table, dateColumn, inspectFrom, inspectTo, inspectLimit)
		} else {
			rows, err = store.ListRows(table, inspectLimit)
		}
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", table, err)
		}

		return printRows(rows)
	},
}

var inspectLapsCmd = &cobra.Command{
	Use:   "laps <activity-id>",
	Short: "Show the lap splits attached to an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid activity id: %s", args[0])
		}

		laps, err := store.ListLaps(id)
		if err != nil {
			return fmt.Errorf("failed to list laps: %w", err)
		}
		return printRows(laps)
	},
}

func printRows(rows []map[string]any) error {
	if len(rows) == 0 {
		fmt.Println("No rows found.")
		return nil
	}
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}

func tableNames() string {
	tables := models.AllTables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// naturalDateColumn picks the date column used for range filtering.
func naturalDateColumn(table models.Table) string {
	switch table {
	case models.TableActivities:
		return "start_time"
	case models.TableBodyMeasurements, models.TableVO2Max, models.TableRestingHR:
		return "measurement_date"
	case models.TableStrengthWorkouts:
		return "workout_date"
	default:
		return "date"
	}
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 20, "max number of results")
	inspectCmd.Flags().StringVar(&inspectFrom, "from", "", "range start (YYYY-MM-DD, inclusive)")
	inspectCmd.Flags().StringVar(&inspectTo, "to", "", "range end (YYYY-MM-DD, inclusive)")
	inspectCmd.Flags().StringVar(&inspectDateColumn, "date-column", "", "date column for range filtering")
	inspectCmd.AddCommand(inspectLapsCmd)
	rootCmd.AddCommand(inspectCmd)
}
