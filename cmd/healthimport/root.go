// ABOUTME: Root Cobra command for healthimport CLI.
// ABOUTME: Opens the store and builds the logger via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/healthimport/internal/config"
	"github.com/harperreed/healthimport/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dbFlag  string
	verbose bool
	quiet   bool

	cfg    *config.Config
	store  *storage.DB
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "healthimport",
	Short: "Consolidate fitness and health exports into one normalized store",
	Long: `Healthimport pulls scattered health data exports into a single SQLite
database, safe to re-run: records already in the store are skipped, value
mismatches are logged as conflicts instead of overwritten, and Garmin API
data enriches CSV-imported activities in place.

SUPPORTED SOURCES:

  garmin_activities   Garmin Connect activities CSV export
  garmin_weight       Garmin Connect weight CSV export
  garmin_vo2max       Garmin Connect VO2max CSV export
  six_week            Just6Weeks strength workout CSV export
  macrofactor         MacroFactor nutrition spreadsheet export
  apple_healthkit     Apple Health XML export (resting heart rate)

QUICK START:

  $ healthimport import garmin_activities ~/Downloads/Activities.csv
  $ healthimport import macrofactor ~/Downloads/macrofactor.csv
  $ healthimport runs                   # See import run history
  $ healthimport conflicts              # Review value mismatches
  $ healthimport inspect activities     # Browse imported rows

GARMIN CONNECT API:

  Fetch directly from the Garmin Connect API. Splits attach per-lap data
  to activities, and API records enrich rows imported from CSV.

  $ healthimport config set-token <bearer-token>
  $ healthimport garmin activities --from 2024-01-01 --to 2024-01-31
  $ healthimport garmin weight
  $ healthimport garmin vo2max

MCP INTEGRATION:

  Run 'healthimport mcp' to start the Model Context Protocol server for
  use with Claude Desktop or other MCP-compatible AI assistants:

  {
    "mcpServers": {
      "healthimport": { "command": "healthimport", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  The database lives at ~/.local/share/healthimport/health_data.db by
  default; override with --db or 'healthimport config set-db'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger()

		// Config commands must not create the database as a side effect
		if skipsStore(cmd) {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store, err = storage.Open(cfg.ResolveDBPath(dbFlag))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	switch {
	case verbose:
		l.SetLevel(log.DebugLevel)
	case quiet:
		l.SetLevel(log.ErrorLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
	return l
}

func skipsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "help", "completion", "version":
			return true
		}
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "database path (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-record decisions")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
}
