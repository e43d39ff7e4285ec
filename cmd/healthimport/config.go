// ABOUTME: CLI commands for viewing and editing the config file.
// ABOUTME: Config commands never open or create the database.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthimport/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit configuration",
	Long: fmt.Sprintf(`View and edit the healthimport configuration.

The config file lives at %s/config.json and holds the database path
override, the Garmin Connect bearer token, and the API cache directory.`,
		config.ConfigDir()),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("db path:    %s\n", cfg.ResolveDBPath(""))
		fmt.Printf("cache dir:  %s\n", cfg.ResolveCacheDir())
		if cfg.GarminToken != "" {
			fmt.Println("token:      set")
		} else {
			fmt.Println("token:      not set")
		}
		return nil
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store the Garmin Connect bearer token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.GarminToken = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		color.Green("✓ Token saved")
		return nil
	},
}

var configSetDBCmd = &cobra.Command{
	Use:   "set-db <path>",
	Short: "Set the database path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.DBPath = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		color.Green("✓ Database path set to %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetTokenCmd)
	configCmd.AddCommand(configSetDBCmd)
	rootCmd.AddCommand(configCmd)
}
