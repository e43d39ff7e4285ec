// ABOUTME: CLI command for creating the database ahead of the first import.
// ABOUTME: Opening the store applies the schema; this just makes it explicit.
package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database",
	Long: `Create the database and apply the schema.

Running init is optional: every command creates the database on first use.
It exists so provisioning scripts can set up the store explicitly and so
the resolved path is easy to check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already opened the store and applied the schema
		color.Green("✓ Database ready at %s", cfg.ResolveDBPath(dbFlag))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
