package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/fieldops/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrations.Up(cfg.Database.MigrateURL()); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		return printVersion(cmd)
	},
}

var downSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (all of them unless --steps is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrations.Down(cfg.Database.MigrateURL(), downSteps); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		return printVersion(cmd)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back, 0 for all")
}

func printVersion(cmd *cobra.Command) error {
	v, dirty, err := migrations.Version(cfg.Database.MigrateURL())
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
	return nil
}
