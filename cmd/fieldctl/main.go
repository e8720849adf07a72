// Command fieldctl runs schema migrations, PostGIS maintenance and purchase
// workflows against a fieldops deployment.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/samirrijal/fieldops/internal/adapters/postgres"
	"github.com/samirrijal/fieldops/internal/pkg/config"
	"github.com/samirrijal/fieldops/internal/pkg/logging"
)

var (
	cfg     *config.Config
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "fieldctl",
	Short:         "Operate a fieldops deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load("fieldctl"); err != nil {
			return err
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.Setup("fieldctl", level, "text")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd, postgisCmd, backfillCmd, purchaseCmd, tokenCmd, eventsCmd)
}

// connect opens the database with the command timeout applied to ctx.
func connect(cmd *cobra.Command) (context.Context, context.CancelFunc, *postgres.DB, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("database: %w", err)
	}
	return ctx, cancel, db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
