package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/samirrijal/fieldops/internal/adapters/postgres"
	"github.com/samirrijal/fieldops/internal/app"
	"github.com/samirrijal/fieldops/internal/core/geosync"
)

var postgisCmd = &cobra.Command{
	Use:   "postgis",
	Short: "Create the PostGIS extension when missing and print its version",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, db, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer db.Close()

		v, err := postgres.NewMapRepo(db).EnsurePostGIS(ctx)
		if err != nil {
			return fmt.Errorf("postgis: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PostGIS %s\n", v)
		return nil
	},
}

var skipIndex bool

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Build missing geometries from coordinates and refresh derived location columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, db, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		defer db.Close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ENTITY\tSHAPES SET\tDERIVED UPDATED")
		for _, entity := range app.Entities {
			repo, err := postgres.NewGeometryRepo(db, entity)
			if err != nil {
				return err
			}
			if !skipIndex {
				if err := repo.EnsureIndex(ctx); err != nil {
					return fmt.Errorf("%s index: %w", entity, err)
				}
			}
			res, err := repo.Backfill(ctx, geosync.PolicyFor(entity))
			if err != nil {
				return fmt.Errorf("%s backfill: %w", entity, err)
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\n", res.Entity, res.ShapesSet, res.DerivedUpdated)
		}
		return tw.Flush()
	},
}

func init() {
	backfillCmd.Flags().BoolVar(&skipIndex, "skip-index", false, "Do not create the GiST indexes")
}
