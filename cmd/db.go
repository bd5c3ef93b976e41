package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vitality/internal/infrastructure/migrations"
)

func newDBCmd(opts *rootOptions) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the vitality database",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the database path and schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(_ context.Context, a *app) error {
				if err := a.requireDB(); err != nil {
					return err
				}
				version, dirty, err := migrations.SchemaVersion(a.db.Connection())
				if err != nil {
					return fmt.Errorf("reading schema version: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "path:    %s\n", a.db.Path())
				fmt.Fprintf(out, "schema:  %d", version)
				if dirty {
					fmt.Fprint(out, " (dirty)")
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	})
	return dbCmd
}
