package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vitality/internal/individual/domain"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events [id]",
		Short: "Show recorded domain events",
		Long: `Show the event history of one individual, or the most recent events
across all individuals when no id is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.requireDB(); err != nil {
					return err
				}

				var (
					events []domain.Event
					err    error
				)
				if len(args) == 1 {
					events, err = a.store.ListByAggregate(ctx, domain.IndividualID(args[0]))
				} else {
					events, err = a.store.ListRecent(ctx, limit)
				}
				if err != nil {
					return fmt.Errorf("loading events: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintln(out, "No events recorded.")
					return nil
				}
				for _, e := range events {
					fmt.Fprintln(out, describeEvent(e))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of recent events to show when no id is given")
	return cmd
}
