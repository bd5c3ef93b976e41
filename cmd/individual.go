package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vitality/internal/individual/domain"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an individual with full energy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				ind, err := a.svc.Create(ctx, args[0])
				if err != nil {
					return err
				}
				printIndividual(cmd.OutOrStdout(), ind, a.now())
				return nil
			})
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an individual's energy and sleep state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				ind, err := a.svc.Get(ctx, domain.IndividualID(args[0]))
				if err != nil {
					return err
				}
				printIndividual(cmd.OutOrStdout(), ind, a.now())
				return nil
			})
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all individuals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				list, err := a.svc.List(ctx)
				if err != nil {
					return err
				}
				printIndividuals(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an individual",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.svc.Delete(ctx, domain.IndividualID(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newSleepCmd(opts *rootOptions) *cobra.Command {
	sleep := &cobra.Command{
		Use:   "sleep",
		Short: "Start or end an individual's sleep",
	}

	sleep.AddCommand(
		&cobra.Command{
			Use:   "start <id>",
			Short: "Put the individual to sleep",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.runCommand(cmd, args[0], func(ctx context.Context, a *app, id domain.IndividualID) (*domain.Individual, error) {
					return a.svc.StartSleep(ctx, id)
				})
			},
		},
		&cobra.Command{
			Use:   "end <id>",
			Short: "Wake the individual and regenerate energy",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.runCommand(cmd, args[0], func(ctx context.Context, a *app, id domain.IndividualID) (*domain.Individual, error) {
					return a.svc.EndSleep(ctx, id)
				})
			},
		},
	)
	return sleep
}

func newSpendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "spend <id> <amount>",
		Short: "Spend energy on an activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return opts.runCommand(cmd, args[0], func(ctx context.Context, a *app, id domain.IndividualID) (*domain.Individual, error) {
				return a.svc.SpendEnergy(ctx, id, amount)
			})
		},
	}
}

func newDrainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drain <id> <amount>",
		Short: "Apply passive energy decay, stopping at zero",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return opts.runCommand(cmd, args[0], func(ctx context.Context, a *app, id domain.IndividualID) (*domain.Individual, error) {
				return a.svc.DrainEnergy(ctx, id, amount)
			})
		},
	}
}

// runCommand runs a state-changing service call and prints the result.
func (o *rootOptions) runCommand(cmd *cobra.Command, rawID string, fn func(context.Context, *app, domain.IndividualID) (*domain.Individual, error)) error {
	return o.run(cmd, func(ctx context.Context, a *app) error {
		ind, err := fn(ctx, a, domain.IndividualID(rawID))
		if err != nil {
			return err
		}
		printIndividual(cmd.OutOrStdout(), ind, a.now())
		return nil
	})
}

// parseAmount accepts any integer. Sign checks are left to the domain so the
// error matches the one returned by the service.
func parseAmount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("amount must be an integer: %q", s)
	}
	return n, nil
}
