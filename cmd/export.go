package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/vitality/internal/individual/domain"
)

// Export formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [id...]",
		Short: "Export individuals as YAML or JSON",
		Long:  `Write a snapshot of the given individuals, or of everyone when no id is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatYAML && format != formatJSON {
				return fmt.Errorf("unsupported format %q: use %s or %s", format, formatYAML, formatJSON)
			}

			return opts.run(cmd, func(ctx context.Context, a *app) error {
				snapshots, err := collectSnapshots(ctx, a, args)
				if err != nil {
					return err
				}

				if output != "" {
					return writeExportFile(output, format, snapshots)
				}
				return writeSnapshots(cmd.OutOrStdout(), format, snapshots)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func collectSnapshots(ctx context.Context, a *app, ids []string) ([]domain.Snapshot, error) {
	var list []*domain.Individual
	if len(ids) == 0 {
		all, err := a.svc.List(ctx)
		if err != nil {
			return nil, err
		}
		list = all
	} else {
		for _, id := range ids {
			ind, err := a.svc.Get(ctx, domain.IndividualID(id))
			if err != nil {
				return nil, err
			}
			list = append(list, ind)
		}
	}

	snapshots := make([]domain.Snapshot, 0, len(list))
	for _, ind := range list {
		snapshots = append(snapshots, ind.Snapshot())
	}
	return snapshots, nil
}

// exportDocument is the top-level shape of an export.
type exportDocument struct {
	Individuals []domain.Snapshot `json:"individuals" yaml:"individuals"`
}

// writeExportFile writes snapshots to path. A failed close is reported so a
// truncated export is never mistaken for a complete one.
func writeExportFile(path, format string, snapshots []domain.Snapshot) (retErr error) {
	f, err := os.Create(path) //nolint:gosec // G304: output path is supplied by the user
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("closing export file: %w", closeErr))
		}
	}()

	return writeSnapshots(f, format, snapshots)
}

func writeSnapshots(w io.Writer, format string, snapshots []domain.Snapshot) error {
	doc := exportDocument{Individuals: snapshots}

	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
