// Package cmd implements the vitality command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zjrosen/vitality/internal/config"
	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/log"
	"github.com/zjrosen/vitality/internal/paths"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	memory     bool
	debug      bool
	showEvents bool

	dbFlag *pflag.Flag
}

// NewRootCmd builds the vitality command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "vitality",
		Short: "Track the energy and sleep of simulated individuals",
		Long: `Vitality keeps a small population of simulated individuals. Each one
has an energy budget that is spent by activity, drained by time and
restored by sleep.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./.vitality.yaml or ~/.config/vitality/config.yaml)")
	flags.String("db", "", "SQLite database path (overrides database_path)")
	flags.BoolVar(&opts.memory, "memory", false, "keep state in memory for this run only")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVarP(&opts.showEvents, "events", "e", false, "print the domain events each command emits")
	opts.dbFlag = flags.Lookup("db")

	root.AddCommand(
		newCreateCmd(opts),
		newShowCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newSleepCmd(opts),
		newSpendCmd(opts),
		newDrainCmd(opts),
		newEventsCmd(opts),
		newExportCmd(opts),
		newConfigCmd(),
		newDBCmd(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for one invocation.
func (o *rootOptions) loadConfig() (config.Config, error) {
	v := config.NewViper()
	if err := v.BindPFlag("database_path", o.dbFlag); err != nil {
		return config.Config{}, err
	}
	if o.debug {
		v.Set("log.level", "debug")
	}
	return config.Load(v, o.configFile)
}

// setupLogging points the logger at the configured file, or at errOut.
// The returned closer releases the log file.
func setupLogging(cfg config.LogConfig, debug bool, errOut io.Writer) (func() error, error) {
	level := log.ParseLevel(cfg.Level)
	if cfg.File == "" {
		log.Init(errOut, level)
		return func() error { return nil }, nil
	}

	path, err := paths.ExpandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	var w io.Writer = f
	if debug {
		w = io.MultiWriter(f, errOut)
	}
	log.Init(w, level)
	return f.Close, nil
}

// run loads config, wires the application, runs fn and tears everything
// down again. With --events, emitted events are printed after fn returns.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.Log, o.debug, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, appOptions{memory: o.memory, traceOut: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var sub <-chan domain.Event
	if o.showEvents {
		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		sub = a.broker.Subscribe(subCtx)
	}

	log.Debug(log.CatCLI, "Running command", "cmd", cmd.CommandPath())
	err = fn(ctx, a)

	if sub != nil {
		printPending(cmd.OutOrStdout(), sub)
	}
	return err
}

// printPending prints every event already buffered on sub without blocking.
func printPending(w io.Writer, sub <-chan domain.Event) {
	for {
		select {
		case e, ok := <-sub:
			if !ok {
				return
			}
			fmt.Fprintf(w, "  event: %s\n", describeEvent(e))
		default:
			return
		}
	}
}
