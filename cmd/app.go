package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zjrosen/vitality/internal/config"
	"github.com/zjrosen/vitality/internal/individual/application"
	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/infrastructure/memory"
	"github.com/zjrosen/vitality/internal/infrastructure/sqlite"
	"github.com/zjrosen/vitality/internal/log"
	"github.com/zjrosen/vitality/internal/pubsub"
	"github.com/zjrosen/vitality/internal/tracing"
)

// ErrNoDatabase is returned by commands that need the SQLite store when
// running with --memory.
var ErrNoDatabase = errors.New("this command needs the database; run without --memory")

type appOptions struct {
	memory   bool
	clock    domain.Clock
	traceOut io.Writer
}

// app is the wired application for a single command invocation.
type app struct {
	cfg    config.Config
	clock  domain.Clock
	svc    *application.Service
	repo   domain.IndividualRepository
	db     *sqlite.DB         // nil with --memory
	store  *sqlite.EventStore // nil with --memory
	broker *pubsub.Broker[domain.Event]

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config, opts appOptions) (_ *app, err error) {
	clock := opts.clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	a := &app{
		cfg:    cfg,
		clock:  clock,
		broker: pubsub.NewBrokerWithBuffer[domain.Event](cfg.Events.BufferSize),
	}
	a.closers = append(a.closers, func(context.Context) error {
		a.broker.Shutdown()
		return nil
	})
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close(ctx))
		}
	}()

	tp, shutdown, err := tracing.Setup(ctx, cfg.Tracing, opts.traceOut)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	publishers := application.FanoutPublisher{application.BrokerPublisher{Broker: a.broker}}

	if opts.memory {
		a.repo = memory.NewRepository(clock)
	} else {
		path, err := cfg.ResolveDatabasePath()
		if err != nil {
			return nil, err
		}
		db, err := sqlite.NewDB(path, sqlite.WithClock(clock))
		if err != nil {
			return nil, err
		}
		a.db = db
		a.store = db.EventStore()
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		a.repo = db.IndividualRepository()
		if cfg.Cache.Enabled {
			a.repo = memory.NewCachedRepository(a.repo, cfg.Cache.TTL, clock)
		}
		if cfg.Events.Persist {
			// Persist before notifying live subscribers.
			publishers = append(application.FanoutPublisher{a.store}, publishers...)
		}
	}

	a.svc = application.NewService(a.repo, publishers, application.ServiceConfig{
		Clock:                      clock,
		FullRest:                   cfg.Individual.FullRest,
		DefaultMaxEnergy:           cfg.Individual.DefaultMaxEnergy,
		DisableAutoSleepOnCollapse: !cfg.Individual.AutoSleepOnCollapse,
		Tracer:                     tp.Tracer(application.TracerName),
	})

	log.Debug(log.CatCLI, "Application wired", "memory", opts.memory, "cache", cfg.Cache.Enabled, "persist_events", cfg.Events.Persist)
	return a, nil
}

func (a *app) now() time.Time {
	return a.clock.Now()
}

// requireDB returns ErrNoDatabase in memory mode.
func (a *app) requireDB() error {
	if a.db == nil {
		return ErrNoDatabase
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
