package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/log"
)

// TracerName is the instrumentation name used for service spans.
const TracerName = "github.com/zjrosen/vitality/internal/individual/application"

// ServiceConfig configures a Service. Zero values fall back to the domain
// defaults.
type ServiceConfig struct {
	// Clock is the time source for every aggregate. Defaults to the system clock.
	Clock domain.Clock

	// FullRest is the sleep length that fully restores energy.
	FullRest time.Duration

	// DefaultMaxEnergy is the capacity of newly created individuals.
	DefaultMaxEnergy int

	// DisableAutoSleepOnCollapse keeps collapsed individuals awake.
	DisableAutoSleepOnCollapse bool

	// Tracer records one span per command. Defaults to the global provider.
	Tracer trace.Tracer

	// NewID generates identities for created individuals. Defaults to UUIDv4.
	NewID func() domain.IndividualID
}

// Service runs individual commands against a repository and publishes the
// resulting events. Commands on the same individual are serialized.
type Service struct {
	repo      domain.IndividualRepository
	publisher EventPublisher
	opts      []domain.AggregateOption
	tracer    trace.Tracer
	newID     func() domain.IndividualID
	locks     *keyedMutex
}

// NewService creates a Service. A nil publisher discards events.
func NewService(repo domain.IndividualRepository, publisher EventPublisher, cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if publisher == nil {
		publisher = FanoutPublisher(nil)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	newID := cfg.NewID
	if newID == nil {
		newID = func() domain.IndividualID { return domain.IndividualID(uuid.NewString()) }
	}

	opts := []domain.AggregateOption{
		domain.WithClock(clock),
		domain.WithAutoSleepOnCollapse(!cfg.DisableAutoSleepOnCollapse),
		domain.WithDefaultMaxEnergy(cfg.DefaultMaxEnergy),
	}
	if cfg.FullRest > 0 {
		opts = append(opts, domain.WithRecoveryStrategy(domain.FullRestRecovery{FullRest: cfg.FullRest}))
	}

	return &Service{
		repo:      repo,
		publisher: publisher,
		opts:      opts,
		tracer:    tracer,
		newID:     newID,
		locks:     newKeyedMutex(),
	}
}

// Create registers a new individual with full energy.
func (s *Service) Create(ctx context.Context, name string) (*domain.Individual, error) {
	id := s.newID()
	ctx, span := s.startSpan(ctx, "create", id)
	defer span.End()

	agg, err := domain.CreateIndividualAggregate(id, name, s.opts...)
	if err != nil {
		return nil, s.fail(span, "create", id, err)
	}
	if err := s.commit(ctx, span, agg); err != nil {
		return nil, err
	}

	log.Info(log.CatApp, "Individual created", "id", id, "name", agg.Individual().Name())
	return agg.Individual(), nil
}

// Get returns the individual with the given id.
func (s *Service) Get(ctx context.Context, id domain.IndividualID) (*domain.Individual, error) {
	ctx, span := s.startSpan(ctx, "get", id)
	defer span.End()

	ind, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(span, "get", id, err)
	}
	return ind, nil
}

// List returns all individuals.
func (s *Service) List(ctx context.Context) ([]*domain.Individual, error) {
	ctx, span := s.tracer.Start(ctx, "individual.list")
	defer span.End()

	list, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list individuals: %w", err)
	}
	span.SetAttributes(attribute.Int("individual.count", len(list)))
	return list, nil
}

// Delete removes the individual. Its recorded events are kept.
func (s *Service) Delete(ctx context.Context, id domain.IndividualID) error {
	ctx, span := s.startSpan(ctx, "delete", id)
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(span, "delete", id, err)
	}
	log.Info(log.CatApp, "Individual deleted", "id", id)
	return nil
}

// StartSleep puts the individual to sleep.
func (s *Service) StartSleep(ctx context.Context, id domain.IndividualID) (*domain.Individual, error) {
	return s.execute(ctx, "start_sleep", id, (*domain.IndividualAggregate).StartSleep)
}

// EndSleep wakes the individual and regenerates energy.
func (s *Service) EndSleep(ctx context.Context, id domain.IndividualID) (*domain.Individual, error) {
	return s.execute(ctx, "end_sleep", id, (*domain.IndividualAggregate).EndSleep)
}

// SpendEnergy consumes energy.
func (s *Service) SpendEnergy(ctx context.Context, id domain.IndividualID, amount int) (*domain.Individual, error) {
	return s.execute(ctx, "spend_energy", id, func(a *domain.IndividualAggregate) error {
		return a.SpendEnergy(amount)
	})
}

// DrainEnergy applies passive energy decay.
func (s *Service) DrainEnergy(ctx context.Context, id domain.IndividualID, amount int) (*domain.Individual, error) {
	return s.execute(ctx, "drain_energy", id, func(a *domain.IndividualAggregate) error {
		return a.DrainEnergy(amount)
	})
}

// execute loads the individual, runs cmd and commits on success. A rejected
// command is neither saved nor published.
func (s *Service) execute(ctx context.Context, op string, id domain.IndividualID, cmd func(*domain.IndividualAggregate) error) (*domain.Individual, error) {
	ctx, span := s.startSpan(ctx, op, id)
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	ind, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(span, op, id, err)
	}

	agg := domain.ReconstituteIndividualAggregate(ind, s.opts...)
	if err := cmd(agg); err != nil {
		return nil, s.fail(span, op, id, err)
	}
	if err := s.commit(ctx, span, agg); err != nil {
		return nil, err
	}

	energy := agg.Individual().Energy()
	log.Debug(log.CatApp, "Command applied", "op", op, "id", id,
		"energy", energy.Current(), "max", energy.Max(),
		"sleeping", agg.Individual().Physiology().IsSleeping())
	return agg.Individual(), nil
}

func (s *Service) commit(ctx context.Context, span trace.Span, agg *domain.IndividualAggregate) error {
	if err := s.repo.Save(ctx, agg.Individual()); err != nil {
		log.ErrorErr(log.CatApp, "Failed to save individual", err, "id", agg.ID())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to save individual %s: %w", agg.ID(), err)
	}

	events := agg.PullEvents()
	span.SetAttributes(attribute.Int("individual.events", len(events)))
	if len(events) == 0 {
		return nil
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		log.ErrorErr(log.CatApp, "Failed to publish events", err, "id", agg.ID(), "count", len(events))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to publish events for %s: %w", agg.ID(), err)
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, op string, id domain.IndividualID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "individual."+op,
		trace.WithAttributes(attribute.String("individual.id", string(id))))
}

// fail records err on the span and returns it unchanged so callers can match
// domain error types.
func (s *Service) fail(span trace.Span, op string, id domain.IndividualID, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var notFound *domain.IndividualNotFoundError
	if errors.As(err, &notFound) {
		log.Debug(log.CatApp, "Individual not found", "op", op, "id", id)
	} else {
		log.Debug(log.CatDomain, "Command rejected", "op", op, "id", id, "error", err)
	}
	return err
}
