package domain

import "time"

// AggregateOption configures an IndividualAggregate.
type AggregateOption func(*aggregateConfig)

type aggregateConfig struct {
	clock               Clock
	recovery            SleepRecoveryStrategy
	autoSleepOnCollapse bool
	defaultMaxEnergy    int
}

func defaultAggregateConfig() aggregateConfig {
	return aggregateConfig{
		clock:               SystemClock{},
		recovery:            FullRestRecovery{FullRest: DefaultFullRest},
		autoSleepOnCollapse: true,
		defaultMaxEnergy:    DefaultMaxEnergy,
	}
}

// WithClock sets the time source. Nil keeps the system clock.
func WithClock(c Clock) AggregateOption {
	return func(cfg *aggregateConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithRecoveryStrategy sets how sleep converts into energy. Nil keeps the
// default seven-hour full rest.
func WithRecoveryStrategy(s SleepRecoveryStrategy) AggregateOption {
	return func(cfg *aggregateConfig) {
		if s != nil {
			cfg.recovery = s
		}
	}
}

// WithAutoSleepOnCollapse controls whether a collapse forces the individual
// to fall asleep.
func WithAutoSleepOnCollapse(enabled bool) AggregateOption {
	return func(cfg *aggregateConfig) {
		cfg.autoSleepOnCollapse = enabled
	}
}

// WithDefaultMaxEnergy sets the capacity given to newly created individuals.
// Non-positive values are ignored.
func WithDefaultMaxEnergy(capacity int) AggregateOption {
	return func(cfg *aggregateConfig) {
		if capacity > 0 {
			cfg.defaultMaxEnergy = capacity
		}
	}
}

// IndividualAggregate is the only entry point that mutates an Individual.
// Each successful command replaces the affected value objects and records
// events; a failed command leaves the individual untouched.
//
// An aggregate is not safe for concurrent use.
type IndividualAggregate struct {
	individual *Individual
	cfg        aggregateConfig
	events     []Event
}

// CreateIndividualAggregate creates a new individual with full default energy
// and records IndividualCreated.
func CreateIndividualAggregate(id IndividualID, name string, opts ...AggregateOption) (*IndividualAggregate, error) {
	cfg := defaultAggregateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	individual, err := CreateIndividual(id, name, cfg.defaultMaxEnergy)
	if err != nil {
		return nil, err
	}

	a := &IndividualAggregate{individual: individual, cfg: cfg}
	a.record(IndividualCreated{
		EventHeader: newHeader(id, cfg.clock.Now()),
		Name:        individual.Name(),
		Energy:      individual.Energy().Current(),
		MaxEnergy:   individual.Energy().Max(),
	})
	return a, nil
}

// ReconstituteIndividualAggregate wraps an existing individual, typically one
// loaded from a repository. No events are recorded.
func ReconstituteIndividualAggregate(individual *Individual, opts ...AggregateOption) *IndividualAggregate {
	cfg := defaultAggregateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &IndividualAggregate{individual: individual, cfg: cfg}
}

// ID returns the aggregate identity.
func (a *IndividualAggregate) ID() IndividualID { return a.individual.ID() }

// Individual returns the owned entity for reading and persistence.
func (a *IndividualAggregate) Individual() *Individual { return a.individual }

// StartSleep puts the individual to sleep.
func (a *IndividualAggregate) StartSleep() error {
	return a.startSleep(a.cfg.clock.Now())
}

func (a *IndividualAggregate) startSleep(now time.Time) error {
	next, err := a.individual.physiology.MarkSleepStarted(now)
	if err != nil {
		return err
	}
	a.individual.physiology = next
	a.record(IndividualStartedToSleep{
		EventHeader: newHeader(a.ID(), now),
		Since:       now,
	})
	return nil
}

// EndSleep wakes the individual and regenerates energy in proportion to the
// time slept.
func (a *IndividualAggregate) EndSleep() error {
	now := a.cfg.clock.Now()
	current := a.individual.physiology

	awake, err := current.MarkSleepEnded()
	if err != nil {
		return err
	}

	slept := current.SleepDuration(now)
	before := a.individual.energy
	after := before
	if regen := a.cfg.recovery.Compute(slept, before); regen > 0 {
		after, err = before.IncreaseBy(regen)
		if err != nil {
			return err
		}
	}

	a.individual.physiology = awake
	a.individual.energy = after

	a.record(IndividualEndedSleep{
		EventHeader: newHeader(a.ID(), now),
		Duration:    slept,
	})
	a.record(a.energyChanged(now, before, after))
	return nil
}

// SpendEnergy consumes amount of energy. Reaching zero triggers a collapse.
func (a *IndividualAggregate) SpendEnergy(amount int) error {
	now := a.cfg.clock.Now()
	before := a.individual.energy

	after, err := before.Spend(amount)
	if err != nil {
		return err
	}

	a.individual.energy = after
	a.record(a.energyChanged(now, before, after))
	return a.checkCollapse(now)
}

// DrainEnergy applies passive decay, saturating at zero. It records an
// energy change only when energy actually moved.
func (a *IndividualAggregate) DrainEnergy(amount int) error {
	now := a.cfg.clock.Now()
	before := a.individual.energy

	after, err := before.DecreaseBy(amount)
	if err != nil {
		return err
	}
	if after == before {
		return nil
	}

	a.individual.energy = after
	a.record(a.energyChanged(now, before, after))
	return a.checkCollapse(now)
}

func (a *IndividualAggregate) checkCollapse(now time.Time) error {
	if !a.individual.energy.IsDepleted() {
		return nil
	}
	a.record(IndividualCollapsed{EventHeader: newHeader(a.ID(), now)})

	if a.cfg.autoSleepOnCollapse && a.individual.physiology.IsAwake() {
		return a.startSleep(now)
	}
	return nil
}

func (a *IndividualAggregate) energyChanged(now time.Time, before, after Energy) IndividualEnergyChanged {
	return IndividualEnergyChanged{
		EventHeader: newHeader(a.ID(), now),
		Before:      before.Current(),
		After:       after.Current(),
		Delta:       after.Current() - before.Current(),
	}
}

func (a *IndividualAggregate) record(e Event) {
	a.events = append(a.events, e)
}

// Events returns a copy of the recorded events in emission order.
func (a *IndividualAggregate) Events() []Event {
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}

// ClearEvents discards all recorded events.
func (a *IndividualAggregate) ClearEvents() {
	a.events = nil
}

// PullEvents returns the recorded events and clears them.
func (a *IndividualAggregate) PullEvents() []Event {
	out := a.events
	a.events = nil
	return out
}
