package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestAggregate(t *testing.T, clock Clock, opts ...AggregateOption) *IndividualAggregate {
	t.Helper()
	a, err := CreateIndividualAggregate("ind-1", "Ada", append([]AggregateOption{WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	a.ClearEvents()
	return a
}

func aggregateWithEnergy(t *testing.T, clock Clock, current, capacity int, opts ...AggregateOption) *IndividualAggregate {
	t.Helper()
	meta, err := NewMetadata("Ada")
	require.NoError(t, err)
	energy, err := ReconstituteEnergy(current, capacity)
	require.NoError(t, err)
	ind := NewIndividual("ind-1", meta, energy, AwakePhysiology())
	return ReconstituteIndividualAggregate(ind, append([]AggregateOption{WithClock(clock)}, opts...)...)
}

func TestCreateIndividualAggregate(t *testing.T) {
	clock := &fakeClock{now: t0}
	a, err := CreateIndividualAggregate("ind-1", "  Ada ", WithClock(clock))
	require.NoError(t, err)

	require.Equal(t, IndividualID("ind-1"), a.ID())
	require.Equal(t, "Ada", a.Individual().Name())
	require.Equal(t, 100, a.Individual().Energy().Current())
	require.Equal(t, 100, a.Individual().Energy().Max())
	require.True(t, a.Individual().Physiology().IsAwake())

	events := a.Events()
	require.Len(t, events, 1)
	created, ok := events[0].(IndividualCreated)
	require.True(t, ok)
	require.Equal(t, EventIndividualCreated, created.Type())
	require.Equal(t, IndividualID("ind-1"), created.AggregateID())
	require.True(t, t0.Equal(created.OccurredAt()))
	require.Equal(t, "Ada", created.Name)
	require.Equal(t, 100, created.Energy)
	require.Equal(t, 100, created.MaxEnergy)
}

func TestCreateIndividualAggregate_MissingName(t *testing.T) {
	_, err := CreateIndividualAggregate("ind-1", "   ")
	var missing *MissingIndividualNameError
	require.ErrorAs(t, err, &missing)
}

func TestCreateIndividualAggregate_DefaultMaxEnergy(t *testing.T) {
	a, err := CreateIndividualAggregate("ind-1", "Ada", WithDefaultMaxEnergy(250))
	require.NoError(t, err)
	require.Equal(t, 250, a.Individual().Energy().Current())
	require.Equal(t, 250, a.Individual().Energy().Max())
}

func TestReconstituteIndividualAggregate_RecordsNothing(t *testing.T) {
	a := aggregateWithEnergy(t, &fakeClock{now: t0}, 40, 100)
	require.Empty(t, a.Events())
}

func TestStartSleep(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := newTestAggregate(t, clock)

	require.NoError(t, a.StartSleep())
	require.True(t, a.Individual().Physiology().IsSleeping())

	events := a.PullEvents()
	require.Len(t, events, 1)
	started, ok := events[0].(IndividualStartedToSleep)
	require.True(t, ok)
	require.True(t, t0.Equal(started.Since))
	require.Empty(t, a.Events(), "PullEvents must clear")
}

func TestStartSleep_TwiceFails(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := newTestAggregate(t, clock)

	require.NoError(t, a.StartSleep())
	clock.Advance(time.Hour)

	err := a.StartSleep()
	var already *AlreadySleepingError
	require.ErrorAs(t, err, &already)
	require.True(t, t0.Equal(already.Since))
	require.Len(t, a.Events(), 1, "failed command must not record events")
}

func TestEndSleep_WhileAwakeFails(t *testing.T) {
	a := newTestAggregate(t, &fakeClock{now: t0})

	err := a.EndSleep()
	var notSleeping *NotSleepingError
	require.ErrorAs(t, err, &notSleeping)
	require.Empty(t, a.Events())
	require.Equal(t, 100, a.Individual().Energy().Current())
}

func TestEndSleep_FullEnergyGainsNothing(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := newTestAggregate(t, clock)

	require.NoError(t, a.StartSleep())
	clock.Advance(7 * time.Hour)
	a.ClearEvents()

	require.NoError(t, a.EndSleep())
	require.True(t, a.Individual().Physiology().IsAwake())

	events := a.Events()
	require.Len(t, events, 2)

	ended, ok := events[0].(IndividualEndedSleep)
	require.True(t, ok)
	require.Equal(t, 7*time.Hour, ended.Duration)

	changed, ok := events[1].(IndividualEnergyChanged)
	require.True(t, ok)
	assert.Equal(t, 100, changed.Before)
	assert.Equal(t, 100, changed.After)
	assert.Equal(t, 0, changed.Delta)
}

func TestEndSleep_FullNightRestoresDepletedEnergy(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := aggregateWithEnergy(t, clock, 30, 100)

	require.NoError(t, a.StartSleep())
	clock.Advance(7 * time.Hour)
	require.NoError(t, a.EndSleep())

	require.Equal(t, 100, a.Individual().Energy().Current())

	events := a.Events()
	require.Len(t, events, 3)
	ended := events[1].(IndividualEndedSleep)
	require.Equal(t, 7*time.Hour, ended.Duration)
	changed := events[2].(IndividualEnergyChanged)
	require.Equal(t, 30, changed.Before)
	require.Equal(t, 100, changed.After)
	require.Equal(t, 70, changed.Delta)
}

func TestEndSleep_PartialSleepRestoresProportionally(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := aggregateWithEnergy(t, clock, 10, 100)

	require.NoError(t, a.StartSleep())
	clock.Advance(210 * time.Minute)
	require.NoError(t, a.EndSleep())

	require.Equal(t, 60, a.Individual().Energy().Current())
}

func TestEndSleep_ZeroDurationIsNoOp(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := aggregateWithEnergy(t, clock, 50, 100)

	require.NoError(t, a.StartSleep())
	require.NoError(t, a.EndSleep())

	require.Equal(t, 50, a.Individual().Energy().Current())
	changed := a.Events()[2].(IndividualEnergyChanged)
	require.Equal(t, 0, changed.Delta)
}

func TestEndSleep_CustomRecoveryStrategy(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := aggregateWithEnergy(t, clock, 10, 100, WithRecoveryStrategy(FullRestRecovery{FullRest: time.Hour}))

	require.NoError(t, a.StartSleep())
	clock.Advance(30 * time.Minute)
	require.NoError(t, a.EndSleep())

	require.Equal(t, 60, a.Individual().Energy().Current())
}

func TestSpendEnergy(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := newTestAggregate(t, clock)

	require.NoError(t, a.SpendEnergy(25))
	require.Equal(t, 75, a.Individual().Energy().Current())

	events := a.Events()
	require.Len(t, events, 1)
	changed := events[0].(IndividualEnergyChanged)
	require.Equal(t, 100, changed.Before)
	require.Equal(t, 75, changed.After)
	require.Equal(t, -25, changed.Delta)
}

func TestSpendEnergy_InsufficientLeavesStateUnchanged(t *testing.T) {
	a := newTestAggregate(t, &fakeClock{now: t0})

	err := a.SpendEnergy(150)
	var insufficient *InsufficientEnergyError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 100, a.Individual().Energy().Current())
	require.Empty(t, a.Events())
}

func TestSpendEnergy_InvalidAmount(t *testing.T) {
	a := newTestAggregate(t, &fakeClock{now: t0})

	err := a.SpendEnergy(0)
	var amountErr *InvalidEnergyAmountError
	require.ErrorAs(t, err, &amountErr)
	require.Empty(t, a.Events())
}

func TestSpendEnergy_CollapseForcesSleep(t *testing.T) {
	a := newTestAggregate(t, &fakeClock{now: t0})

	require.NoError(t, a.SpendEnergy(100))
	require.True(t, a.Individual().Energy().IsDepleted())
	require.True(t, a.Individual().Physiology().IsSleeping())

	events := a.Events()
	require.Len(t, events, 3)
	require.Equal(t, EventIndividualEnergyChanged, events[0].Type())
	require.Equal(t, EventIndividualCollapsed, events[1].Type())
	require.Equal(t, EventIndividualStartedToSleep, events[2].Type())
}

func TestSpendEnergy_CollapseWithoutAutoSleep(t *testing.T) {
	a := newTestAggregate(t, &fakeClock{now: t0}, WithAutoSleepOnCollapse(false))

	require.NoError(t, a.SpendEnergy(100))
	require.True(t, a.Individual().Physiology().IsAwake())

	events := a.Events()
	require.Len(t, events, 2)
	require.Equal(t, EventIndividualCollapsed, events[1].Type())
}

func TestSpendEnergy_CollapseWhileAsleepDoesNotRestartSleep(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := newTestAggregate(t, clock)

	require.NoError(t, a.StartSleep())
	clock.Advance(time.Minute)
	a.ClearEvents()

	require.NoError(t, a.SpendEnergy(100))

	events := a.Events()
	require.Len(t, events, 2)
	require.Equal(t, EventIndividualCollapsed, events[1].Type())
	since, _ := a.Individual().Physiology().SleepSince()
	require.True(t, t0.Equal(since), "original sleep start must be kept")
}

func TestDrainEnergy(t *testing.T) {
	a := aggregateWithEnergy(t, &fakeClock{now: t0}, 20, 100)

	require.NoError(t, a.DrainEnergy(5))
	require.Equal(t, 15, a.Individual().Energy().Current())

	require.NoError(t, a.DrainEnergy(500))
	require.Equal(t, 0, a.Individual().Energy().Current())

	events := a.Events()
	require.Len(t, events, 4)
	last := events[1].(IndividualEnergyChanged)
	require.Equal(t, -15, last.Delta)
	require.Equal(t, EventIndividualCollapsed, events[2].Type())
	require.Equal(t, EventIndividualStartedToSleep, events[3].Type())
}

func TestDrainEnergy_AlreadyDepletedRecordsNothing(t *testing.T) {
	a := aggregateWithEnergy(t, &fakeClock{now: t0}, 0, 100)

	require.NoError(t, a.DrainEnergy(10))
	require.Empty(t, a.Events())
}

func TestEvents_ReturnsCopy(t *testing.T) {
	a := newTestAggregate(t, &fakeClock{now: t0})
	require.NoError(t, a.SpendEnergy(1))

	events := a.Events()
	events[0] = nil
	require.NotNil(t, a.Events()[0])
}

func TestProperty_EnergyNeverExceedsMaxAcrossCommands(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := &fakeClock{now: t0}
		a, err := CreateIndividualAggregate("ind-1", "Ada", WithClock(clock))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				_ = a.StartSleep()
			case 1:
				_ = a.EndSleep()
			case 2:
				_ = a.SpendEnergy(rapid.IntRange(-5, 120).Draw(t, "spend"))
			case 3:
				_ = a.DrainEnergy(rapid.IntRange(-5, 120).Draw(t, "drain"))
			}
			clock.Advance(time.Duration(rapid.IntRange(0, 600).Draw(t, "minutes")) * time.Minute)

			e := a.Individual().Energy()
			if e.Current() < 0 || e.Current() > e.Max() {
				t.Fatalf("energy %d outside [0, %d]", e.Current(), e.Max())
			}
		}

		for _, ev := range a.Events() {
			changed, ok := ev.(IndividualEnergyChanged)
			if ok && changed.After-changed.Before != changed.Delta {
				t.Fatalf("delta %d inconsistent with %d -> %d", changed.Delta, changed.Before, changed.After)
			}
		}
	})
}
