package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSnapshot_Awake(t *testing.T) {
	a := aggregateWithEnergy(t, &fakeClock{now: t0}, 42, 100)

	s := a.Individual().Snapshot()
	require.Equal(t, Snapshot{ID: "ind-1", Name: "Ada", Energy: 42, MaxEnergy: 100}, s)
}

func TestSnapshot_AsleepRoundTrip(t *testing.T) {
	clock := &fakeClock{now: t0}
	a := aggregateWithEnergy(t, clock, 42, 100)
	require.NoError(t, a.StartSleep())

	s := a.Individual().Snapshot()
	require.NotNil(t, s.SleepSince)

	restored, err := RestoreIndividual(s, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, s, restored.Snapshot())
	require.True(t, restored.Physiology().IsSleeping())
}

func TestRestoreIndividual_DepletedEnergy(t *testing.T) {
	restored, err := RestoreIndividual(Snapshot{ID: "x", Name: "Bo", Energy: 0, MaxEnergy: 80}, t0)
	require.NoError(t, err)
	require.True(t, restored.Energy().IsDepleted())
}

func TestRestoreIndividual_CollectsAllViolations(t *testing.T) {
	future := t0.Add(time.Hour)
	_, err := RestoreIndividual(Snapshot{ID: "x", Name: " ", Energy: 120, MaxEnergy: 100, SleepSince: &future}, t0)
	require.Error(t, err)

	var missing *MissingIndividualNameError
	var rangeErr *InvalidEnergyValueRangeError
	var futureErr *SleepInFutureError
	require.ErrorAs(t, err, &missing)
	require.ErrorAs(t, err, &rangeErr)
	require.ErrorAs(t, err, &futureErr)
}

func TestProperty_SnapshotRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 1000).Draw(t, "capacity")
		value := rapid.IntRange(0, capacity).Draw(t, "value")
		name := rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,20}[A-Za-z]`).Draw(t, "name")
		asleep := rapid.Bool().Draw(t, "asleep")

		s := Snapshot{ID: "id", Name: name, Energy: value, MaxEnergy: capacity}
		if asleep {
			since := t0.Add(-time.Duration(rapid.IntRange(0, 1000).Draw(t, "ago")) * time.Minute)
			s.SleepSince = &since
		}

		restored, err := RestoreIndividual(s, t0)
		if err != nil {
			t.Fatalf("restore %+v: %v", s, err)
		}
		got := restored.Snapshot()
		if got.ID != s.ID || got.Name != s.Name || got.Energy != s.Energy || got.MaxEnergy != s.MaxEnergy {
			t.Fatalf("round trip mismatch: %+v != %+v", got, s)
		}
		if (got.SleepSince == nil) != (s.SleepSince == nil) {
			t.Fatalf("sleep state mismatch")
		}
		if got.SleepSince != nil && !got.SleepSince.Equal(*s.SleepSince) {
			t.Fatalf("sleep since %v != %v", got.SleepSince, s.SleepSince)
		}
	})
}
