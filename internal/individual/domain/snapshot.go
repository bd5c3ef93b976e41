package domain

import (
	"errors"
	"time"
)

// Snapshot is the plain-data form of an Individual used by repositories and
// exporters. It round-trips through RestoreIndividual without loss.
type Snapshot struct {
	ID         IndividualID `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Energy     int          `json:"energy" yaml:"energy"`
	MaxEnergy  int          `json:"max_energy" yaml:"max_energy"`
	SleepSince *time.Time   `json:"sleep_since,omitempty" yaml:"sleep_since,omitempty"`
}

// Snapshot captures the individual's current state.
func (i *Individual) Snapshot() Snapshot {
	s := Snapshot{
		ID:        i.id,
		Name:      i.metadata.Name(),
		Energy:    i.energy.Current(),
		MaxEnergy: i.energy.Max(),
	}
	if since, ok := i.physiology.SleepSince(); ok {
		s.SleepSince = &since
	}
	return s
}

// RestoreIndividual rebuilds an Individual from a snapshot, re-running every
// value object's validation. All violations are reported together.
func RestoreIndividual(s Snapshot, now time.Time) (*Individual, error) {
	metadata, metaErr := NewMetadata(s.Name)
	energy, energyErr := ReconstituteEnergy(s.Energy, s.MaxEnergy)
	physiology, physErr := NewPhysiology(s.SleepSince, now)

	if err := errors.Join(metaErr, energyErr, physErr); err != nil {
		return nil, err
	}
	return NewIndividual(s.ID, metadata, energy, physiology), nil
}
