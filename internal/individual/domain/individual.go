package domain

// IndividualID uniquely identifies an individual.
type IndividualID string

// String implements fmt.Stringer.
func (id IndividualID) String() string { return string(id) }

// Individual is the entity holding an individual's vital state. Its value
// objects are replaced, never mutated, and only the aggregate replaces them.
type Individual struct {
	id         IndividualID
	metadata   Metadata
	energy     Energy
	physiology Physiology
}

// NewIndividual assembles an Individual from already validated parts.
func NewIndividual(id IndividualID, metadata Metadata, energy Energy, physiology Physiology) *Individual {
	return &Individual{
		id:         id,
		metadata:   metadata,
		energy:     energy,
		physiology: physiology,
	}
}

// CreateIndividual builds a new awake individual with full energy.
func CreateIndividual(id IndividualID, name string, capacity int) (*Individual, error) {
	metadata, err := NewMetadata(name)
	if err != nil {
		return nil, err
	}
	energy, err := FullEnergy(capacity)
	if err != nil {
		return nil, err
	}
	return NewIndividual(id, metadata, energy, AwakePhysiology()), nil
}

// ID returns the identity.
func (i *Individual) ID() IndividualID { return i.id }

// Metadata returns the descriptive data.
func (i *Individual) Metadata() Metadata { return i.metadata }

// Name is shorthand for Metadata().Name().
func (i *Individual) Name() string { return i.metadata.Name() }

// Energy returns the current energy value.
func (i *Individual) Energy() Energy { return i.energy }

// Physiology returns the current sleep state.
func (i *Individual) Physiology() Physiology { return i.physiology }
