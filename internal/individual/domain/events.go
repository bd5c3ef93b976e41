package domain

import "time"

// EventType identifies the kind of domain event.
type EventType string

const (
	EventIndividualCreated        EventType = "individual.created"
	EventIndividualStartedToSleep EventType = "individual.started_to_sleep"
	EventIndividualEndedSleep     EventType = "individual.ended_sleep"
	EventIndividualEnergyChanged  EventType = "individual.energy.changed"
	EventIndividualCollapsed      EventType = "individual.collapsed"
)

// EventTypes lists every event type the aggregate can emit.
func EventTypes() []EventType {
	return []EventType{
		EventIndividualCreated,
		EventIndividualStartedToSleep,
		EventIndividualEndedSleep,
		EventIndividualEnergyChanged,
		EventIndividualCollapsed,
	}
}

// Event is a state change that already happened to an individual. The set of
// implementations is closed to this package.
type Event interface {
	Type() EventType
	AggregateID() IndividualID
	OccurredAt() time.Time

	isIndividualEvent()
}

// EventHeader carries the fields shared by every event.
type EventHeader struct {
	IndividualID IndividualID `json:"aggregate_id"`
	Timestamp    time.Time    `json:"occurred_at"`
}

// AggregateID returns the id of the individual the event belongs to.
func (h EventHeader) AggregateID() IndividualID { return h.IndividualID }

// OccurredAt returns when the event happened.
func (h EventHeader) OccurredAt() time.Time { return h.Timestamp }

func (EventHeader) isIndividualEvent() {}

func newHeader(id IndividualID, at time.Time) EventHeader {
	return EventHeader{IndividualID: id, Timestamp: at}
}

// IndividualCreated is emitted once when an individual comes into existence.
type IndividualCreated struct {
	EventHeader
	Name      string `json:"name"`
	Energy    int    `json:"energy"`
	MaxEnergy int    `json:"max_energy"`
}

// Type implements Event.
func (IndividualCreated) Type() EventType { return EventIndividualCreated }

// IndividualStartedToSleep is emitted when the individual falls asleep.
type IndividualStartedToSleep struct {
	EventHeader
	Since time.Time `json:"since"`
}

// Type implements Event.
func (IndividualStartedToSleep) Type() EventType { return EventIndividualStartedToSleep }

// IndividualEndedSleep is emitted when the individual wakes up.
type IndividualEndedSleep struct {
	EventHeader
	Duration time.Duration `json:"duration"`
}

// Type implements Event.
func (IndividualEndedSleep) Type() EventType { return EventIndividualEndedSleep }

// IndividualEnergyChanged records an energy transition. Delta is After-Before.
type IndividualEnergyChanged struct {
	EventHeader
	Before int `json:"before"`
	After  int `json:"after"`
	Delta  int `json:"delta"`
}

// Type implements Event.
func (IndividualEnergyChanged) Type() EventType { return EventIndividualEnergyChanged }

// IndividualCollapsed is emitted when energy reaches zero.
type IndividualCollapsed struct {
	EventHeader
}

// Type implements Event.
func (IndividualCollapsed) Type() EventType { return EventIndividualCollapsed }
