package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/vitality/internal/individual/domain"
)

// IndividualModel is a row of the individuals table. Times are Unix
// milliseconds.
type IndividualModel struct {
	ID         string
	Name       string
	Energy     int
	MaxEnergy  int
	SleepSince *int64 // nullable, set while asleep
	CreatedAt  int64
	UpdatedAt  int64
}

func toIndividualModel(ind *domain.Individual, now time.Time) *IndividualModel {
	m := &IndividualModel{
		ID:        ind.ID().String(),
		Name:      ind.Name(),
		Energy:    ind.Energy().Current(),
		MaxEnergy: ind.Energy().Max(),
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	if since, ok := ind.Physiology().SleepSince(); ok {
		ms := since.UnixMilli()
		m.SleepSince = &ms
	}
	return m
}

// toDomain validates the row through the domain constructors.
func (m *IndividualModel) toDomain(now time.Time) (*domain.Individual, error) {
	s := domain.Snapshot{
		ID:        domain.IndividualID(m.ID),
		Name:      m.Name,
		Energy:    m.Energy,
		MaxEnergy: m.MaxEnergy,
	}
	if m.SleepSince != nil {
		since := time.UnixMilli(*m.SleepSince).UTC()
		s.SleepSince = &since
	}
	ind, err := domain.RestoreIndividual(s, now)
	if err != nil {
		return nil, fmt.Errorf("corrupt individual row %s: %w", m.ID, err)
	}
	return ind, nil
}

// EventModel is a row of the domain_events table.
type EventModel struct {
	ID          int64
	AggregateID string
	Type        string
	Payload     string
	OccurredAt  int64 // Unix milliseconds
}

func toEventModel(e domain.Event) (*EventModel, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Type(), err)
	}
	return &EventModel{
		AggregateID: e.AggregateID().String(),
		Type:        string(e.Type()),
		Payload:     string(payload),
		OccurredAt:  e.OccurredAt().UnixMilli(),
	}, nil
}

// UnknownEventTypeError is returned when a stored event has a type this
// build does not know how to decode.
type UnknownEventTypeError struct {
	Type string
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type: %q", e.Type)
}

func (m *EventModel) toDomain() (domain.Event, error) {
	switch domain.EventType(m.Type) {
	case domain.EventIndividualCreated:
		return decode[domain.IndividualCreated](m)
	case domain.EventIndividualStartedToSleep:
		return decode[domain.IndividualStartedToSleep](m)
	case domain.EventIndividualEndedSleep:
		return decode[domain.IndividualEndedSleep](m)
	case domain.EventIndividualEnergyChanged:
		return decode[domain.IndividualEnergyChanged](m)
	case domain.EventIndividualCollapsed:
		return decode[domain.IndividualCollapsed](m)
	default:
		return nil, &UnknownEventTypeError{Type: m.Type}
	}
}

func decode[E domain.Event](m *EventModel) (domain.Event, error) {
	var e E
	if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s event %d: %w", m.Type, m.ID, err)
	}
	return e, nil
}
