package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/log"
)

// EventStore is an append-only log of domain events. Each Publish call is
// written in one transaction.
type EventStore struct {
	db *sql.DB
}

// Publish appends events in order.
func (s *EventStore) Publish(ctx context.Context, events ...domain.Event) (err error) {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO domain_events (aggregate_id, type, payload, occurred_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer func() {
		err = errors.Join(err, stmt.Close())
	}()

	for _, e := range events {
		m, err := toEventModel(e)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, m.AggregateID, m.Type, m.Payload, m.OccurredAt); err != nil {
			return fmt.Errorf("failed to append %s event: %w", m.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	log.Debug(log.CatDB, "Appended events", "count", len(events), "aggregate", events[0].AggregateID())
	return nil
}

// ListByAggregate returns the events of one individual in append order.
func (s *EventStore) ListByAggregate(ctx context.Context, id domain.IndividualID) ([]domain.Event, error) {
	return s.query(ctx,
		`SELECT id, aggregate_id, type, payload, occurred_at FROM domain_events
		 WHERE aggregate_id = ? ORDER BY id`, id.String())
}

// ListRecent returns up to limit of the most recent events across all
// individuals, oldest first.
func (s *EventStore) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.query(ctx,
		`SELECT id, aggregate_id, type, payload, occurred_at FROM (
		   SELECT * FROM domain_events ORDER BY id DESC LIMIT ?
		 ) ORDER BY id`, limit)
}

func (s *EventStore) query(ctx context.Context, query string, args ...any) (_ []domain.Event, err error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	var events []domain.Event
	for rows.Next() {
		var m EventModel
		if err := rows.Scan(&m.ID, &m.AggregateID, &m.Type, &m.Payload, &m.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
