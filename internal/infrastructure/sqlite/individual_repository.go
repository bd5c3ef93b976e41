package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/log"
)

// individualRepository implements domain.IndividualRepository using SQLite.
type individualRepository struct {
	db    *sql.DB
	clock domain.Clock
}

func newIndividualRepository(db *sql.DB, clock domain.Clock) *individualRepository {
	return &individualRepository{db: db, clock: clock}
}

var _ domain.IndividualRepository = (*individualRepository)(nil)

const individualColumns = `id, name, energy, max_energy, sleep_since, created_at, updated_at`

// Save inserts the individual or replaces its mutable columns. created_at is
// kept from the first insert.
func (r *individualRepository) Save(ctx context.Context, ind *domain.Individual) error {
	m := toIndividualModel(ind, r.clock.Now())

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO individuals (`+individualColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   energy = excluded.energy,
		   max_energy = excluded.max_energy,
		   sleep_since = excluded.sleep_since,
		   updated_at = excluded.updated_at`,
		m.ID, m.Name, m.Energy, m.MaxEnergy, m.SleepSince, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save individual: %w", err)
	}
	log.Debug(log.CatDB, "Saved individual", "id", m.ID, "energy", m.Energy, "sleeping", m.SleepSince != nil)
	return nil
}

// FindByID returns IndividualNotFoundError if no row has the id.
func (r *individualRepository) FindByID(ctx context.Context, id domain.IndividualID) (*domain.Individual, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+individualColumns+` FROM individuals WHERE id = ?`, id.String())

	m, err := scanIndividual(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.IndividualNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find individual: %w", err)
	}
	return m.toDomain(r.clock.Now())
}

// List returns all individuals ordered by name, then id.
func (r *individualRepository) List(ctx context.Context) (_ []*domain.Individual, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+individualColumns+` FROM individuals ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list individuals: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	now := r.clock.Now()
	var result []*domain.Individual
	for rows.Next() {
		m, err := scanIndividual(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan individual: %w", err)
		}
		ind, err := m.toDomain(now)
		if err != nil {
			return nil, err
		}
		result = append(result, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate individuals: %w", err)
	}
	return result, nil
}

// Delete returns IndividualNotFoundError if no row has the id. Stored events
// are kept.
func (r *individualRepository) Delete(ctx context.Context, id domain.IndividualID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM individuals WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete individual: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &domain.IndividualNotFoundError{ID: id}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIndividual(s scanner) (*IndividualModel, error) {
	var m IndividualModel
	err := s.Scan(&m.ID, &m.Name, &m.Energy, &m.MaxEnergy, &m.SleepSince, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
