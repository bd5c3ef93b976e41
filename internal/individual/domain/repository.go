package domain

import "context"

// IndividualRepository persists individuals.
type IndividualRepository interface {
	// Save inserts or replaces the individual.
	Save(ctx context.Context, individual *Individual) error

	// FindByID returns IndividualNotFoundError if no individual has the id.
	FindByID(ctx context.Context, id IndividualID) (*Individual, error)

	// List returns all individuals ordered by name.
	List(ctx context.Context) ([]*Individual, error)

	// Delete returns IndividualNotFoundError if no individual has the id.
	Delete(ctx context.Context, id IndividualID) error
}
