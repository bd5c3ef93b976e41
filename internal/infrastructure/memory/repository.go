// Package memory provides in-process implementations of the individual
// repository backed by github.com/patrickmn/go-cache.
package memory

import (
	"context"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/log"
)

// Repository stores individuals as snapshots so callers never share mutable
// state with the store. Entries never expire.
type Repository struct {
	items *cache.Cache
	clock domain.Clock
}

// NewRepository creates an empty in-memory repository. A nil clock uses the
// system clock when restoring sleeping individuals.
func NewRepository(clock domain.Clock) *Repository {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Repository{
		items: cache.New(cache.NoExpiration, 0),
		clock: clock,
	}
}

// Save stores or replaces the individual.
func (r *Repository) Save(_ context.Context, ind *domain.Individual) error {
	r.items.Set(ind.ID().String(), ind.Snapshot(), cache.NoExpiration)
	log.Debug(log.CatDB, "Saved individual", "id", ind.ID(), "store", "memory")
	return nil
}

// FindByID returns the individual or an IndividualNotFoundError.
func (r *Repository) FindByID(_ context.Context, id domain.IndividualID) (*domain.Individual, error) {
	v, ok := r.items.Get(id.String())
	if !ok {
		return nil, &domain.IndividualNotFoundError{ID: id}
	}
	return domain.RestoreIndividual(v.(domain.Snapshot), r.clock.Now())
}

// List returns all individuals ordered by name, then id.
func (r *Repository) List(_ context.Context) ([]*domain.Individual, error) {
	items := r.items.Items()
	snapshots := make([]domain.Snapshot, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, item.Object.(domain.Snapshot))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].Name != snapshots[j].Name {
			return snapshots[i].Name < snapshots[j].Name
		}
		return snapshots[i].ID < snapshots[j].ID
	})

	now := r.clock.Now()
	result := make([]*domain.Individual, 0, len(snapshots))
	for _, s := range snapshots {
		ind, err := domain.RestoreIndividual(s, now)
		if err != nil {
			return nil, err
		}
		result = append(result, ind)
	}
	return result, nil
}

// Delete removes the individual. Deleting an unknown id returns an
// IndividualNotFoundError.
func (r *Repository) Delete(_ context.Context, id domain.IndividualID) error {
	if _, ok := r.items.Get(id.String()); !ok {
		return &domain.IndividualNotFoundError{ID: id}
	}
	r.items.Delete(id.String())
	return nil
}

var _ domain.IndividualRepository = (*Repository)(nil)

// CachedRepository fronts a slower repository with a read-through cache.
// Writes go to the backing store first and then refresh the cache.
type CachedRepository struct {
	next  domain.IndividualRepository
	cache *cache.Cache
	clock domain.Clock
}

// NewCachedRepository wraps next. Cached entries expire after ttl; a
// non-positive ttl keeps them until they are overwritten or deleted.
func NewCachedRepository(next domain.IndividualRepository, ttl time.Duration, clock domain.Clock) *CachedRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	cleanup := ttl * 2
	if ttl == cache.NoExpiration {
		cleanup = 0
	}
	return &CachedRepository{
		next:  next,
		cache: cache.New(ttl, cleanup),
		clock: clock,
	}
}

// Save writes through to the backing store.
func (r *CachedRepository) Save(ctx context.Context, ind *domain.Individual) error {
	if err := r.next.Save(ctx, ind); err != nil {
		r.cache.Delete(ind.ID().String())
		return err
	}
	r.cache.SetDefault(ind.ID().String(), ind.Snapshot())
	return nil
}

// FindByID serves from cache when possible.
func (r *CachedRepository) FindByID(ctx context.Context, id domain.IndividualID) (*domain.Individual, error) {
	if v, ok := r.cache.Get(id.String()); ok {
		log.Debug(log.CatDB, "Cache hit", "id", id)
		return domain.RestoreIndividual(v.(domain.Snapshot), r.clock.Now())
	}

	ind, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(id.String(), ind.Snapshot())
	return ind, nil
}

// List always reads the backing store.
func (r *CachedRepository) List(ctx context.Context) ([]*domain.Individual, error) {
	return r.next.List(ctx)
}

// Delete removes the individual from the backing store and the cache.
func (r *CachedRepository) Delete(ctx context.Context, id domain.IndividualID) error {
	r.cache.Delete(id.String())
	return r.next.Delete(ctx, id)
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up.
func (r *CachedRepository) Len() int {
	return r.cache.ItemCount()
}

var _ domain.IndividualRepository = (*CachedRepository)(nil)
