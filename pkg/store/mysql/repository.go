package mysql

import (
	"context"
	"fmt"
)

// Repository aggregates all MySQL repositories
type Repository struct {
	ds *Datastore

	Observation *ObservationRepository
}

// NewRepository creates a new MySQL repository with all sub-repositories
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}
	return newRepository(ds), nil
}

func newRepository(ds *Datastore) *Repository {
	return &Repository{
		ds:          ds,
		Observation: NewObservationRepository(ds),
	}
}

// Migrate creates or updates the mirror tables
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.ds.DB(ctx).AutoMigrate(&StatusObservation{}); err != nil {
		return fmt.Errorf("failed to migrate mirror tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}
