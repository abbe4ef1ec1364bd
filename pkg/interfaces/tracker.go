package interfaces

import (
	"context"

	"statustracker/pkg/attendance"
)

// StatusSource returns the current state of every member of the organization.
type StatusSource interface {
	FetchStatuses(ctx context.Context) ([]attendance.Observation, error)
}

// TableStore persists one accumulated table per calendar year.
type TableStore interface {
	LoadYear(ctx context.Context, year int) (*attendance.Table, error)
	SaveYear(ctx context.Context, year int, table *attendance.Table) error
	PathForYear(year int) string
}

// UpdateLock serializes writers of the same table.
type UpdateLock interface {
	// TryLock returns false without error when another writer holds the lock.
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// ObservationMirror receives every snapshot after it was persisted.
type ObservationMirror interface {
	SaveSnapshot(ctx context.Context, snap attendance.Snapshot) error
}
