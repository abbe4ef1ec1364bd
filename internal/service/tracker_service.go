package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"statustracker/pkg/attendance"
	"statustracker/pkg/interfaces"
	"statustracker/pkg/logger"
	"statustracker/pkg/report"
	"statustracker/pkg/store/parquet"
)

// ErrUpdateInProgress is returned when another writer holds the table lock.
var ErrUpdateInProgress = errors.New("another update of this table is in progress")

// ErrNoData is returned by Report when nothing was recorded for the year yet.
var ErrNoData = errors.New("no data yet")

// LockFactory returns the lock guarding the table file at path.
type LockFactory func(path string) interfaces.UpdateLock

// UpdateResult describes one successful update.
type UpdateResult struct {
	Year      int
	Path      string
	Timestamp time.Time
	Persons   int
	Rows      int
	Columns   int
}

// TrackerService records snapshots and reports on the accumulated tables
type TrackerService struct {
	source  interfaces.StatusSource
	store   interfaces.TableStore
	lockFor LockFactory
	mirror  interfaces.ObservationMirror
	now     func() time.Time
}

// NewTrackerService creates a new tracker service
func NewTrackerService(source interfaces.StatusSource, store interfaces.TableStore) *TrackerService {
	return &TrackerService{
		source: source,
		store:  store,
		now:    time.Now,
	}
}

// SetLockFactory enables writer serialization
func (s *TrackerService) SetLockFactory(lockFor LockFactory) {
	s.lockFor = lockFor
}

// SetMirror sets the secondary sink for recorded snapshots
func (s *TrackerService) SetMirror(mirror interfaces.ObservationMirror) {
	s.mirror = mirror
}

// Update fetches the current statuses, merges them into the table of the
// current year and persists the result. Nothing is written unless the merge
// succeeded.
func (s *TrackerService) Update(ctx context.Context) (*UpdateResult, error) {
	capturedAt := attendance.WallClock(s.now())
	year := capturedAt.Year()
	path := s.store.PathForYear(year)

	if s.lockFor != nil {
		lock := s.lockFor(path)
		acquired, err := lock.TryLock(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire update lock: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("%w: %s", ErrUpdateInProgress, path)
		}
		defer func() {
			if err := lock.Unlock(ctx); err != nil {
				logger.WarnCtx(ctx, "failed to release update lock for %s: %v", path, err)
			}
		}()
	}

	table, err := s.store.LoadYear(ctx, year)
	if err != nil {
		if !errors.Is(err, parquet.ErrNotFound) {
			return nil, err
		}
		logger.InfoCtx(ctx, "no table at %s yet, starting empty", path)
		table = attendance.NewTable()
	}

	observations, err := s.source.FetchStatuses(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := attendance.NewSnapshot(capturedAt, observations)
	if err != nil {
		return nil, err
	}

	merged, err := attendance.Merge(table, snap)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveYear(ctx, year, merged); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "recorded %d persons at %s into %s (%d rows, %d columns)",
		len(snap.States), attendance.FormatTimestamp(snap.Timestamp), path, merged.NumRows(), merged.NumColumns())

	if s.mirror != nil {
		if err := s.mirror.SaveSnapshot(ctx, snap); err != nil {
			logger.WarnCtx(ctx, "failed to mirror snapshot %s: %v", attendance.FormatTimestamp(snap.Timestamp), err)
		}
	}

	return &UpdateResult{
		Year:      year,
		Path:      path,
		Timestamp: snap.Timestamp,
		Persons:   len(snap.States),
		Rows:      merged.NumRows(),
		Columns:   merged.NumColumns(),
	}, nil
}

// Summarize loads the table of year and computes its summary rows.
func (s *TrackerService) Summarize(ctx context.Context, year int) ([]attendance.SummaryRow, error) {
	table, err := s.store.LoadYear(ctx, year)
	if err != nil {
		if errors.Is(err, parquet.ErrNotFound) {
			return nil, fmt.Errorf("%w for %d", ErrNoData, year)
		}
		return nil, err
	}
	return attendance.Summarize(table), nil
}

// Report renders the summary of year to w.
func (s *TrackerService) Report(ctx context.Context, year int, w io.Writer) error {
	rows, err := s.Summarize(ctx, year)
	if err != nil {
		return err
	}
	logger.DebugCtx(ctx, "rendering %d summary rows for %d", len(rows), year)
	return report.Render(w, rows)
}

// CurrentYear returns the year Update writes to right now.
func (s *TrackerService) CurrentYear() int {
	return attendance.WallClock(s.now()).Year()
}
