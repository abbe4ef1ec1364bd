package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"statustracker/pkg/attendance"
)

const observationBatchSize = 200

// ObservationRepository handles observation persistence in MySQL
type ObservationRepository struct {
	ds *Datastore
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(ds *Datastore) *ObservationRepository {
	return &ObservationRepository{ds: ds}
}

// SaveSnapshot stores every observation of snap in one transaction. Rows
// already mirrored for the same person and capture time are left alone.
func (r *ObservationRepository) SaveSnapshot(ctx context.Context, snap attendance.Snapshot) error {
	rows := FromSnapshot(snap)
	if len(rows) == 0 {
		return nil
	}

	err := r.ds.ExecTx(ctx, func(ctx context.Context) error {
		return r.ds.DB(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(rows, observationBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to mirror snapshot %s: %w", attendance.FormatTimestamp(snap.Timestamp), err)
	}
	return nil
}
