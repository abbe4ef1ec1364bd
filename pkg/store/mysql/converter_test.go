package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statustracker/pkg/attendance"
)

func TestFromSnapshot(t *testing.T) {
	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	snap, err := attendance.NewSnapshot(ts, []attendance.Observation{
		{Person: "Carol", State: attendance.StateOffDuty},
		{Person: "Alice", State: attendance.StateOnDuty},
		{Person: "Bob", State: attendance.StateOnDuty},
	})
	require.NoError(t, err)

	rows := FromSnapshot(snap)
	require.Len(t, rows, 3)

	assert.Equal(t, "Alice", rows[0].PersonKey)
	assert.Equal(t, "Bob", rows[1].PersonKey)
	assert.Equal(t, "Carol", rows[2].PersonKey)
	assert.Equal(t, attendance.OnDutyLabel, rows[0].State)
	assert.Equal(t, attendance.OffDutyLabel, rows[2].State)
	for _, row := range rows {
		assert.True(t, row.ObservedAt.Equal(ts))
		assert.Zero(t, row.ID)
	}
}

func TestFromSnapshot_Empty(t *testing.T) {
	assert.Empty(t, FromSnapshot(attendance.Snapshot{}))
}
