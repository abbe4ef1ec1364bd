// Package attendance accumulates on-duty snapshots into a wide person × time
// table and derives attendance ratios from it.
package attendance

import (
	"errors"
	"fmt"
	"time"
)

// State is the value of one cell in the accumulated table.
type State uint8

const (
	// StateAbsent marks a person that was not observed at a timestamp.
	// It is never counted in any ratio.
	StateAbsent State = iota
	StateOnDuty
	StateOffDuty
)

// Cell labels as written to the table file
const (
	OnDutyLabel  = "On Duty"
	OffDutyLabel = "Off Duty"
)

// TimestampLayout is the column name format of timestamp columns.
const TimestampLayout = "2006-01-02T15:04:05"

// ErrMalformedSnapshot marks a snapshot or cell value that cannot enter a table.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// String returns the file label of s. Absent cells have no label.
func (s State) String() string {
	switch s {
	case StateOnDuty:
		return OnDutyLabel
	case StateOffDuty:
		return OffDutyLabel
	default:
		return ""
	}
}

// Present reports whether the cell holds an observation.
func (s State) Present() bool {
	return s == StateOnDuty || s == StateOffDuty
}

// ParseState converts a file label back into a State.
func ParseState(label string) (State, error) {
	switch label {
	case OnDutyLabel:
		return StateOnDuty, nil
	case OffDutyLabel:
		return StateOffDuty, nil
	default:
		return StateAbsent, fmt.Errorf("%w: unknown state label %q", ErrMalformedSnapshot, label)
	}
}

// Observation is one person's state as reported by the status source.
type Observation struct {
	Person string
	State  State
}

// Snapshot is the set of observations captured at one instant.
type Snapshot struct {
	Timestamp time.Time
	States    map[string]State
}

// NewSnapshot validates observations and builds a snapshot at ts.
func NewSnapshot(ts time.Time, observations []Observation) (Snapshot, error) {
	if ts.IsZero() {
		return Snapshot{}, fmt.Errorf("%w: zero timestamp", ErrMalformedSnapshot)
	}
	if len(observations) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no persons", ErrMalformedSnapshot)
	}

	states := make(map[string]State, len(observations))
	for _, o := range observations {
		if o.Person == "" {
			return Snapshot{}, fmt.Errorf("%w: empty person key", ErrMalformedSnapshot)
		}
		if !o.State.Present() {
			return Snapshot{}, fmt.Errorf("%w: %s has no state", ErrMalformedSnapshot, o.Person)
		}
		if _, dup := states[o.Person]; dup {
			return Snapshot{}, fmt.Errorf("%w: duplicate person %s", ErrMalformedSnapshot, o.Person)
		}
		states[o.Person] = o.State
	}

	return Snapshot{Timestamp: WallClock(ts), States: states}, nil
}

// WallClock drops sub-second precision and the zone of t while keeping its
// wall-clock fields, so the value survives a trip through TimestampLayout.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// FormatTimestamp renders a column key.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a column key.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
