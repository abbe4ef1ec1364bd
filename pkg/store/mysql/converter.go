package mysql

import (
	"sort"

	"statustracker/pkg/attendance"
)

// FromSnapshot converts a snapshot into observation rows ordered by person key
func FromSnapshot(snap attendance.Snapshot) []*StatusObservation {
	people := make([]string, 0, len(snap.States))
	for p := range snap.States {
		people = append(people, p)
	}
	sort.Strings(people)

	rows := make([]*StatusObservation, 0, len(people))
	for _, p := range people {
		state := snap.States[p]
		if !state.Present() {
			continue
		}
		rows = append(rows, &StatusObservation{
			PersonKey:  p,
			ObservedAt: snap.Timestamp,
			State:      state.String(),
		})
	}
	return rows
}
