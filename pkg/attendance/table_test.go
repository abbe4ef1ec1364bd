package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) time.Time {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func snapshot(t *testing.T, ts string, obs map[string]State) Snapshot {
	t.Helper()
	list := make([]Observation, 0, len(obs))
	for p, s := range obs {
		list = append(list, Observation{Person: p, State: s})
	}
	snap, err := NewSnapshot(at(ts), list)
	require.NoError(t, err)
	return snap
}

func TestNewSnapshot_Malformed(t *testing.T) {
	ts := at("2024-01-05T10:00:00")

	tests := []struct {
		name string
		ts   time.Time
		obs  []Observation
	}{
		{name: "no observations", ts: ts, obs: nil},
		{name: "zero timestamp", ts: time.Time{}, obs: []Observation{{Person: "Alice", State: StateOnDuty}}},
		{name: "empty person", ts: ts, obs: []Observation{{Person: "", State: StateOnDuty}}},
		{name: "absent state", ts: ts, obs: []Observation{{Person: "Alice", State: StateAbsent}}},
		{
			name: "duplicate person",
			ts:   ts,
			obs: []Observation{
				{Person: "Alice", State: StateOnDuty},
				{Person: "Alice", State: StateOffDuty},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshot(tt.ts, tt.obs)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestNewSnapshot_TruncatesToWallClockSeconds(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 5, 18, 0, 0, 999_000_000, loc)

	snap, err := NewSnapshot(ts, []Observation{{Person: "Alice", State: StateOnDuty}})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05T18:00:00", FormatTimestamp(snap.Timestamp))
	assert.Equal(t, time.UTC, snap.Timestamp.Location())
}

func TestMerge_IntoEmpty(t *testing.T) {
	snap := snapshot(t, "2024-01-05T10:00:00", map[string]State{
		"Bob":   StateOffDuty,
		"Alice": StateOnDuty,
	})

	out, err := Merge(NewTable(), snap)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob"}, out.People())
	assert.Equal(t, 1, out.NumColumns())
	assert.Equal(t, StateOnDuty, out.Cell("Alice", snap.Timestamp))
	assert.Equal(t, StateOffDuty, out.Cell("Bob", snap.Timestamp))
}

func TestMerge_NilTable(t *testing.T) {
	snap := snapshot(t, "2024-01-05T10:00:00", map[string]State{"Alice": StateOnDuty})

	out, err := Merge(nil, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, 1, out.NumColumns())
}

func TestMerge_FullOuterJoin(t *testing.T) {
	first := snapshot(t, "2024-01-05T10:00:00", map[string]State{
		"Alice": StateOnDuty,
		"Bob":   StateOffDuty,
	})
	second := snapshot(t, "2024-01-06T12:00:00", map[string]State{
		"Alice": StateOffDuty,
		"Carol": StateOnDuty,
	})

	acc, err := Merge(nil, first)
	require.NoError(t, err)
	out, err := Merge(acc, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, out.People())
	assert.Equal(t, []time.Time{first.Timestamp, second.Timestamp}, out.Columns())

	alice, ok := out.Row("Alice")
	require.True(t, ok)
	assert.Equal(t, []State{StateOnDuty, StateOffDuty}, alice)

	bob, _ := out.Row("Bob")
	assert.Equal(t, []State{StateOffDuty, StateAbsent}, bob)

	carol, _ := out.Row("Carol")
	assert.Equal(t, []State{StateAbsent, StateOnDuty}, carol)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	first := snapshot(t, "2024-01-05T10:00:00", map[string]State{"Alice": StateOnDuty})
	second := snapshot(t, "2024-01-05T11:00:00", map[string]State{"Bob": StateOnDuty})

	acc, err := Merge(nil, first)
	require.NoError(t, err)

	_, err = Merge(acc, second)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice"}, acc.People())
	assert.Equal(t, 1, acc.NumColumns())
	row, _ := acc.Row("Alice")
	assert.Equal(t, []State{StateOnDuty}, row)
}

func TestMerge_Errors(t *testing.T) {
	first := snapshot(t, "2024-01-05T10:00:00", map[string]State{"Alice": StateOnDuty})
	acc, err := Merge(nil, first)
	require.NoError(t, err)

	t.Run("empty snapshot", func(t *testing.T) {
		_, err := Merge(acc, Snapshot{Timestamp: at("2024-01-05T11:00:00")})
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		again := snapshot(t, "2024-01-05T10:00:00", map[string]State{"Bob": StateOnDuty})
		_, err := Merge(acc, again)
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("absent observation", func(t *testing.T) {
		bad := Snapshot{
			Timestamp: at("2024-01-05T12:00:00"),
			States:    map[string]State{"Bob": StateAbsent},
		}
		_, err := Merge(acc, bad)
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	})
}

func TestBuildTable_Validation(t *testing.T) {
	cols := []time.Time{at("2024-01-05T10:00:00")}

	_, err := BuildTable([]string{"Alice", "Alice"}, cols, [][]State{{StateOnDuty}, {StateOnDuty}})
	assert.Error(t, err)

	_, err = BuildTable([]string{"Alice"}, append(cols, cols[0]), [][]State{{StateOnDuty, StateOnDuty}})
	assert.Error(t, err)

	_, err = BuildTable([]string{"Alice"}, cols, [][]State{{StateOnDuty, StateOffDuty}})
	assert.Error(t, err)

	_, err = BuildTable([]string{""}, cols, [][]State{{StateOnDuty}})
	assert.Error(t, err)

	table, err := BuildTable([]string{"Alice", "Bob"}, cols, [][]State{{StateOnDuty}, {StateAbsent}})
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, table.Cell("Bob", cols[0]))
	assert.Equal(t, StateAbsent, table.Cell("Nobody", cols[0]))
}

func TestTranspose(t *testing.T) {
	cols := []time.Time{at("2024-01-05T10:00:00"), at("2024-01-06T10:00:00")}
	table, err := BuildTable(
		[]string{"Alice", "Bob"},
		cols,
		[][]State{
			{StateOnDuty, StateOffDuty},
			{StateAbsent, StateOnDuty},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, [][]State{
		{StateOnDuty, StateAbsent},
		{StateOffDuty, StateOnDuty},
	}, table.Transpose())
}

func TestParseState(t *testing.T) {
	s, err := ParseState("On Duty")
	require.NoError(t, err)
	assert.Equal(t, StateOnDuty, s)

	s, err = ParseState("Off Duty")
	require.NoError(t, err)
	assert.Equal(t, StateOffDuty, s)

	_, err = ParseState("Einsatzbereit")
	assert.Error(t, err)

	assert.Equal(t, "", StateAbsent.String())
}
