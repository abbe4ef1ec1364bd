package attendance

import (
	"math"
	"sort"
	"time"
)

const (
	weekendBeginDay  = time.Friday
	weekendBeginHour = 18
)

// SummaryRow holds the derived ratios of one person. A ratio whose
// denominator is zero is NaN.
type SummaryRow struct {
	Person        string
	TotalOnDuty   float64
	WeekendOnDuty float64
}

// Defined reports whether a ratio could be computed.
func Defined(pct float64) bool {
	return !math.IsNaN(pct)
}

// InWeekendWindow reports whether ts falls between Friday 18:00 and the end
// of Sunday, using the wall-clock fields of ts.
func InWeekendWindow(ts time.Time) bool {
	switch ts.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	case weekendBeginDay:
		return ts.Hour() >= weekendBeginHour
	default:
		return false
	}
}

// ratio accumulates on-duty and present counts for one person.
type ratio struct {
	onDuty  int
	present int
}

func (r *ratio) add(s State) {
	if !s.Present() {
		return
	}
	r.present++
	if s == StateOnDuty {
		r.onDuty++
	}
}

func (r ratio) pct() float64 {
	if r.present == 0 {
		return math.NaN()
	}
	return 100 * float64(r.onDuty) / float64(r.present)
}

// Summarize computes total and weekend on-duty percentages for every person
// in t, ordered by total percentage descending. Ties keep the row order of
// the table.
func Summarize(t *Table) []SummaryRow {
	people := t.People()
	if len(people) == 0 {
		return []SummaryRow{}
	}

	total := make([]ratio, len(people))
	weekend := make([]ratio, len(people))

	columns := t.Columns()
	for c, column := range t.Transpose() {
		inWindow := InWeekendWindow(columns[c])
		for r, s := range column {
			total[r].add(s)
			if inWindow {
				weekend[r].add(s)
			}
		}
	}

	rows := make([]SummaryRow, len(people))
	for i, p := range people {
		rows[i] = SummaryRow{
			Person:        p,
			TotalOnDuty:   total[i].pct(),
			WeekendOnDuty: weekend[i].pct(),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].TotalOnDuty, rows[j].TotalOnDuty
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		return a > b
	})

	return rows
}
