package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"statustracker/pkg/attendance"
)

// Column headers of the summary report.
const (
	HeaderName    = "Name"
	HeaderTotal   = "Total On-Duty"
	HeaderWeekend = "Weekend On-Duty"
)

// Render writes rows as an aligned text table. Undefined percentages are
// left blank.
func Render(w io.Writer, rows []attendance.SummaryRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", HeaderName, HeaderTotal, HeaderWeekend); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Person, FormatPercent(row.TotalOnDuty), FormatPercent(row.WeekendOnDuty)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// FormatPercent renders pct with two decimals, or "" when it is undefined.
func FormatPercent(pct float64) string {
	if !attendance.Defined(pct) {
		return ""
	}
	return fmt.Sprintf("%.2f", pct)
}
