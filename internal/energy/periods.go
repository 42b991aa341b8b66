package energy

import (
	"fmt"
	"time"

	"github.com/yourname/smartcoach/internal"
)

type PeriodKind string

const (
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
)

func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(s) {
	case "", PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("invalid period %q (use week or month)", s)
	}
}

// PeriodBounds returns the first and last day of the period containing t.
// Weeks start on Monday.
func PeriodBounds(t time.Time, kind PeriodKind) (time.Time, time.Time) {
	day := Truncate(t)
	if kind == PeriodMonth {
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := day.AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 6)
}

// Periods groups entries into weeks or months. Empty periods are skipped.
func Periods(entries []internal.DayEntry, kind PeriodKind) []internal.TimePeriod {
	var out []internal.TimePeriod
	for _, e := range SortEntries(entries) {
		start, end := PeriodBounds(e.Date, kind)
		if n := len(out); n > 0 && out[n-1].StartDate.Equal(start) {
			out[n-1].ListOfEntries = append(out[n-1].ListOfEntries, e)
			continue
		}
		out = append(out, internal.TimePeriod{
			StartDate:     start,
			EndDate:       end,
			ListOfEntries: []internal.DayEntry{e},
		})
	}
	for i := range out {
		out[i].Stats = Stats(out[i].ListOfEntries)
	}
	return out
}
