// Package energy estimates total daily energy expenditure from a nutrition
// log and turns the estimate into intake targets and feedback.
package energy

import (
	"math"
	"sort"
	"time"

	"github.com/yourname/smartcoach/internal"
)

const secondsPerDay = 24 * 60 * 60

// DayNumber returns the number of whole days between the Unix epoch and the
// UTC calendar day of t.
func DayNumber(t time.Time) int64 {
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int64(math.Floor(float64(d.Unix()) / secondsPerDay))
}

func DayFromNumber(n int64) time.Time {
	return time.Unix(n*secondsPerDay, 0).UTC()
}

// Truncate returns UTC midnight of t's calendar day.
func Truncate(t time.Time) time.Time {
	return DayFromNumber(DayNumber(t))
}

func hasWeight(e internal.DayEntry) bool {
	return e.Weight != nil && *e.Weight > 0
}

func hasCalories(e internal.DayEntry) bool {
	return e.Calories != nil && *e.Calories > 0
}

func Complete(e internal.DayEntry) bool {
	return hasWeight(e) && hasCalories(e)
}

func SplitEntries(entries []internal.DayEntry) (complete, incomplete []internal.DayEntry) {
	for _, e := range entries {
		if Complete(e) {
			complete = append(complete, e)
		} else {
			incomplete = append(incomplete, e)
		}
	}
	return complete, incomplete
}

// SortEntries returns a copy of entries ordered by date ascending.
func SortEntries(entries []internal.DayEntry) []internal.DayEntry {
	out := make([]internal.DayEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return DayNumber(out[i].Date) < DayNumber(out[j].Date)
	})
	return out
}

// Span is the inclusive number of days between the first and last entry.
// Entries must be sorted.
func Span(entries []internal.DayEntry) int {
	if len(entries) == 0 {
		return 0
	}
	return int(DayNumber(entries[len(entries)-1].Date)-DayNumber(entries[0].Date)) + 1
}

func Stats(entries []internal.DayEntry) internal.EntryStats {
	var st internal.EntryStats
	var calSum, weightSum float64
	var calN, weightN int
	for _, e := range entries {
		if Complete(e) {
			st.CompleteEntries++
		} else {
			st.IncompleteEntries++
		}
		if hasCalories(e) {
			c := *e.Calories
			if calN == 0 || c < st.MinCalories {
				st.MinCalories = c
			}
			if c > st.MaxCalories {
				st.MaxCalories = c
			}
			calSum += c
			calN++
		}
		if hasWeight(e) {
			w := *e.Weight
			if weightN == 0 || w < st.MinWeight {
				st.MinWeight = w
			}
			if w > st.MaxWeight {
				st.MaxWeight = w
			}
			weightSum += w
			weightN++
		}
	}
	if calN > 0 {
		st.AvgCalories = calSum / float64(calN)
	}
	if weightN > 0 {
		st.AvgWeight = weightSum / float64(weightN)
	}
	return st
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
