package energy

import (
	"fmt"
	"strings"

	"github.com/yourname/smartcoach/internal"
)

const (
	lbPerKg = 1 / 0.45359237

	CaloriesPerLb = 3500.0
	CaloriesPerKg = CaloriesPerLb * lbPerKg
)

func ParseUnit(s string) (internal.WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lb", "lbs":
		return internal.UnitLb, nil
	case "kg":
		return internal.UnitKg, nil
	default:
		return "", fmt.Errorf("invalid weight unit %q (use lb or kg)", s)
	}
}

// CaloriesPerUnit is the energy stored in one unit of body mass.
func CaloriesPerUnit(unit internal.WeightUnit) float64 {
	if unit == internal.UnitKg {
		return CaloriesPerKg
	}
	return CaloriesPerLb
}

func ToKg(weight float64, unit internal.WeightUnit) float64 {
	if unit == internal.UnitKg {
		return weight
	}
	return weight / lbPerKg
}

// RollingWeights averages the weights at the start and the end of the log.
// Both windows shrink to half the span when they would otherwise overlap.
func RollingWeights(entries []internal.DayEntry) (start, current float64, ok bool) {
	weighed := weighedEntries(entries)
	if len(weighed) == 0 {
		return 0, 0, false
	}
	window := rollingWindow(Span(weighed))
	first := DayNumber(weighed[0].Date)
	last := DayNumber(weighed[len(weighed)-1].Date)

	var startSum, curSum float64
	var startN, curN int
	for _, e := range weighed {
		d := DayNumber(e.Date)
		if d < first+int64(window) {
			startSum += *e.Weight
			startN++
		}
		if d > last-int64(window) {
			curSum += *e.Weight
			curN++
		}
	}
	return startSum / float64(startN), curSum / float64(curN), true
}

// rollingDistance is the number of days between the midpoints of the two
// windows used by RollingWeights.
func rollingDistance(entries []internal.DayEntry) float64 {
	span := Span(weighedEntries(entries))
	if span <= 1 {
		return 0
	}
	return float64(span - rollingWindow(span))
}

func rollingWindow(span int) int {
	if span >= 2*RollingWindowDays {
		return RollingWindowDays
	}
	if span/2 < 1 {
		return 1
	}
	return span / 2
}

func weighedEntries(entries []internal.DayEntry) []internal.DayEntry {
	var out []internal.DayEntry
	for _, e := range SortEntries(entries) {
		if hasWeight(e) {
			out = append(out, e)
		}
	}
	return out
}
