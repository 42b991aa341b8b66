package energy

import (
	"errors"
	"math"

	"github.com/yourname/smartcoach/internal"
)

const (
	RollingWindowDays  = 7
	LearningWindowDays = 14
	WindowStepDays     = 7
	MinEntries         = 2
	MinWindowEntries   = 7
	LearningRate       = 0.5

	MinTDEE = 1000.0
	MaxTDEE = 6000.0
)

var ErrInsufficientData = errors.New("energy: not enough complete entries")

const (
	SourcePrior    = "prior"
	SourceLog      = "log"
	SourceBlended  = "blended"
	SourceAdaptive = "adaptive"
)

type Estimate struct {
	Value    float64 `json:"value"`
	Learning bool    `json:"learning"`
	Windows  int     `json:"windows"`
	Source   string  `json:"source"`
}

// EstimateTDEE learns expenditure from the energy balance of complete
// entries. Each learning window moves the estimate towards the window's
// observed expenditure, scaled by how completely the window was logged.
func EstimateTDEE(entries []internal.DayEntry, unit internal.WeightUnit, prior *float64) (Estimate, error) {
	complete, _ := SplitEntries(SortEntries(entries))
	if len(complete) < MinEntries {
		if prior == nil {
			return Estimate{}, ErrInsufficientData
		}
		return Estimate{Value: clampTDEE(*prior), Learning: true, Source: SourcePrior}, nil
	}

	perUnit := CaloriesPerUnit(unit)
	windows := learningWindows(complete)
	if len(windows) == 0 {
		raw := rawTDEE(complete, perUnit)
		if prior == nil {
			return Estimate{Value: clampTDEE(raw), Learning: true, Source: SourceLog}, nil
		}
		w := LearningRate * math.Min(1, float64(len(complete))/LearningWindowDays)
		return Estimate{Value: clampTDEE(*prior + w*(raw-*prior)), Learning: true, Source: SourceBlended}, nil
	}

	count := len(windows)
	var est float64
	if prior != nil {
		est = *prior
	} else {
		est = rawTDEE(windows[0], perUnit)
		windows = windows[1:]
	}
	for _, win := range windows {
		c := math.Min(1, float64(len(win))/LearningWindowDays)
		est += LearningRate * c * (rawTDEE(win, perUnit) - est)
	}
	return Estimate{
		Value:   clampTDEE(est),
		Windows: count,
		Source:  SourceAdaptive,
	}, nil
}

// learningWindows slices sorted complete entries into overlapping windows
// that lie entirely inside the logged range.
func learningWindows(complete []internal.DayEntry) [][]internal.DayEntry {
	if len(complete) == 0 {
		return nil
	}
	first := DayNumber(complete[0].Date)
	last := DayNumber(complete[len(complete)-1].Date)
	var out [][]internal.DayEntry
	for start := first; start+LearningWindowDays-1 <= last; start += WindowStepDays {
		end := start + LearningWindowDays - 1
		var win []internal.DayEntry
		for _, e := range complete {
			d := DayNumber(e.Date)
			if d >= start && d <= end {
				win = append(win, e)
			}
		}
		if len(win) >= MinWindowEntries {
			out = append(out, win)
		}
	}
	return out
}

// rawTDEE is mean intake minus the energy implied by the weight trend.
func rawTDEE(complete []internal.DayEntry, perUnit float64) float64 {
	var calSum float64
	for _, e := range complete {
		calSum += *e.Calories
	}
	mean := calSum / float64(len(complete))
	return mean - WeightSlope(complete)*perUnit
}

// WeightSlope is the least-squares slope of weight over day number, in
// weight units per day. Entries without weight are ignored.
func WeightSlope(entries []internal.DayEntry) float64 {
	var xs, ys []float64
	for _, e := range entries {
		if hasWeight(e) {
			xs = append(xs, float64(DayNumber(e.Date)))
			ys = append(ys, *e.Weight)
		}
	}
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n
	var cov, varX float64
	for i := range xs {
		dx := xs[i] - mx
		cov += dx * (ys[i] - my)
		varX += dx * dx
	}
	if varX == 0 {
		return 0
	}
	return cov / varX
}

func clampTDEE(v float64) float64 {
	return math.Max(MinTDEE, math.Min(MaxTDEE, v))
}
