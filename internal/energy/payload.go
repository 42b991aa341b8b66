package energy

import (
	"math"
	"time"

	"github.com/yourname/smartcoach/internal"
)

// BuildPayload computes the statistics, estimate, goal range and feedback
// for a log. prior seeds the estimate and may be nil.
func BuildPayload(log internal.NutritionLog, prior *float64, now time.Time) internal.EnergyPayload {
	unit := log.WeightUnit
	if unit == "" {
		unit = internal.UnitLb
	}
	entries := SortEntries(log.DayEntries)
	st := Stats(entries)

	p := internal.EnergyPayload{
		LogID:             log.ID,
		MinCalories:       round(st.MinCalories, 1),
		AvgCalories:       round(st.AvgCalories, 1),
		MaxCalories:       round(st.MaxCalories, 1),
		MinWeight:         round(st.MinWeight, 2),
		AvgWeight:         round(st.AvgWeight, 2),
		MaxWeight:         round(st.MaxWeight, 2),
		TotalEntries:      len(entries),
		CompleteEntries:   st.CompleteEntries,
		IncompleteEntries: st.IncompleteEntries,
		DaysTracked:       Span(entries),
		Analysis:          []internal.FeedbackCategory{},
		GeneratedAt:       now,
	}

	start, current, hasWeights := RollingWeights(entries)
	if hasWeights {
		p.StartWeight = round(start, 2)
		p.CurrentWeight = round(current, 2)
		p.WeightChange = round(current-start, 2)
		if d := rollingDistance(entries); d >= 1 {
			p.WeeklyWeightChange = round((current-start)/d*7, 2)
		}
	}

	in := FeedbackInput{
		Goal:          log.Goal,
		Unit:          unit,
		TargetRate:    log.TargetRate,
		Entries:       entries,
		CurrentWeight: current,
		WeeklyChange:  p.WeeklyWeightChange,
		HasWeights:    hasWeights,
	}

	est, err := EstimateTDEE(entries, unit, prior)
	if err != nil {
		p.Status = internal.StatusInsufficientData
		in.Status = p.Status
		p.Analysis = append(p.Analysis, Feedback(in)...)
		return p
	}

	p.Status = internal.StatusReady
	if est.Learning {
		p.Status = internal.StatusLearning
	}
	p.EstimatedTDEE = math.Round(est.Value)
	in.Status = p.Status
	in.Estimate = &est

	if bounds, err := GoalIntakeBoundaries(est.Value, log.Goal, log.TargetRate, unit); err == nil {
		p.GoalIntakeRange = bounds
		in.GoalRange = &bounds
	}
	p.Analysis = append(p.Analysis, Feedback(in)...)
	return p
}
