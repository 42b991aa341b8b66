package energy

import (
	"fmt"
	"math"

	"github.com/yourname/smartcoach/internal"
)

const (
	CategoryLogging  = "Logging"
	CategoryEstimate = "Estimate"
	CategoryWeight   = "Weight"
	CategoryIntake   = "Intake"

	maxMissingFraction = 0.2
	goodAdherence      = 0.8
	poorAdherence      = 0.5
)

type FeedbackInput struct {
	Goal          internal.LogGoal
	Unit          internal.WeightUnit
	TargetRate    float64
	Status        internal.PayloadStatus
	Estimate      *Estimate
	Entries       []internal.DayEntry // sorted
	CurrentWeight float64
	WeeklyChange  float64
	HasWeights    bool
	GoalRange     *internal.IntakeBoundaries
}

// Feedback produces the analysis attached to a payload. Categories without
// anything to say are left out.
func Feedback(in FeedbackInput) []internal.FeedbackCategory {
	var out []internal.FeedbackCategory
	add := func(name string, fb []internal.Feedback) {
		if len(fb) > 0 {
			out = append(out, internal.FeedbackCategory{Name: name, Feedback: fb})
		}
	}
	add(CategoryLogging, loggingFeedback(in))
	add(CategoryEstimate, estimateFeedback(in))
	add(CategoryWeight, weightFeedback(in))
	add(CategoryIntake, intakeFeedback(in))
	return out
}

func loggingFeedback(in FeedbackInput) []internal.Feedback {
	var fb []internal.Feedback
	complete, incomplete := SplitEntries(in.Entries)
	if len(incomplete) > 0 {
		fb = append(fb, internal.Feedback{
			Title:   "Incomplete entries",
			Message: fmt.Sprintf("%d of your %d entries are missing a weight or calorie value and are left out of your TDEE estimate.", len(incomplete), len(in.Entries)),
			Level:   internal.LevelWarning,
		})
	}
	span := Span(in.Entries)
	missing := span - len(in.Entries)
	if span > 0 && float64(missing) > maxMissingFraction*float64(span) {
		fb = append(fb, internal.Feedback{
			Title:   "Gaps in your log",
			Message: fmt.Sprintf("%d of the %d days in your log have no entry. Logging every day keeps your estimate accurate.", missing, span),
			Level:   internal.LevelWarning,
		})
	}
	if len(fb) == 0 && len(complete) >= MinEntries {
		fb = append(fb, internal.Feedback{
			Title:   "Consistent logging",
			Message: "Every day in your log has both a weight and a calorie value.",
			Level:   internal.LevelPositive,
		})
	}
	return fb
}

func estimateFeedback(in FeedbackInput) []internal.Feedback {
	if in.Status == internal.StatusInsufficientData || in.Estimate == nil {
		return []internal.Feedback{{
			Title:   "Not enough data",
			Message: fmt.Sprintf("Log your weight and calories for at least %d days to get a TDEE estimate.", MinEntries),
			Level:   internal.LevelInfo,
		}}
	}
	tdee := int(math.Round(in.Estimate.Value))
	if in.Estimate.Learning {
		complete, _ := SplitEntries(in.Entries)
		left := LearningWindowDays - Span(complete)
		msg := fmt.Sprintf("Your estimate of %d kcal will become more accurate after %d more days of logging.", tdee, left)
		if left <= 0 {
			msg = fmt.Sprintf("Your estimate of %d kcal needs at least %d complete days in a two week stretch to keep learning.", tdee, MinWindowEntries)
		}
		return []internal.Feedback{{Title: "Still learning", Message: msg, Level: internal.LevelInfo}}
	}
	return []internal.Feedback{{
		Title:   "Estimated TDEE",
		Message: fmt.Sprintf("Based on %d learning windows you burn about %d kcal per day.", in.Estimate.Windows, tdee),
		Level:   internal.LevelInfo,
	}}
}

func weightFeedback(in FeedbackInput) []internal.Feedback {
	if !in.HasWeights || Span(in.Entries) < RollingWindowDays {
		return nil
	}
	unit := string(in.Unit)
	weekly := in.WeeklyChange
	rate := math.Abs(in.TargetRate)
	if rate == 0 {
		rate = DefaultRate(in.Goal, in.Unit)
	}

	warn := func(title, msg string) []internal.Feedback {
		return []internal.Feedback{{Title: title, Message: msg, Level: internal.LevelWarning}}
	}
	good := func(title, msg string) []internal.Feedback {
		return []internal.Feedback{{Title: title, Message: msg, Level: internal.LevelPositive}}
	}

	switch in.Goal {
	case internal.GoalCut:
		if weekly > 0 {
			return warn("Weight is going up", fmt.Sprintf("You gained %.2f %s per week while cutting. Aim for the lower end of your intake range.", weekly, unit))
		}
		if -weekly > MaxWeeklyLossFraction*in.CurrentWeight {
			return warn("Losing weight too fast", fmt.Sprintf("You lost %.2f %s per week, more than 1%% of your body weight. Eat closer to the top of your intake range.", -weekly, unit))
		}
		return good("On track", fmt.Sprintf("You are losing %.2f %s per week.", -weekly, unit))
	case internal.GoalBulk:
		if weekly < 0 {
			return warn("Weight is going down", fmt.Sprintf("You lost %.2f %s per week while bulking. Aim for the upper end of your intake range.", -weekly, unit))
		}
		if weekly > 2*rate {
			return warn("Gaining weight too fast", fmt.Sprintf("You gained %.2f %s per week, more than twice your target of %.2f %s.", weekly, unit, rate, unit))
		}
		return good("On track", fmt.Sprintf("You are gaining %.2f %s per week.", weekly, unit))
	case internal.GoalMaintain:
		limit := DefaultRate(internal.GoalBulk, in.Unit)
		if math.Abs(weekly) > limit {
			return warn("Weight is drifting", fmt.Sprintf("Your weight changed by %.2f %s per week while maintaining.", weekly, unit))
		}
		return good("Weight is stable", fmt.Sprintf("Your weight changed by only %.2f %s per week.", weekly, unit))
	}
	return nil
}

func intakeFeedback(in FeedbackInput) []internal.Feedback {
	if in.GoalRange == nil {
		return nil
	}
	complete, _ := SplitEntries(in.Entries)
	if len(complete) == 0 {
		return nil
	}
	within := 0
	for _, e := range complete {
		bounds := *in.GoalRange
		if e.GoalIntakeBoundaries != nil {
			bounds = *e.GoalIntakeBoundaries
		}
		if bounds.Contains(*e.Calories) {
			within++
		}
	}
	share := float64(within) / float64(len(complete))
	pct := int(math.Round(share * 100))
	switch {
	case share >= goodAdherence:
		return []internal.Feedback{{
			Title:   "Great adherence",
			Message: fmt.Sprintf("%d%% of your days were within your calorie target.", pct),
			Level:   internal.LevelPositive,
		}}
	case share < poorAdherence:
		return []internal.Feedback{{
			Title:   "Off target",
			Message: fmt.Sprintf("Only %d%% of your days were within your calorie target of %.0f-%.0f kcal.", pct, in.GoalRange.Low, in.GoalRange.High),
			Level:   internal.LevelWarning,
		}}
	default:
		return []internal.Feedback{{
			Title:   "Room to improve",
			Message: fmt.Sprintf("%d%% of your days were within your calorie target.", pct),
			Level:   internal.LevelInfo,
		}}
	}
}
