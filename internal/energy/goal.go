package energy

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yourname/smartcoach/internal"
)

const (
	IntakeTolerance    = 100.0
	MinSafeIntake      = 1200.0
	MaxDeficitFraction = 0.25

	// MaxWeeklyLossFraction of current body weight.
	MaxWeeklyLossFraction = 0.01
)

var ErrUnknownGoal = errors.New("energy: unknown log goal")

func ParseGoal(s string) (internal.LogGoal, error) {
	switch g := internal.LogGoal(strings.ToLower(strings.TrimSpace(s))); g {
	case internal.GoalCut, internal.GoalBulk, internal.GoalMaintain:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGoal, s)
	}
}

// DefaultRate is the weekly weight change a goal aims for when the log does
// not set one.
func DefaultRate(goal internal.LogGoal, unit internal.WeightUnit) float64 {
	var lb float64
	switch goal {
	case internal.GoalCut:
		lb = 1
	case internal.GoalBulk:
		lb = 0.5
	default:
		return 0
	}
	if unit == internal.UnitKg {
		return lb / 2
	}
	return lb
}

// GoalIntakeBoundaries derives the daily calorie range that moves weight at
// the requested weekly rate. A rate <= 0 selects the goal's default.
func GoalIntakeBoundaries(tdee float64, goal internal.LogGoal, rate float64, unit internal.WeightUnit) (internal.IntakeBoundaries, error) {
	if rate <= 0 {
		rate = DefaultRate(goal, unit)
	}
	daily := rate * CaloriesPerUnit(unit) / 7

	var target float64
	switch goal {
	case internal.GoalCut:
		target = tdee - math.Min(daily, tdee*MaxDeficitFraction)
	case internal.GoalBulk:
		target = tdee + daily
	case internal.GoalMaintain:
		target = tdee
	default:
		return internal.IntakeBoundaries{}, fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
	}

	low := math.Max(math.Round(target-IntakeTolerance), MinSafeIntake)
	high := math.Max(math.Round(target+IntakeTolerance), low)
	return internal.IntakeBoundaries{Low: low, High: high}, nil
}
