package energy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/energy"
)

func category(t *testing.T, cats []internal.FeedbackCategory, name string) internal.FeedbackCategory {
	t.Helper()
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found in %+v", name, cats)
	return internal.FeedbackCategory{}
}

func hasCategory(cats []internal.FeedbackCategory, name string) bool {
	for _, c := range cats {
		if c.Name == name {
			return true
		}
	}
	return false
}

func TestBuildPayloadInsufficientData(t *testing.T) {
	log := internal.NutritionLog{ID: "log1", Goal: internal.GoalCut, WeightUnit: internal.UnitLb}
	p := energy.BuildPayload(log, nil, base)

	assert.Equal(t, internal.StatusInsufficientData, p.Status)
	assert.Equal(t, "log1", p.LogID)
	assert.Equal(t, 0.0, p.EstimatedTDEE)
	est := category(t, p.Analysis, energy.CategoryEstimate)
	assert.Equal(t, "Not enough data", est.Feedback[0].Title)
}

func TestBuildPayloadReadyCut(t *testing.T) {
	// Losing 1 lb a week on 2000 kcal means a 2500 kcal expenditure.
	log := internal.NutritionLog{
		ID:         "log1",
		Goal:       internal.GoalCut,
		WeightUnit: internal.UnitLb,
		DayEntries: linearLog(28, 200, -1.0/7, 2000),
	}
	p := energy.BuildPayload(log, nil, base)

	assert.Equal(t, internal.StatusReady, p.Status)
	assert.Equal(t, 2500.0, p.EstimatedTDEE)
	assert.Equal(t, internal.IntakeBoundaries{Low: 1900, High: 2100}, p.GoalIntakeRange)
	assert.InDelta(t, -3.0, p.WeightChange, 0.01)
	assert.InDelta(t, -1.0, p.WeeklyWeightChange, 0.01)
	assert.Equal(t, 28, p.TotalEntries)
	assert.Equal(t, 28, p.CompleteEntries)
	assert.Equal(t, 28, p.DaysTracked)
	assert.Equal(t, 2000.0, p.AvgCalories)
	assert.True(t, p.GeneratedAt.Equal(base))

	names := make([]string, 0, len(p.Analysis))
	for _, c := range p.Analysis {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{energy.CategoryLogging, energy.CategoryEstimate, energy.CategoryWeight, energy.CategoryIntake}, names)
	assert.Equal(t, "Consistent logging", category(t, p.Analysis, energy.CategoryLogging).Feedback[0].Title)
	assert.Equal(t, "On track", category(t, p.Analysis, energy.CategoryWeight).Feedback[0].Title)
	assert.Equal(t, "Great adherence", category(t, p.Analysis, energy.CategoryIntake).Feedback[0].Title)
}

func TestBuildPayloadLearningUsesPrior(t *testing.T) {
	log := internal.NutritionLog{
		ID:         "log1",
		Goal:       internal.GoalMaintain,
		DayEntries: linearLog(7, 180, 0, 2400),
	}
	p := energy.BuildPayload(log, f(2000), base)
	assert.Equal(t, internal.StatusLearning, p.Status)
	assert.Equal(t, 2100.0, p.EstimatedTDEE)
	assert.Equal(t, internal.IntakeBoundaries{Low: 2000, High: 2200}, p.GoalIntakeRange)
	fb := category(t, p.Analysis, energy.CategoryEstimate).Feedback[0]
	assert.Equal(t, "Still learning", fb.Title)
	assert.Contains(t, fb.Message, "7 more days")
}

func TestFeedbackIncompleteAndGaps(t *testing.T) {
	entries := []internal.DayEntry{
		entry(0, 180, 2000),
		entry(1, 0, 2100),
		entry(9, 179, 2000),
	}
	cats := energy.Feedback(energy.FeedbackInput{
		Goal:    internal.GoalMaintain,
		Unit:    internal.UnitLb,
		Status:  internal.StatusLearning,
		Entries: entries,
	})
	logging := category(t, cats, energy.CategoryLogging)
	require.Len(t, logging.Feedback, 2)
	assert.Equal(t, "Incomplete entries", logging.Feedback[0].Title)
	assert.Equal(t, internal.LevelWarning, logging.Feedback[0].Level)
	assert.Equal(t, "Gaps in your log", logging.Feedback[1].Title)
	assert.Contains(t, logging.Feedback[1].Message, "7 of the 10 days")
}

func TestFeedbackWeightAgainstGoal(t *testing.T) {
	entries := linearLog(14, 180, 0, 2000)
	tests := []struct {
		name   string
		goal   internal.LogGoal
		weekly float64
		title  string
	}{
		{"cut gaining", internal.GoalCut, 0.5, "Weight is going up"},
		{"cut too fast", internal.GoalCut, -2.5, "Losing weight too fast"},
		{"cut on track", internal.GoalCut, -1, "On track"},
		{"bulk losing", internal.GoalBulk, -0.2, "Weight is going down"},
		{"bulk too fast", internal.GoalBulk, 1.5, "Gaining weight too fast"},
		{"maintain drifting", internal.GoalMaintain, 0.8, "Weight is drifting"},
		{"maintain stable", internal.GoalMaintain, 0.1, "Weight is stable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats := energy.Feedback(energy.FeedbackInput{
				Goal:          tt.goal,
				Unit:          internal.UnitLb,
				Status:        internal.StatusReady,
				Entries:       entries,
				CurrentWeight: 180,
				WeeklyChange:  tt.weekly,
				HasWeights:    true,
			})
			assert.Equal(t, tt.title, category(t, cats, energy.CategoryWeight).Feedback[0].Title)
		})
	}
}

func TestFeedbackWeightNeedsAWeekOfData(t *testing.T) {
	cats := energy.Feedback(energy.FeedbackInput{
		Goal:         internal.GoalCut,
		Unit:         internal.UnitLb,
		Entries:      linearLog(3, 180, 1, 2000),
		WeeklyChange: 7,
		HasWeights:   true,
	})
	assert.False(t, hasCategory(cats, energy.CategoryWeight))
}

func TestFeedbackIntakeUsesEntrySnapshots(t *testing.T) {
	entries := linearLog(4, 180, 0, 2000)
	// Snapshot boundaries recorded when the entry was written win over the
	// current range.
	for i := range entries {
		entries[i].GoalIntakeBoundaries = &internal.IntakeBoundaries{Low: 2500, High: 2700}
	}
	entries[0].GoalIntakeBoundaries = nil
	cats := energy.Feedback(energy.FeedbackInput{
		Goal:      internal.GoalCut,
		Unit:      internal.UnitLb,
		Status:    internal.StatusLearning,
		Entries:   entries,
		GoalRange: &internal.IntakeBoundaries{Low: 1900, High: 2100},
	})
	fb := category(t, cats, energy.CategoryIntake).Feedback[0]
	assert.Equal(t, "Off target", fb.Title)
	assert.Contains(t, fb.Message, "25%")
}
