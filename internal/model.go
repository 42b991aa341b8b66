package internal

import "time"

type LogGoal string

const (
	GoalCut      LogGoal = "cut"
	GoalBulk     LogGoal = "bulk"
	GoalMaintain LogGoal = "maintain"
)

type WeightUnit string

const (
	UnitLb WeightUnit = "lb"
	UnitKg WeightUnit = "kg"
)

type PayloadStatus string

const (
	StatusInsufficientData PayloadStatus = "insufficient_data"
	StatusLearning         PayloadStatus = "learning"
	StatusReady            PayloadStatus = "ready"
)

type User struct {
	ID        string       `json:"id"`
	Token     string       `json:"token"`
	Name      string       `json:"name"`
	MainLogID string       `json:"main_log_id,omitempty"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

type UserProfile struct {
	Sex           string     `json:"sex,omitempty"` // male, female
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	HeightCM      float64    `json:"height_cm,omitempty"`
	ActivityLevel string     `json:"activity_level,omitempty"`
}

type NutritionLog struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Goal        LogGoal    `json:"goal"`
	TargetRate  float64    `json:"target_rate"` // weight units per week, 0 = goal default
	WeightUnit  WeightUnit `json:"weight_unit"`
	StartTDEE   *float64   `json:"start_tdee,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated time.Time  `json:"last_updated"`
	DayEntries  []DayEntry `json:"day_entries,omitempty"`
}

type IntakeBoundaries struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether calories lie within the boundaries, inclusive.
func (b IntakeBoundaries) Contains(calories float64) bool {
	return calories >= b.Low && calories <= b.High
}

type DayEntry struct {
	ID                    int64             `json:"id"` // days since the Unix epoch
	LogID                 string            `json:"log_id"`
	Date                  time.Time         `json:"date"`
	Weight                *float64          `json:"weight,omitempty"`
	Calories              *float64          `json:"calories,omitempty"`
	CreationEstimatedTDEE *float64          `json:"creation_estimated_tdee,omitempty"`
	GoalIntakeBoundaries  *IntakeBoundaries `json:"goal_intake_boundaries,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

type EntryStats struct {
	MinCalories       float64 `json:"min_calories"`
	AvgCalories       float64 `json:"avg_calories"`
	MaxCalories       float64 `json:"max_calories"`
	MinWeight         float64 `json:"min_weight"`
	AvgWeight         float64 `json:"avg_weight"`
	MaxWeight         float64 `json:"max_weight"`
	CompleteEntries   int     `json:"complete_entries"`
	IncompleteEntries int     `json:"incomplete_entries"`
}

type TimePeriod struct {
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	ListOfEntries []DayEntry `json:"list_of_entries"`
	Stats         EntryStats `json:"stats"`
}

type FeedbackLevel string

const (
	LevelPositive FeedbackLevel = "positive"
	LevelInfo     FeedbackLevel = "info"
	LevelWarning  FeedbackLevel = "warning"
)

type Feedback struct {
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Level   FeedbackLevel `json:"level"`
}

type FeedbackCategory struct {
	Name     string     `json:"name"`
	Feedback []Feedback `json:"feedback"`
}

type EnergyPayload struct {
	LogID              string             `json:"log_id"`
	Status             PayloadStatus      `json:"status"`
	StartWeight        float64            `json:"start_weight"`
	CurrentWeight      float64            `json:"current_weight"`
	WeightChange       float64            `json:"weight_change"`
	WeeklyWeightChange float64            `json:"weekly_weight_change"`
	EstimatedTDEE      float64            `json:"estimated_tdee"`
	GoalIntakeRange    IntakeBoundaries   `json:"goal_intake_range"`
	MinCalories        float64            `json:"min_calories"`
	AvgCalories        float64            `json:"avg_calories"`
	MaxCalories        float64            `json:"max_calories"`
	MinWeight          float64            `json:"min_weight"`
	AvgWeight          float64            `json:"avg_weight"`
	MaxWeight          float64            `json:"max_weight"`
	TotalEntries       int                `json:"total_entries"`
	CompleteEntries    int                `json:"complete_entries"`
	IncompleteEntries  int                `json:"incomplete_entries"`
	DaysTracked        int                `json:"days_tracked"`
	Analysis           []FeedbackCategory `json:"analysis"`
	GeneratedAt        time.Time          `json:"generated_at"`
}
