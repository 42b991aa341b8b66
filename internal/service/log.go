package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourname/smartcoach/internal"
)

type LogRequest struct {
	Title      string   `json:"title" validate:"required,max=120"`
	Goal       string   `json:"goal" validate:"required,oneof=cut bulk maintain"`
	TargetRate float64  `json:"target_rate" validate:"gte=0,lte=5"`
	WeightUnit string   `json:"weight_unit" validate:"omitempty,oneof=lb kg"`
	StartTDEE  *float64 `json:"start_tdee,omitempty" validate:"omitempty,gte=1000,lte=6000"`
}

type MainLogRequest struct {
	LogID string `json:"log_id" validate:"required"`
}

func ValidateLogRequest(req *LogRequest) error {
	return validate.Struct(req)
}

func ValidateMainLogRequest(req *MainLogRequest) error {
	return validate.Struct(req)
}

func (req *LogRequest) unit() internal.WeightUnit {
	if req.WeightUnit == "" {
		return internal.UnitLb
	}
	return internal.WeightUnit(req.WeightUnit)
}

// CreateLog stores a new log. The user's first log becomes their main log.
func CreateLog(ctx context.Context, repos Repos, user *internal.User, req *LogRequest) (*internal.NutritionLog, error) {
	ts := now().UTC()
	log := &internal.NutritionLog{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       req.Title,
		Goal:        internal.LogGoal(req.Goal),
		TargetRate:  req.TargetRate,
		WeightUnit:  req.unit(),
		StartTDEE:   req.StartTDEE,
		CreatedAt:   ts,
		LastUpdated: ts,
		DayEntries:  []internal.DayEntry{},
	}
	if err := repos.Logs.SaveLog(ctx, log); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	err := updateUser(ctx, repos, user, func(u *internal.User) error {
		if u.MainLogID == "" {
			u.MainLogID = log.ID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set main log: %w", err)
	}
	return log, nil
}

func UpdateLog(ctx context.Context, repos Repos, user *internal.User, logID string, req *LogRequest) (*internal.NutritionLog, error) {
	log, err := repos.Logs.GetLog(ctx, user.ID, logID)
	if err != nil {
		return nil, err
	}
	log.Title = req.Title
	log.Goal = internal.LogGoal(req.Goal)
	log.TargetRate = req.TargetRate
	log.WeightUnit = req.unit()
	log.StartTDEE = req.StartTDEE
	log.LastUpdated = now().UTC()
	if err := repos.Logs.SaveLog(ctx, log); err != nil {
		return nil, fmt.Errorf("update log: %w", err)
	}
	return withEntries(ctx, repos, log)
}

// GetLog returns the log with its day entries attached.
func GetLog(ctx context.Context, repos Repos, user *internal.User, logID string) (*internal.NutritionLog, error) {
	log, err := repos.Logs.GetLog(ctx, user.ID, logID)
	if err != nil {
		return nil, err
	}
	return withEntries(ctx, repos, log)
}

func withEntries(ctx context.Context, repos Repos, log *internal.NutritionLog) (*internal.NutritionLog, error) {
	entries, err := repos.Entries.ListDayEntries(ctx, log.ID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	log.DayEntries = entries
	return log, nil
}

// ListLogs returns the user's logs without entries, oldest first.
func ListLogs(ctx context.Context, repos Repos, user *internal.User) ([]internal.NutritionLog, error) {
	return repos.Logs.ListLogs(ctx, user.ID)
}

func DeleteLog(ctx context.Context, repos Repos, user *internal.User, logID string) error {
	if err := repos.Logs.DeleteLog(ctx, user.ID, logID); err != nil {
		return err
	}
	err := updateUser(ctx, repos, user, func(u *internal.User) error {
		if u.MainLogID == logID {
			u.MainLogID = ""
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear main log: %w", err)
	}
	return nil
}

func SetMainLog(ctx context.Context, repos Repos, user *internal.User, logID string) (*internal.NutritionLog, error) {
	log, err := repos.Logs.GetLog(ctx, user.ID, logID)
	if err != nil {
		return nil, err
	}
	err = updateUser(ctx, repos, user, func(u *internal.User) error {
		u.MainLogID = log.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set main log: %w", err)
	}
	return log, nil
}

// MainLog returns the user's main log with entries, or ErrNotFound when
// none is set.
func MainLog(ctx context.Context, repos Repos, user *internal.User) (*internal.NutritionLog, error) {
	if user.MainLogID == "" {
		return nil, fmt.Errorf("main log: %w", internal.ErrNotFound)
	}
	return GetLog(ctx, repos, user, user.MainLogID)
}
