package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/energy"
	"github.com/yourname/smartcoach/internal/metrics"
)

type DayEntryRequest struct {
	Weight   *float64 `json:"weight,omitempty" validate:"omitempty,gt=0,lte=1500"`
	Calories *float64 `json:"calories,omitempty" validate:"omitempty,gte=0,lte=30000"`
}

func ValidateDayEntryRequest(req *DayEntryRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Weight == nil && req.Calories == nil {
		return invalid("an entry needs a weight or calories")
	}
	return nil
}

// UpsertDayEntry writes the entry for date, replacing any entry already
// logged that day. New entries snapshot the TDEE estimate and goal range
// computed from the rest of the log; replacements keep their snapshot.
// The returned bool reports whether the entry was created.
func UpsertDayEntry(ctx context.Context, repos Repos, user *internal.User, logID, date string, req *DayEntryRequest) (*internal.DayEntry, bool, error) {
	day, err := entryDate(date)
	if err != nil {
		return nil, false, err
	}
	log, err := GetLog(ctx, repos, user, logID)
	if err != nil {
		return nil, false, err
	}

	ts := now().UTC()
	entry := &internal.DayEntry{
		ID:        energy.DayNumber(day),
		LogID:     log.ID,
		Date:      day,
		Weight:    req.Weight,
		Calories:  req.Calories,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	others := make([]internal.DayEntry, 0, len(log.DayEntries))
	var existing *internal.DayEntry
	for i := range log.DayEntries {
		if log.DayEntries[i].ID == entry.ID {
			existing = &log.DayEntries[i]
			continue
		}
		others = append(others, log.DayEntries[i])
	}

	if existing != nil {
		entry.CreatedAt = existing.CreatedAt
		entry.CreationEstimatedTDEE = existing.CreationEstimatedTDEE
		entry.GoalIntakeBoundaries = existing.GoalIntakeBoundaries
	} else {
		snapshot(entry, user, log, others)
	}

	if err := repos.Entries.SaveDayEntry(ctx, entry); err != nil {
		return nil, false, fmt.Errorf("save day entry: %w", err)
	}
	if err := touchLog(ctx, repos, log); err != nil {
		return nil, false, err
	}
	metrics.RecordEntryWrite("upsert")
	return entry, existing == nil, nil
}

func snapshot(entry *internal.DayEntry, user *internal.User, log *internal.NutritionLog, others []internal.DayEntry) {
	unit := logUnit(log)
	est, err := energy.EstimateTDEE(others, unit, priorFor(user, log, others))
	if err != nil {
		return
	}
	tdee := math.Round(est.Value)
	entry.CreationEstimatedTDEE = &tdee
	if b, err := energy.GoalIntakeBoundaries(est.Value, log.Goal, log.TargetRate, unit); err == nil {
		entry.GoalIntakeBoundaries = &b
	}
}

func DeleteDayEntry(ctx context.Context, repos Repos, user *internal.User, logID, date string) error {
	day, err := ParseDate(date)
	if err != nil {
		return err
	}
	log, err := repos.Logs.GetLog(ctx, user.ID, logID)
	if err != nil {
		return err
	}
	if err := repos.Entries.DeleteDayEntry(ctx, log.ID, energy.DayNumber(day)); err != nil {
		return err
	}
	if err := touchLog(ctx, repos, log); err != nil {
		return err
	}
	metrics.RecordEntryWrite("delete")
	return nil
}

// ListDayEntries returns the log's entries between from and to inclusive.
// Either bound may be empty.
func ListDayEntries(ctx context.Context, repos Repos, user *internal.User, logID, from, to string) ([]internal.DayEntry, error) {
	var lo, hi int64 = math.MinInt64, math.MaxInt64
	if from != "" {
		d, err := ParseDate(from)
		if err != nil {
			return nil, err
		}
		lo = energy.DayNumber(d)
	}
	if to != "" {
		d, err := ParseDate(to)
		if err != nil {
			return nil, err
		}
		hi = energy.DayNumber(d)
	}
	if lo > hi {
		return nil, invalid("from %s is after to %s", from, to)
	}

	log, err := GetLog(ctx, repos, user, logID)
	if err != nil {
		return nil, err
	}
	out := []internal.DayEntry{}
	for _, e := range energy.SortEntries(log.DayEntries) {
		if e.ID >= lo && e.ID <= hi {
			out = append(out, e)
		}
	}
	return out, nil
}

func entryDate(date string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return day, err
	}
	if day.After(energy.Truncate(now())) {
		return day, invalid("date %s is in the future", date)
	}
	return day, nil
}

func touchLog(ctx context.Context, repos Repos, log *internal.NutritionLog) error {
	log.LastUpdated = now().UTC()
	entries := log.DayEntries
	log.DayEntries = nil
	err := repos.Logs.SaveLog(ctx, log)
	log.DayEntries = entries
	if err != nil {
		return fmt.Errorf("update log timestamp: %w", err)
	}
	return nil
}

func logUnit(log *internal.NutritionLog) internal.WeightUnit {
	if log.WeightUnit == "" {
		return internal.UnitLb
	}
	return log.WeightUnit
}

// priorFor picks the estimate a log starts from: the log's start TDEE, else
// one derived from the user's profile and latest weight.
func priorFor(user *internal.User, log *internal.NutritionLog, entries []internal.DayEntry) *float64 {
	if log.StartTDEE != nil {
		v := *log.StartTDEE
		return &v
	}
	if user == nil || user.Profile == nil {
		return nil
	}
	sorted := energy.SortEntries(entries)
	for i := len(sorted) - 1; i >= 0; i-- {
		if w := sorted[i].Weight; w != nil && *w > 0 {
			if v, ok := energy.ProfileTDEE(user.Profile, *w, logUnit(log), now()); ok {
				return &v
			}
			return nil
		}
	}
	return nil
}
