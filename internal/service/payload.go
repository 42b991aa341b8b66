package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/energy"
	"github.com/yourname/smartcoach/internal/metrics"
)

// ComputePayload builds the energy payload of one of the user's logs.
func ComputePayload(ctx context.Context, repos Repos, user *internal.User, logID string) (*internal.EnergyPayload, error) {
	started := time.Now()
	log, err := GetLog(ctx, repos, user, logID)
	if err != nil {
		return nil, err
	}
	p := energy.BuildPayload(*log, priorFor(user, log, log.DayEntries), now().UTC())
	metrics.RecordPayload(string(p.Status), p.EstimatedTDEE, time.Since(started))
	return &p, nil
}

func MainPayload(ctx context.Context, repos Repos, user *internal.User) (*internal.EnergyPayload, error) {
	if user.MainLogID == "" {
		return nil, fmt.Errorf("main log: %w", internal.ErrNotFound)
	}
	return ComputePayload(ctx, repos, user, user.MainLogID)
}

// LogPeriods groups the log's entries by week or month.
func LogPeriods(ctx context.Context, repos Repos, user *internal.User, logID, by string) ([]internal.TimePeriod, error) {
	kind, err := energy.ParsePeriodKind(by)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrInvalid, err)
	}
	log, err := GetLog(ctx, repos, user, logID)
	if err != nil {
		return nil, err
	}
	periods := energy.Periods(log.DayEntries, kind)
	if periods == nil {
		periods = []internal.TimePeriod{}
	}
	return periods, nil
}
