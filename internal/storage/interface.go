package storage

import (
	"context"

	"github.com/yourname/smartcoach/internal"
)

// Repositories return internal.ErrNotFound (wrapped) for missing records.

type UserRepository interface {
	GetUserByToken(ctx context.Context, token string) (*internal.User, error)
	GetUser(ctx context.Context, id string) (*internal.User, error)
	SaveUser(ctx context.Context, user *internal.User) error
	// UpdateUser loads the user, applies fn and stores the result atomically.
	// An error from fn aborts the update and is returned as is.
	UpdateUser(ctx context.Context, id string, fn func(*internal.User) error) (*internal.User, error)
}

type NutritionLogRepository interface {
	SaveLog(ctx context.Context, log *internal.NutritionLog) error
	GetLog(ctx context.Context, userID, logID string) (*internal.NutritionLog, error)
	ListLogs(ctx context.Context, userID string) ([]internal.NutritionLog, error)
	DeleteLog(ctx context.Context, userID, logID string) error
}

type DayEntryRepository interface {
	SaveDayEntry(ctx context.Context, entry *internal.DayEntry) error
	ListDayEntries(ctx context.Context, logID string) ([]internal.DayEntry, error)
	DeleteDayEntry(ctx context.Context, logID string, entryID int64) error
}

// Store bundles every repository a backend provides.
type Store interface {
	UserRepository
	NutritionLogRepository
	DayEntryRepository
	Close() error
}
