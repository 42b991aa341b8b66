package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/storage"
)

var validate = validator.New()

// now is swapped in tests.
var now = time.Now

const dateLayout = "2006-01-02"

// Repos groups the repositories the service functions work against.
type Repos struct {
	Users   storage.UserRepository
	Logs    storage.NutritionLogRepository
	Entries storage.DayEntryRepository
}

func NewRepos(s storage.Store) Repos {
	return Repos{Users: s, Logs: s, Entries: s}
}

// ParseDate parses a YYYY-MM-DD calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", internal.ErrInvalid, s)
	}
	return t, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", internal.ErrInvalid, fmt.Sprintf(format, args...))
}

// updateUser changes only what fn touches on the stored record and refreshes
// the caller's copy, so concurrent requests for one user do not clobber each
// other's fields.
func updateUser(ctx context.Context, repos Repos, user *internal.User, fn func(*internal.User) error) error {
	updated, err := repos.Users.UpdateUser(ctx, user.ID, fn)
	if err != nil {
		return err
	}
	*user = *updated
	return nil
}
