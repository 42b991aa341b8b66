package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/energy"
)

func ptr(v float64) *float64 { return &v }

var baseTime = time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

func seedUser(t *testing.T, s Store) *internal.User {
	t.Helper()
	born := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	u := &internal.User{
		ID:    "user-1",
		Token: "token-1",
		Name:  "Dana",
		Profile: &internal.UserProfile{
			Sex: "female", BirthDate: &born, HeightCM: 168, ActivityLevel: "moderate",
		},
	}
	require.NoError(t, s.SaveUser(context.Background(), u))
	return u
}

func testLog(id string, created time.Time) *internal.NutritionLog {
	return &internal.NutritionLog{
		ID:          id,
		UserID:      "user-1",
		Title:       "Spring cut " + id,
		Goal:        internal.GoalCut,
		TargetRate:  1,
		WeightUnit:  internal.UnitLb,
		StartTDEE:   ptr(2400),
		CreatedAt:   created,
		LastUpdated: created,
	}
}

func testEntry(logID string, day time.Time, weight, calories *float64) *internal.DayEntry {
	return &internal.DayEntry{
		ID:        energy.DayNumber(day),
		LogID:     logID,
		Date:      energy.Truncate(day),
		Weight:    weight,
		Calories:  calories,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

// runStoreContract exercises the behaviour every backend shares.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	user := seedUser(t, s)

	t.Run("users", func(t *testing.T) {
		got, err := s.GetUserByToken(ctx, "token-1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		require.NotNil(t, got.Profile)
		assert.Equal(t, "moderate", got.Profile.ActivityLevel)
		assert.True(t, user.Profile.BirthDate.Equal(*got.Profile.BirthDate))

		_, err = s.GetUserByToken(ctx, "nope")
		assert.ErrorIs(t, err, internal.ErrNotFound)
		_, err = s.GetUser(ctx, "ghost")
		assert.ErrorIs(t, err, internal.ErrNotFound)

		got.MainLogID = "log-a"
		require.NoError(t, s.SaveUser(ctx, got))
		again, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "log-a", again.MainLogID)
	})

	t.Run("update user", func(t *testing.T) {
		got, err := s.UpdateUser(ctx, user.ID, func(u *internal.User) error {
			u.Token = "token-rotated"
			u.Profile.HeightCM = 170
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "log-a", got.MainLogID)
		assert.Equal(t, 170.0, got.Profile.HeightCM)

		_, err = s.GetUserByToken(ctx, "token-1")
		assert.ErrorIs(t, err, internal.ErrNotFound)
		byToken, err := s.GetUserByToken(ctx, "token-rotated")
		require.NoError(t, err)
		assert.Equal(t, 170.0, byToken.Profile.HeightCM)

		abort := errors.New("abort")
		_, err = s.UpdateUser(ctx, user.ID, func(u *internal.User) error {
			u.Name = "Changed"
			return abort
		})
		assert.ErrorIs(t, err, abort)
		again, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana", again.Name)

		_, err = s.UpdateUser(ctx, "ghost", func(u *internal.User) error { return nil })
		assert.ErrorIs(t, err, internal.ErrNotFound)
	})

	t.Run("logs", func(t *testing.T) {
		require.NoError(t, s.SaveLog(ctx, testLog("log-b", baseTime.Add(time.Hour))))
		require.NoError(t, s.SaveLog(ctx, testLog("log-a", baseTime)))

		logs, err := s.ListLogs(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "log-a", logs[0].ID)
		assert.Equal(t, "log-b", logs[1].ID)

		got, err := s.GetLog(ctx, "user-1", "log-a")
		require.NoError(t, err)
		assert.Equal(t, internal.GoalCut, got.Goal)
		assert.Equal(t, internal.UnitLb, got.WeightUnit)
		require.NotNil(t, got.StartTDEE)
		assert.Equal(t, 2400.0, *got.StartTDEE)
		assert.True(t, got.CreatedAt.Equal(baseTime))

		_, err = s.GetLog(ctx, "someone-else", "log-a")
		assert.ErrorIs(t, err, internal.ErrNotFound)

		got.Title = "Renamed"
		got.StartTDEE = nil
		require.NoError(t, s.SaveLog(ctx, got))
		got, err = s.GetLog(ctx, "user-1", "log-a")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Nil(t, got.StartTDEE)
	})

	t.Run("entries", func(t *testing.T) {
		day1 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
		day2 := day1.AddDate(0, 0, 1)

		second := testEntry("log-a", day2, ptr(180.2), nil)
		first := testEntry("log-a", day1, ptr(181), ptr(2100))
		first.CreationEstimatedTDEE = ptr(2450)
		first.GoalIntakeBoundaries = &internal.IntakeBoundaries{Low: 1850, High: 2050}
		require.NoError(t, s.SaveDayEntry(ctx, second))
		require.NoError(t, s.SaveDayEntry(ctx, first))

		entries, err := s.ListDayEntries(ctx, "log-a")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, energy.DayNumber(day1), entries[0].ID)
		assert.True(t, entries[0].Date.Equal(day1))
		require.NotNil(t, entries[0].GoalIntakeBoundaries)
		assert.Equal(t, 1850.0, entries[0].GoalIntakeBoundaries.Low)
		assert.Equal(t, 2450.0, *entries[0].CreationEstimatedTDEE)
		assert.Nil(t, entries[1].Calories)
		assert.Nil(t, entries[1].GoalIntakeBoundaries)

		// same day replaces the entry
		second.Calories = ptr(1900)
		require.NoError(t, s.SaveDayEntry(ctx, second))
		entries, err = s.ListDayEntries(ctx, "log-a")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 1900.0, *entries[1].Calories)

		require.NoError(t, s.DeleteDayEntry(ctx, "log-a", second.ID))
		assert.ErrorIs(t, s.DeleteDayEntry(ctx, "log-a", second.ID), internal.ErrNotFound)

		empty, err := s.ListDayEntries(ctx, "log-missing")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete log cascades", func(t *testing.T) {
		require.NoError(t, s.SaveDayEntry(ctx, testEntry("log-b", baseTime, ptr(179), ptr(2000))))
		assert.ErrorIs(t, s.DeleteLog(ctx, "someone-else", "log-b"), internal.ErrNotFound)
		require.NoError(t, s.DeleteLog(ctx, "user-1", "log-b"))
		assert.ErrorIs(t, s.DeleteLog(ctx, "user-1", "log-b"), internal.ErrNotFound)

		entries, err := s.ListDayEntries(ctx, "log-b")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), internal.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	runStoreContract(t, s)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "coach.db"), internal.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	runStoreContract(t, s)
}

func TestFileStoragePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStorage(dir, internal.NewNopLogger())
	require.NoError(t, err)
	seedUser(t, s)
	require.NoError(t, s.SaveLog(ctx, testLog("log-a", baseTime)))
	require.NoError(t, s.SaveDayEntry(ctx, testEntry("log-a", baseTime, ptr(181), ptr(2100))))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	reopened, err := NewFileStorage(dir, internal.NewNopLogger())
	require.NoError(t, err)
	defer reopened.Close()

	u, err := reopened.GetUserByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana", u.Name)

	l, err := reopened.GetLog(ctx, "user-1", "log-a")
	require.NoError(t, err)
	assert.True(t, l.CreatedAt.Equal(baseTime))
	assert.Empty(t, l.DayEntries)

	entries, err := reopened.ListDayEntries(ctx, "log-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2100.0, *entries[0].Calories)
}

func TestFileStorageTokenRotation(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStorage(t.TempDir(), internal.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	u := seedUser(t, s)
	u.Token = "token-2"
	require.NoError(t, s.SaveUser(ctx, u))

	_, err = s.GetUserByToken(ctx, "token-1")
	assert.ErrorIs(t, err, internal.ErrNotFound)
	got, err := s.GetUserByToken(ctx, "token-2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSQLiteListLogsOrdersSubSecondTimes(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "coach.db"), internal.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()
	seedUser(t, s)

	whole := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveLog(ctx, testLog("later", whole.Add(500*time.Millisecond))))
	require.NoError(t, s.SaveLog(ctx, testLog("earlier", whole)))
	require.NoError(t, s.SaveLog(ctx, testLog("latest", whole.Add(time.Second))))

	logs, err := s.ListLogs(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "earlier", logs[0].ID)
	assert.Equal(t, "later", logs[1].ID)
	assert.Equal(t, "latest", logs[2].ID)
	assert.True(t, logs[1].CreatedAt.Equal(whole.Add(500*time.Millisecond)))
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, ApplyMigrations(ctx, db))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, len(sqliteMigrations), count)
}
