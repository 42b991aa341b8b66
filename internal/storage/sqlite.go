package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yourname/smartcoach/internal"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

func NewSQLiteStorage(ctx context.Context, path string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		logger.Errorf("storage: %v", err)
		return nil, err
	}
	if err := ApplyMigrations(ctx, db); err != nil {
		db.Close()
		logger.Errorf("storage: %v", err)
		return nil, err
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func sqlNotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("storage: %s: %w", what, internal.ErrNotFound)
	}
	return err
}

// --- UserRepository ---
func (s *SQLiteStorage) getUser(ctx context.Context, where string, arg string) (*internal.User, error) {
	return scanSQLiteUser(s.db.QueryRowContext(ctx, `SELECT id, token, name, main_log_id, profile_json FROM users WHERE `+where+` = ?`, arg))
}

func scanSQLiteUser(row rowScanner) (*internal.User, error) {
	var u internal.User
	var profile sql.NullString
	err := row.Scan(&u.ID, &u.Token, &u.Name, &u.MainLogID, &profile)
	if err != nil {
		return nil, err
	}
	if profile.Valid && profile.String != "" {
		u.Profile = &internal.UserProfile{}
		if err := json.Unmarshal([]byte(profile.String), u.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	return &u, nil
}

func (s *SQLiteStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	u, err := s.getUser(ctx, "token", token)
	if err != nil {
		return nil, sqlNotFound(err, "user with token")
	}
	return u, nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	u, err := s.getUser(ctx, "id", id)
	if err != nil {
		return nil, sqlNotFound(err, "user "+id)
	}
	return u, nil
}

func profileColumn(profile *internal.UserProfile) (sql.NullString, error) {
	if profile == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode profile: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func (s *SQLiteStorage) SaveUser(ctx context.Context, user *internal.User) error {
	profile, err := profileColumn(user.Profile)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO users(id, token, name, main_log_id, profile_json) VALUES(?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET token = excluded.token, name = excluded.name,
  main_log_id = excluded.main_log_id, profile_json = excluded.profile_json
`, user.ID, user.Token, user.Name, user.MainLogID, profile)
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}

// UpdateUser runs in a transaction; with a single open connection that
// serializes it against every other write.
func (s *SQLiteStorage) UpdateUser(ctx context.Context, id string, fn func(*internal.User) error) (*internal.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin user update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	u, err := scanSQLiteUser(tx.QueryRowContext(ctx, `SELECT id, token, name, main_log_id, profile_json FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, sqlNotFound(err, "user "+id)
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.ID = id
	profile, err := profileColumn(u.Profile)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET token = ?, name = ?, main_log_id = ?, profile_json = ? WHERE id = ?`,
		u.Token, u.Name, u.MainLogID, profile, id); err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user update: %w", err)
	}
	return u, nil
}

// --- NutritionLogRepository ---
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLog(row rowScanner) (internal.NutritionLog, error) {
	var l internal.NutritionLog
	var goal, unit, created, updated string
	var startTDEE sql.NullFloat64
	if err := row.Scan(&l.ID, &l.UserID, &l.Title, &goal, &l.TargetRate, &unit, &startTDEE, &created, &updated); err != nil {
		return l, err
	}
	l.Goal = internal.LogGoal(goal)
	l.WeightUnit = internal.WeightUnit(unit)
	l.StartTDEE = nullFloat(startTDEE)
	var err error
	if l.CreatedAt, err = parseTime(created); err != nil {
		return l, err
	}
	if l.LastUpdated, err = parseTime(updated); err != nil {
		return l, err
	}
	return l, nil
}

func (s *SQLiteStorage) SaveLog(ctx context.Context, log *internal.NutritionLog) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO nutrition_logs(`+logColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET title = excluded.title, goal = excluded.goal,
  target_rate = excluded.target_rate, weight_unit = excluded.weight_unit,
  start_tdee = excluded.start_tdee, last_updated = excluded.last_updated
`, log.ID, log.UserID, log.Title, string(log.Goal), log.TargetRate, string(log.WeightUnit), log.StartTDEE,
		formatTime(log.CreatedAt), formatTime(log.LastUpdated))
	if err != nil {
		return fmt.Errorf("save log %s: %w", log.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) GetLog(ctx context.Context, userID, logID string) (*internal.NutritionLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+logColumns+` FROM nutrition_logs WHERE id = ? AND user_id = ?`, logID, userID)
	l, err := scanSQLiteLog(row)
	if err != nil {
		return nil, sqlNotFound(err, "log "+logID)
	}
	return &l, nil
}

func (s *SQLiteStorage) ListLogs(ctx context.Context, userID string) ([]internal.NutritionLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+logColumns+` FROM nutrition_logs WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	logs := []internal.NutritionLog{}
	for rows.Next() {
		l, err := scanSQLiteLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return logs, nil
}

func (s *SQLiteStorage) DeleteLog(ctx context.Context, userID, logID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nutrition_logs WHERE id = ? AND user_id = ?`, logID, userID)
	if err != nil {
		return fmt.Errorf("delete log %s: %w", logID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("storage: log %s: %w", logID, internal.ErrNotFound)
	}
	return nil
}

// --- DayEntryRepository ---
func (s *SQLiteStorage) SaveDayEntry(ctx context.Context, e *internal.DayEntry) error {
	var low, high *float64
	if e.GoalIntakeBoundaries != nil {
		low, high = &e.GoalIntakeBoundaries.Low, &e.GoalIntakeBoundaries.High
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO day_entries(log_id, id, date, weight, calories, creation_estimated_tdee, goal_low, goal_high, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(log_id, id) DO UPDATE SET weight = excluded.weight, calories = excluded.calories,
  creation_estimated_tdee = excluded.creation_estimated_tdee, goal_low = excluded.goal_low,
  goal_high = excluded.goal_high, updated_at = excluded.updated_at
`, e.LogID, e.ID, e.Date.UTC().Format(dateLayout), e.Weight, e.Calories, e.CreationEstimatedTDEE, low, high,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save day entry %d: %w", e.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) ListDayEntries(ctx context.Context, logID string) ([]internal.DayEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT log_id, id, date, weight, calories, creation_estimated_tdee, goal_low, goal_high, created_at, updated_at
FROM day_entries WHERE log_id = ? ORDER BY id`, logID)
	if err != nil {
		return nil, fmt.Errorf("list day entries: %w", err)
	}
	defer rows.Close()

	entries := []internal.DayEntry{}
	for rows.Next() {
		var e internal.DayEntry
		var date, created, updated string
		var weight, calories, tdee, low, high sql.NullFloat64
		if err := rows.Scan(&e.LogID, &e.ID, &date, &weight, &calories, &tdee, &low, &high, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan day entry: %w", err)
		}
		if e.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", date, err)
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		e.Weight = nullFloat(weight)
		e.Calories = nullFloat(calories)
		e.CreationEstimatedTDEE = nullFloat(tdee)
		if low.Valid && high.Valid {
			e.GoalIntakeBoundaries = &internal.IntakeBoundaries{Low: low.Float64, High: high.Float64}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStorage) DeleteDayEntry(ctx context.Context, logID string, entryID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM day_entries WHERE log_id = ? AND id = ?`, logID, entryID)
	if err != nil {
		return fmt.Errorf("delete day entry %d: %w", entryID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("storage: entry %d in log %s: %w", entryID, logID, internal.ErrNotFound)
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
