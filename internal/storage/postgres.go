package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/smartcoach/internal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  token TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  main_log_id TEXT NOT NULL DEFAULT '',
  profile JSONB
);

CREATE TABLE IF NOT EXISTS nutrition_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  goal TEXT NOT NULL,
  target_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
  weight_unit TEXT NOT NULL,
  start_tdee DOUBLE PRECISION,
  created_at TIMESTAMPTZ NOT NULL,
  last_updated TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nutrition_logs_user ON nutrition_logs(user_id);

CREATE TABLE IF NOT EXISTS day_entries (
  log_id TEXT NOT NULL REFERENCES nutrition_logs(id) ON DELETE CASCADE,
  id BIGINT NOT NULL,
  date DATE NOT NULL,
  weight DOUBLE PRECISION,
  calories DOUBLE PRECISION,
  creation_estimated_tdee DOUBLE PRECISION,
  goal_low DOUBLE PRECISION,
  goal_high DOUBLE PRECISION,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (log_id, id)
);
`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Errorf("failed to apply postgres schema: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("storage: %s: %w", what, internal.ErrNotFound)
	}
	return err
}

// --- UserRepository ---
func (p *PostgresStorage) scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	var profile []byte
	if err := row.Scan(&u.ID, &u.Token, &u.Name, &u.MainLogID, &profile); err != nil {
		return nil, err
	}
	if len(profile) > 0 {
		u.Profile = &internal.UserProfile{}
		if err := json.Unmarshal(profile, u.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	return &u, nil
}

func (p *PostgresStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, token, name, main_log_id, profile FROM users WHERE token = $1`, token)
	u, err := p.scanUser(row)
	if err != nil {
		p.logger.Warnf("user lookup by token failed: %v", err)
		return nil, notFound(err, "user with token")
	}
	return u, nil
}

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, token, name, main_log_id, profile FROM users WHERE id = $1`, id)
	u, err := p.scanUser(row)
	if err != nil {
		return nil, notFound(err, "user "+id)
	}
	return u, nil
}

func encodeProfile(profile *internal.UserProfile) ([]byte, error) {
	if profile == nil {
		return nil, nil
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return raw, nil
}

func (p *PostgresStorage) SaveUser(ctx context.Context, user *internal.User) error {
	profile, err := encodeProfile(user.Profile)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO users (id, token, name, main_log_id, profile) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET token = EXCLUDED.token, name = EXCLUDED.name,
  main_log_id = EXCLUDED.main_log_id, profile = EXCLUDED.profile`,
		user.ID, user.Token, user.Name, user.MainLogID, profile)
	if err != nil {
		p.logger.Errorf("failed to save user: %v", err)
		return err
	}
	return nil
}

// UpdateUser holds a row lock on the user for the read-modify-write.
func (p *PostgresStorage) UpdateUser(ctx context.Context, id string, fn func(*internal.User) error) (*internal.User, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin user update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := p.scanUser(tx.QueryRow(ctx, `SELECT id, token, name, main_log_id, profile FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "user "+id)
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.ID = id
	profile, err := encodeProfile(u.Profile)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET token = $2, name = $3, main_log_id = $4, profile = $5 WHERE id = $1`,
		id, u.Token, u.Name, u.MainLogID, profile); err != nil {
		p.logger.Errorf("failed to update user: %v", err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user update: %w", err)
	}
	return u, nil
}

// --- NutritionLogRepository ---
const logColumns = `id, user_id, title, goal, target_rate, weight_unit, start_tdee, created_at, last_updated`

func scanLog(row pgx.Row) (internal.NutritionLog, error) {
	var l internal.NutritionLog
	err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Goal, &l.TargetRate, &l.WeightUnit, &l.StartTDEE, &l.CreatedAt, &l.LastUpdated)
	return l, err
}

func (p *PostgresStorage) SaveLog(ctx context.Context, log *internal.NutritionLog) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO nutrition_logs (`+logColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, goal = EXCLUDED.goal,
  target_rate = EXCLUDED.target_rate, weight_unit = EXCLUDED.weight_unit,
  start_tdee = EXCLUDED.start_tdee, last_updated = EXCLUDED.last_updated`,
		log.ID, log.UserID, log.Title, log.Goal, log.TargetRate, log.WeightUnit, log.StartTDEE, log.CreatedAt, log.LastUpdated)
	if err != nil {
		p.logger.Errorf("failed to save nutrition log: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetLog(ctx context.Context, userID, logID string) (*internal.NutritionLog, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM nutrition_logs WHERE id = $1 AND user_id = $2`, logID, userID)
	l, err := scanLog(row)
	if err != nil {
		return nil, notFound(err, "log "+logID)
	}
	return &l, nil
}

func (p *PostgresStorage) ListLogs(ctx context.Context, userID string) ([]internal.NutritionLog, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+logColumns+` FROM nutrition_logs WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		p.logger.Errorf("failed to query nutrition logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	logs := []internal.NutritionLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			p.logger.Errorf("failed to scan nutrition log: %v", err)
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (p *PostgresStorage) DeleteLog(ctx context.Context, userID, logID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM nutrition_logs WHERE id = $1 AND user_id = $2`, logID, userID)
	if err != nil {
		p.logger.Errorf("failed to delete nutrition log: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: log %s: %w", logID, internal.ErrNotFound)
	}
	return nil
}

// --- DayEntryRepository ---
func (p *PostgresStorage) SaveDayEntry(ctx context.Context, e *internal.DayEntry) error {
	var low, high *float64
	if e.GoalIntakeBoundaries != nil {
		low, high = &e.GoalIntakeBoundaries.Low, &e.GoalIntakeBoundaries.High
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO day_entries (log_id, id, date, weight, calories, creation_estimated_tdee, goal_low, goal_high, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (log_id, id) DO UPDATE SET weight = EXCLUDED.weight, calories = EXCLUDED.calories,
  creation_estimated_tdee = EXCLUDED.creation_estimated_tdee, goal_low = EXCLUDED.goal_low,
  goal_high = EXCLUDED.goal_high, updated_at = EXCLUDED.updated_at`,
		e.LogID, e.ID, e.Date, e.Weight, e.Calories, e.CreationEstimatedTDEE, low, high, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to save day entry: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListDayEntries(ctx context.Context, logID string) ([]internal.DayEntry, error) {
	rows, err := p.pool.Query(ctx, `
SELECT log_id, id, date, weight, calories, creation_estimated_tdee, goal_low, goal_high, created_at, updated_at
FROM day_entries WHERE log_id = $1 ORDER BY id`, logID)
	if err != nil {
		p.logger.Errorf("failed to query day entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []internal.DayEntry{}
	for rows.Next() {
		var e internal.DayEntry
		var low, high *float64
		if err := rows.Scan(&e.LogID, &e.ID, &e.Date, &e.Weight, &e.Calories, &e.CreationEstimatedTDEE, &low, &high, &e.CreatedAt, &e.UpdatedAt); err != nil {
			p.logger.Errorf("failed to scan day entry: %v", err)
			return nil, err
		}
		if low != nil && high != nil {
			e.GoalIntakeBoundaries = &internal.IntakeBoundaries{Low: *low, High: *high}
		}
		e.Date = e.Date.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStorage) DeleteDayEntry(ctx context.Context, logID string, entryID int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM day_entries WHERE log_id = $1 AND id = $2`, logID, entryID)
	if err != nil {
		p.logger.Errorf("failed to delete day entry: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: entry %d in log %s: %w", entryID, logID, internal.ErrNotFound)
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
