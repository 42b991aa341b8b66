package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var sqliteMigrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  token TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  main_log_id TEXT NOT NULL DEFAULT '',
  profile_json TEXT
);

CREATE TABLE IF NOT EXISTS nutrition_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  goal TEXT NOT NULL,
  target_rate REAL NOT NULL DEFAULT 0 CHECK(target_rate >= 0),
  weight_unit TEXT NOT NULL,
  start_tdee REAL,
  created_at TEXT NOT NULL,
  last_updated TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_nutrition_logs_user ON nutrition_logs(user_id);

CREATE TABLE IF NOT EXISTS day_entries (
  log_id TEXT NOT NULL,
  id INTEGER NOT NULL,
  date TEXT NOT NULL,
  weight REAL,
  calories REAL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY(log_id, id),
  FOREIGN KEY(log_id) REFERENCES nutrition_logs(id) ON DELETE CASCADE
);
`,
	},
	{
		version: 2,
		name:    "entry_snapshots",
		sql: `
ALTER TABLE day_entries ADD COLUMN creation_estimated_tdee REAL;
ALTER TABLE day_entries ADD COLUMN goal_low REAL;
ALTER TABLE day_entries ADD COLUMN goal_high REAL;
`,
	},
}

// ApplyMigrations brings a SQLite database up to the latest schema. Applied
// versions are recorded in schema_migrations, so running it twice is a no-op.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range sqliteMigrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}
