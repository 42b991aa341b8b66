package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/config"
)

// NewStore opens the backend selected by cfg.StorageBackend.
func NewStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case "file":
		logger.Infof("storage: using JSON files in %s", cfg.DataDir)
		s, err := NewFileStorage(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		logger.Infof("storage: using postgres")
		s, err := NewPostgresStorage(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("storage: create sqlite dir: %w", err)
			}
		}
		logger.Infof("storage: using sqlite at %s", cfg.SQLitePath)
		s, err := NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
