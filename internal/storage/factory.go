package storage

import (
	"context"
	"fmt"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/config"
)

// NewStore opens the backend selected by STORAGE_BACKEND. It does not migrate.
func NewStore(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "sqlite":
		logger.Infof("storage: using sqlite at %s", cfg.SQLitePath)
		return OpenSQLite(cfg.SQLitePath, logger)
	case "postgres":
		logger.Info("storage: using postgres")
		return OpenPostgres(ctx, cfg.DBDSN, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
	}
}

// NewMemoryStore returns a migrated in-memory SQLite store.
func NewMemoryStore(ctx context.Context, logger internal.Logger) (*SQLStore, error) {
	s, err := OpenSQLite(":memory:", logger)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
