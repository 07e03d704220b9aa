package database

import (
	"fmt"

	"github.com/ahmedkatalov/fowWorkProject/app/config"
	"go.uber.org/zap"
)

// Open returns the store selected by cfg. Postgres is migrated before use; the
// returned close func releases the connection pool.
func Open(cfg *config.Config, logger *zap.Logger) (Store, func() error, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return NewMemoryStore(), func() error { return nil }, nil
	}

	db, err := config.OpenDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewPostgresStore(db, cfg.DatabaseURL, logger), db.Close, nil
}
