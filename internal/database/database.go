package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/pkg/utils"

	_ "github.com/glebarez/go-sqlite" // pure Go SQLite driver, registered as "sqlite"
	_ "github.com/lib/pq"             // PostgreSQL driver
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"

	memoryDSN = ":memory:?_pragma=foreign_keys(1)"
)

// Open connects to the configured storage backend and verifies the connection.
// The backend must be chosen explicitly; an unreachable live database is an error,
// never a reason to switch to memory.
func Open(ctx context.Context, cfg config.StorageConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Backend {
	case config.StorageBackendLive:
		db, err = sql.Open(driverPostgres, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	case config.StorageBackendMemory:
		db, err = sql.Open(driverSQLite, memoryDSN)
		if err != nil {
			return nil, fmt.Errorf("opening in-memory sqlite: %w", err)
		}
		// Every connection to :memory: is a separate database, so the pool is pinned to one.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s storage: %w", cfg.Backend, err)
	}

	fields := map[string]interface{}{"backend": cfg.Backend}
	if cfg.Backend == config.StorageBackendLive {
		fields["host"] = cfg.Host
		fields["database"] = cfg.Name
	} else {
		utils.LogWarn(nil, "Using in-memory storage; data is discarded on shutdown", fields)
	}
	utils.LogInfo("Storage connected", fields)
	return db, nil
}
