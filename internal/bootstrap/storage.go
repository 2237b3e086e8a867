package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-notecanvas/internal/config"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/repository"
	"ai-notecanvas/internal/repository/contract"
	"ai-notecanvas/internal/repository/implementation"
	"ai-notecanvas/internal/repository/memory"
	"ai-notecanvas/pkg/database"
)

const storageOpenTimeout = 10 * time.Second

// OpenKVStore opens the configured backend. Any failure degrades to the
// in-memory store; persistent reports whether the returned store survives
// a restart.
func OpenKVStore(ctx context.Context, cfg config.StorageConfig, log logger.ILogger) (kv contract.KVStore, persistent bool) {
	kv, err := openDriver(ctx, cfg, log)
	if err != nil {
		log.Warn("Bootstrap", "Storage unavailable, running in memory for this session", map[string]interface{}{
			"driver": cfg.Driver,
			"error":  fmt.Errorf("%w: %v", repository.ErrPersistenceUnavailable, err).Error(),
		})
		return memory.NewKVStore(), false
	}
	return kv, cfg.Driver != "memory"
}

func openDriver(ctx context.Context, cfg config.StorageConfig, log logger.ILogger) (contract.KVStore, error) {
	ctx, cancel := context.WithTimeout(ctx, storageOpenTimeout)
	defer cancel()

	switch cfg.Driver {
	case "memory":
		return memory.NewKVStore(), nil

	case "badger":
		return implementation.NewBadgerStore(implementation.BadgerConfig{
			Path:       cfg.Path,
			SyncWrites: true,
		}, log)

	case "postgres":
		if cfg.Connection == "" {
			return nil, fmt.Errorf("DB_CONNECTION_STRING is required for the postgres driver")
		}
		db, err := database.NewGormDBFromDSN(cfg.Connection, false)
		if err != nil {
			return nil, err
		}
		return implementation.NewPostgresStore(db)

	case "redis":
		return implementation.NewRedisStore(ctx, cfg.RedisURL)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
