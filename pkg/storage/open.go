package storage

import (
	"fmt"

	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/db"
	"github.com/frozify/storefront/pkg/redis"
)

// Open selects the backend named by cfg.Backend. Clients not needed by the backend may be nil.
func Open(cfg config.StorageConfig, redisClient *redis.Client, dbClient *db.Client) (Store, error) {
	switch cfg.Backend {
	case "", config.StorageBackendMemory:
		return NewMemory(), nil
	case config.StorageBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis storage requires a redis client")
		}
		return NewRedis(redisClient, cfg.TTL)
	case config.StorageBackendSQL:
		if dbClient == nil {
			return nil, fmt.Errorf("sql storage requires a database client")
		}
		return NewSQL(dbClient.DB(), cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
