package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/erp/shopify-connector/internal/infrastructure/config"
)

// NewIdempotencyStore picks the delivery store for the configuration: Redis
// when a host is set, in-memory otherwise. When Redis is configured but
// unreachable the in-memory store is used unless requireRedis is set.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, requireRedis bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		if requireRedis {
			return nil, fmt.Errorf("redis host is required for webhook idempotency")
		}
		logger.Info("Using in-memory webhook idempotency store")
		return NewInMemoryIdempotencyStore(0), nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		if requireRedis {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
			"duplicate deliveries to other replicas will not be detected",
			zap.String("addr", cfg.Addr()), zap.Error(err))
		return NewInMemoryIdempotencyStore(0), nil
	}
	logger.Info("Using Redis webhook idempotency store", zap.String("addr", cfg.Addr()))
	return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
}
