package repository

import (
	"context"
	"encoding/json"
	"time"

	"codeshin_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// readThrough 先读 Redis，未命中或 Redis 不可用时回源并写回缓存
func readThrough[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if rdb != nil {
		raw, err := rdb.Get(ctx, key).Bytes()
		if err == nil {
			var v T
			if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
				return v, nil
			}
		} else if err != redis.Nil {
			logger.Log.Debug("Redis read failed, falling back to database", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if rdb != nil {
		if data, err := json.Marshal(v); err == nil {
			if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
				logger.Log.Debug("Redis write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return v, nil
}
