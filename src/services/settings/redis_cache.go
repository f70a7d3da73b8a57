package settings

import (
	"context"
	"fmt"
	"time"

	"Backend-FaceAttend/src/services/attendance"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RedisCache shares cutoffs between instances. Redis failures degrade to a miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ attendance.SettingsCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, log: log.Named("settings-cache")}
}

func cutoffKey(operatorID primitive.ObjectID) string {
	return fmt.Sprintf("settings:cutoff:%s", operatorID.Hex())
}

func (c *RedisCache) Get(ctx context.Context, operatorID primitive.ObjectID) (string, bool) {
	v, err := c.client.Get(ctx, cutoffKey(operatorID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache get failed", zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, operatorID primitive.ObjectID, cutoff string) {
	// A zero TTL disables caching, as in the memory cache; redis would keep the key forever.
	if c.ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, cutoffKey(operatorID), cutoff, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.Error(err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, operatorID primitive.ObjectID) {
	if err := c.client.Del(ctx, cutoffKey(operatorID)).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.Error(err))
	}
}
