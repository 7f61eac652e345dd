package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Results rarely change (the tables behind them are program constants), but
// a bounded TTL keeps stale entries from surviving catalog updates forever.
const resultTTL = 24 * time.Hour

// Redis is a redis-backed Cache.
type Redis struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedis connects a cache to the redis instance at addr.
func NewRedis(addr string) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Redis{
		client: rdb,
		ctx:    context.Background(),
	}
}

func (r *Redis) Get(key string) (string, bool) {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *Redis) Set(key string, value string) error {
	return r.client.Set(r.ctx, key, value, resultTTL).Err()
}
