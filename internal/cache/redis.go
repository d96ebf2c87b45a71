// internal/cache/redis.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis creates a client for addr/db and pings it before returning.
// addr may also be a redis:// URL.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	var opts *redis.Options
	if opt, err := redis.ParseURL(addr); err == nil {
		opts = opt
	} else {
		opts = &redis.Options{Addr: addr, DB: db}
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
