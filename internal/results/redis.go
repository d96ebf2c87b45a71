package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lichsuviet/minigames/internal/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultKeyPrefix namespaces the per-game-type result lists.
const DefaultKeyPrefix = "minigames:results"

// RedisLog keeps one Redis list per game type; RPUSH keeps append order.
type RedisLog struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLog wraps an already connected client.
func NewRedisLog(rdb *redis.Client, prefix string) *RedisLog {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisLog{rdb: rdb, prefix: prefix}
}

func (l *RedisLog) key(gameType models.GameType) string {
	return fmt.Sprintf("%s:%s", l.prefix, gameType)
}

// Append serializes res to JSON and pushes it onto the game type's list.
func (l *RedisLog) Append(ctx context.Context, res models.GameResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}
	key := l.key(res.GameType)
	if err := l.rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", key, err)
	}
	return nil
}

// List reads the whole list. Entries that fail to decode are skipped and logged.
func (l *RedisLog) List(ctx context.Context, gameType models.GameType) ([]models.GameResult, error) {
	key := l.key(gameType)
	raw, err := l.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to LRange Redis list '%s': %w", key, err)
	}
	out := make([]models.GameResult, 0, len(raw))
	for _, item := range raw {
		var res models.GameResult
		if err := json.Unmarshal([]byte(item), &res); err != nil {
			log.WithField("key", key).Warnf("skipping undecodable game result: %v", err)
			continue
		}
		out = append(out, res)
	}
	return out, nil
}
