package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "aiu:history"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Size     int
}

// RedisMirror keeps the window replicated in a Redis list so history
// survives restarts. Entries are JSON, RPUSHed and trimmed to the
// window size from the tail.
type RedisMirror struct {
	rdb  *redis.Client
	key  string
	size int
}

func NewRedisMirror(ctx context.Context, cfg RedisConfig) (*RedisMirror, error) {
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = defaultRedisKey
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultWindowSize
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &RedisMirror{rdb: rdb, key: key, size: size}, nil
}

func (m *RedisMirror) Append(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	pipe := m.rdb.TxPipeline()
	pipe.RPush(ctx, m.key, string(b))
	pipe.LTrim(ctx, m.key, int64(-m.size), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

// Load returns up to n most recent entries, oldest first. Lines that
// fail to decode are skipped so one bad record cannot poison a restore.
func (m *RedisMirror) Load(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = m.size
	}
	raw, err := m.rdb.LRange(ctx, m.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	out := make([]Entry, 0, len(raw))
	for _, line := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *RedisMirror) Clear(ctx context.Context) error {
	return m.rdb.Del(ctx, m.key).Err()
}

func (m *RedisMirror) Close() error {
	return m.rdb.Close()
}
