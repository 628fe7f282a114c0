package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"bankeu-backend/internal/infrastructure/logging"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	logging.Get().Info().Str("addr", addr).Int("db", db).Msg("redis: connected")
	return r, nil
}

// Flag is a boolean cached under one key with a TTL. A nil *Flag is a
// cache that always misses.
type Flag struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewFlag returns nil when rdb is nil.
func NewFlag(rdb *redis.Client, key string, ttl time.Duration) *Flag {
	if rdb == nil {
		return nil
	}
	return &Flag{rdb: rdb, key: key, ttl: ttl}
}

// Get reports the cached value and whether there was one. An unparsable
// value counts as a miss.
func (f *Flag) Get(ctx context.Context) (value, ok bool, err error) {
	if f == nil {
		return false, false, nil
	}
	v, err := f.rdb.Get(ctx, f.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	b, perr := strconv.ParseBool(v)
	if perr != nil {
		return false, false, nil
	}
	return b, true, nil
}

func (f *Flag) Set(ctx context.Context, v bool) error {
	if f == nil {
		return nil
	}
	return f.rdb.Set(ctx, f.key, strconv.FormatBool(v), f.ttl).Err()
}

func (f *Flag) Drop(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f.rdb.Del(ctx, f.key).Err()
}
