package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"cv-builder/internal/config"
	"cv-builder/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by Ping when no Redis is configured or reachable.
// Every other method degrades to a cache miss or a no-op instead.
var ErrUnavailable = errors.New("redis unavailable")

type Redis struct {
	client *redis.Client
	logger *logger.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, log *logger.Logger) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("cache")

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 600 * time.Second
	}

	if cfg.Host == "" {
		log.Info("Redis not configured, bypassing cache")
		return &Redis{logger: log, ttl: ttl}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, bypassing cache", "error", err)
		_ = client.Close()
		return &Redis{logger: log, ttl: ttl}
	}

	return &Redis{client: client, logger: log, ttl: ttl}
}

// NewFromClient wraps a client owned by the caller.
func NewFromClient(client *redis.Client, log *logger.Logger, ttl time.Duration) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 600 * time.Second
	}
	return &Redis{client: client, logger: log, ttl: ttl}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("Redis unavailable, bypassing cache", "error", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !r.Available() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if !r.Available() || len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if !r.Available() || pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn("Redis delete error", "key", k, "pattern", pattern, "error", err)
		}
	}
	return iter.Err()
}

// SetIfNotExists reports whether the key was set. Without Redis it reports
// true so callers that use it as a throttle fall through to the real work.
func (r *Redis) SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	if !r.Available() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return true, err
	}
	return ok, nil
}
