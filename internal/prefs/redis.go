package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps preferences in a single Redis hash, so the same editor
// settings follow a user across machines. The hash key is namespace-scoped;
// several profiles can share one Redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing client. namespace defaults to "default".
func NewRedisStore(client *redis.Client, namespace string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("prefs: redis client cannot be nil")
	}
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{client: client, key: "codecraft:prefs:" + namespace}, nil
}

// DialRedisStore connects to addr and pings it before returning.
func DialRedisStore(ctx context.Context, addr, password, namespace string) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("prefs: redis addr cannot be empty")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("prefs: pinging redis at %s: %w", addr, err)
	}
	return NewRedisStore(client, namespace)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("prefs: redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("prefs: redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) All(ctx context.Context) (map[string]string, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("prefs: redis getall: %w", err)
	}
	return all, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
