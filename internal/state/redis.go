package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dialog_state:"

// RedisStore persists states as JSON so parked forms survive restarts.
// A zero ttl keeps keys until they are cleared.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis parses url, connects and pings.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func stateKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (State, error) {
	val, err := r.client.Get(ctx, stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("get state %d: %w", userID, err)
	}
	var s State
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return State{}, fmt.Errorf("decode state %d: %w", userID, err)
	}
	return s, nil
}

func (r *RedisStore) Set(ctx context.Context, userID int64, s State) error {
	if s.IsIdle() {
		return r.Clear(ctx, userID)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state %d: %w", userID, err)
	}
	if err := r.client.Set(ctx, stateKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set state %d: %w", userID, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear state %d: %w", userID, err)
	}
	return nil
}
