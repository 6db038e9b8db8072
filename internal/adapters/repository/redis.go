package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps all weights in one Redis hash so several service
// instances share what they learn.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to addr and verifies the connection with PING.
func NewRedisStore(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisStore, error) {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", ErrOpenStore, err)
	}
	return NewRedisStoreFromClient(client, opts...), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, opts ...Option) *RedisStore {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisStore{client: client, key: o.hashKey}
}

func (s *RedisStore) Get(ctx context.Context, key string) (v float64, ok bool, err error) {
	defer observe(BackendRedis, "get", time.Now(), &err)
	v, err = s.client.HGet(ctx, s.key, key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("hget %q: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value float64) (err error) {
	defer observe(BackendRedis, "put", time.Now(), &err)
	if key == "" {
		return ErrEmptyKey
	}
	if err = s.client.HSet(ctx, s.key, key, strconv.FormatFloat(value, 'g', -1, 64)).Err(); err != nil {
		return fmt.Errorf("hset %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) GetAll(ctx context.Context) (out map[string]float64, err error) {
	defer observe(BackendRedis, "get_all", time.Now(), &err)
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}
	out = make(map[string]float64, len(raw))
	for k, v := range raw {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return nil, fmt.Errorf("parse weight %q: %w", k, perr)
		}
		out[k] = f
	}
	return out, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
