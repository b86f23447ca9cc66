package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisPrefix  = "bullion:"
	redisTimeout = 2 * time.Second
)

// RedisStore is a Store backed by a Redis string key with an expiry.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key, baseURL string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    redisPrefix + scope(key, baseURL),
		ttl:    ttl,
	}
}

// DialRedis connects to the server at a redis:// URL and checks it responds.
func DialRedis(url, key, baseURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envRedisURL, err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return NewRedisStore(client, key, baseURL, ttl), nil
}

func (s *RedisStore) Get(dst any) bool {
	if disabled() {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, dst)
}

func (s *RedisStore) Put(items any) {
	if disabled() {
		return
	}
	data, ok := encodeEntry(items)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	_ = s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStore) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ClearRedis deletes every bullion cache key and returns how many were removed.
func ClearRedis(ctx context.Context, client *redis.Client) (int, error) {
	removed := 0
	iter := client.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	return removed, iter.Err()
}

// ClearRedisURL connects to url and runs ClearRedis.
func ClearRedisURL(ctx context.Context, url string) (int, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envRedisURL, err)
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()
	return ClearRedis(ctx, client)
}
