package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minebot/src/model"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL   = 60 * time.Minute
	memoryPrefix = "memory:"
	// MaxRecords bounds each session list in Redis
	MaxRecords = 100
)

// RedisStorage mirrors memory records into one Redis list per session
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStorage, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStorage{client: client, ttl: ttl}, nil
}

// key generates a Redis key for the given session ID
func (r *RedisStorage) key(sessionID string) string {
	return memoryPrefix + sessionID
}

// Push appends a record to its session list, trims the list and refreshes its TTL
func (r *RedisStorage) Push(ctx context.Context, record model.MemoryRecord) error {
	data, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal memory record: %w", err)
	}

	key := r.key(record.Session)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -MaxRecords, -1)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push memory record: %w", err)
	}
	return nil
}

// Recent returns up to n newest records of a session, oldest first
func (r *RedisStorage) Recent(ctx context.Context, sessionID string, n int) ([]model.MemoryRecord, error) {
	if n <= 0 || n > MaxRecords {
		n = MaxRecords
	}
	raw, err := r.client.LRange(ctx, r.key(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read memory records: %w", err)
	}

	records := make([]model.MemoryRecord, 0, len(raw))
	for _, item := range raw {
		var record model.MemoryRecord
		if err := sonic.UnmarshalString(item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal memory record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a session list
func (r *RedisStorage) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete memory records: %w", err)
	}
	return nil
}

// GetTTL gets remaining TTL for a session list
func (r *RedisStorage) GetTTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get TTL: %w", err)
	}
	return ttl, nil
}

// Close closes the Redis connection
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Ping tests Redis connection
func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
