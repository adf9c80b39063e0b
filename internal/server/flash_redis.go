package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flashKeyPrefix = "bigform:flash:"

// RedisFlashStore keeps notices in Redis so several server processes can
// share sessions. Expiry is delegated to the key TTL.
type RedisFlashStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient creates a pooled client with the timeouts used elsewhere in
// the stack. It does not dial; call Ping to verify connectivity.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func NewRedisFlashStore(client *redis.Client, ttl time.Duration) *RedisFlashStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisFlashStore{client: client, ttl: ttl}
}

func flashKey(sessionID string) string {
	return flashKeyPrefix + sessionID
}

func (s *RedisFlashStore) Set(ctx context.Context, sessionID, msg string) error {
	if err := s.client.Set(ctx, flashKey(sessionID), msg, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set flash: %w", err)
	}
	return nil
}

func (s *RedisFlashStore) Consume(ctx context.Context, sessionID string) (string, bool, error) {
	msg, err := s.client.GetDel(ctx, flashKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis getdel flash: %w", err)
	}
	return msg, true, nil
}

func (s *RedisFlashStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisFlashStore) Close() error {
	return s.client.Close()
}
