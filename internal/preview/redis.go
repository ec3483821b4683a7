package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/logging"
)

// Cache abstracts the Redis operations used by the store to make testing easier.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// RedisCache is a concrete implementation backed by go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a new Redis-backed cache adapter.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set writes a value to Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a cached value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// Del removes a key from Redis.
func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// RedisStore keeps blobs in Redis so previews survive a dashboard restart
// until their TTL expires.
type RedisStore struct {
	cache          Cache
	ttl            time.Duration
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewRedisStore constructs a store whose entries expire after ttl.
func NewRedisStore(cache Cache, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		cache:          cache,
		ttl:            ttl,
		logger:         logger.Named("preview_store"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

func cacheKey(ref Ref) string {
	return fmt.Sprintf("preview:%s", ref)
}

// Create serializes blob and stores it under a fresh reference.
func (s *RedisStore) Create(ctx context.Context, blob Blob) (Ref, error) {
	ref := newRef()
	serialized, err := json.Marshal(blob)
	if err != nil {
		return "", logging.NewOperationError("preview.encode", string(ref), err)
	}

	if err := s.withRetry(ctx, ref, "cache.set.preview", func() error {
		return s.cache.Set(ctx, cacheKey(ref), string(serialized), s.ttl)
	}); err != nil {
		return "", err
	}
	return ref, nil
}

// Open loads the blob behind ref.
func (s *RedisStore) Open(ctx context.Context, ref Ref) (*Blob, error) {
	var raw string
	err := s.withRetry(ctx, ref, "cache.get.preview", func() error {
		value, err := s.cache.Get(ctx, cacheKey(ref))
		if err != nil {
			return err
		}
		raw = value
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var blob Blob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		logging.WithOperation(s.logger, "preview.decode", string(ref)).Warn("failed to decode cached preview", zap.Error(err))
		return nil, ErrNotFound
	}
	return &blob, nil
}

// Revoke deletes ref.
func (s *RedisStore) Revoke(ctx context.Context, ref Ref) error {
	return s.withRetry(ctx, ref, "cache.del.preview", func() error {
		return s.cache.Del(ctx, cacheKey(ref))
	})
}

func (s *RedisStore) withRetry(ctx context.Context, ref Ref, operation string, fn func() error) error {
	backoff := s.initialBackoff
	opLogger := logging.WithOperation(s.logger, operation, string(ref))
	var err error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, string(ref), ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= s.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}
		if errors.Is(err, redis.Nil) {
			return logging.NewOperationError(operation, string(ref), err)
		}

		if !isTransientError(err) || attempt == s.retryAttempts-1 {
			opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, string(ref), err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, string(ref), err)
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
