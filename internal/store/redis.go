package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis hashes, one hash per entity.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store from a redis:// URL.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Ping verifies connectivity. Startup calls it so a misconfigured store
// fails fast instead of on the first request.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) SetAttribute(ctx context.Context, entity, attribute, value string, ttl time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, entity, attribute, value)
	if ttl > 0 {
		pipe.Expire(ctx, entity, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", entity, attribute, err)
	}
	return nil
}

func (s *RedisStore) GetAttribute(ctx context.Context, entity, attribute string) (string, bool, error) {
	val, err := s.client.HGet(ctx, entity, attribute).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s.%s: %w", entity, attribute, err)
	}
	return val, true, nil
}

func (s *RedisStore) GetAllAttributes(ctx context.Context, entity string) (map[string]string, error) {
	attrs, err := s.client.HGetAll(ctx, entity).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes of %s: %w", entity, err)
	}
	return attrs, nil
}

func (s *RedisStore) DeleteAttribute(ctx context.Context, entity, attribute string) error {
	if err := s.client.HDel(ctx, entity, attribute).Err(); err != nil {
		return fmt.Errorf("failed to delete %s.%s: %w", entity, attribute, err)
	}
	return nil
}

func (s *RedisStore) DeleteEntity(ctx context.Context, entity string) error {
	if err := s.client.Del(ctx, entity).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	return nil
}

func (s *RedisStore) ScanEntities(ctx context.Context, prefix string) ([]string, error) {
	var (
		entities []string
		cursor   uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s*: %w", prefix, err)
		}
		entities = append(entities, keys...)
		cursor = next
		if cursor == 0 {
			return entities, nil
		}
	}
}

func (s *RedisStore) AddToSet(ctx context.Context, key, member string) error {
	if err := s.client.SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("failed to add to set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) RemoveFromSet(ctx context.Context, key, member string) error {
	if err := s.client.SRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("failed to remove from set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read set %s: %w", key, err)
	}
	return members, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
