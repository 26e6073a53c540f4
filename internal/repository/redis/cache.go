package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	questionCachePrefix = "questions:"
	questionCatalogKey  = questionCachePrefix + "catalog"
	defaultQuestionTTL  = 5 * time.Minute
)

// QuestionCache keeps the question catalog in Redis so draws skip the database
type QuestionCache struct {
	client *Client
	ttl    time.Duration
}

// NewQuestionCache creates a new question cache
func NewQuestionCache(client *Client, ttl time.Duration) *QuestionCache {
	if ttl <= 0 {
		ttl = defaultQuestionTTL
	}
	return &QuestionCache{client: client, ttl: ttl}
}

// Get returns the cached catalog, or nil on a cache miss
func (c *QuestionCache) Get(ctx context.Context) ([]domain.Question, error) {
	data, err := c.client.rdb.Get(ctx, questionCatalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question catalog: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question catalog: %w", err)
	}
	return questions, nil
}

// Set caches the catalog
func (c *QuestionCache) Set(ctx context.Context, questions []domain.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal question catalog: %w", err)
	}
	return c.client.rdb.Set(ctx, questionCatalogKey, data, c.ttl).Err()
}

// Invalidate drops the cached catalog
func (c *QuestionCache) Invalidate(ctx context.Context) error {
	return c.client.rdb.Del(ctx, questionCatalogKey).Err()
}

// FlushAll removes every question cache key
func (c *QuestionCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := questionCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
