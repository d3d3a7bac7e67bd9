package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"qrmenu/internal/domain"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) MenuKey(restaurantID string) string {
	return "menu:" + restaurantID
}

// GetMenu returns the cached document, or nil on a miss.
func (c *RedisCache) GetMenu(ctx context.Context, restaurantID string) (*domain.MenuDocument, error) {
	raw, err := c.Client.Get(ctx, c.MenuKey(restaurantID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc domain.MenuDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *RedisCache) SetMenu(ctx context.Context, doc *domain.MenuDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.MenuKey(doc.Restaurant.ID), raw, c.TTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, restaurantID string) error {
	return c.Client.Del(ctx, c.MenuKey(restaurantID)).Err()
}
