package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// PersonaCache keeps persona system instructions in Redis so repeated
// replies for the same content domain skip the profiles API round-trip.
type PersonaCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewPersonaCache(client *redisv9.Client, ttl time.Duration) *PersonaCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PersonaCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *PersonaCache) Get(ctx context.Context, contentID uint) (string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(contentID)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get persona failed: %w", err)
	}
	return raw, true, nil
}

func (c *PersonaCache) Set(ctx context.Context, contentID uint, instructions string) error {
	if err := c.client.Set(ctx, c.key(contentID), instructions, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set persona failed: %w", err)
	}
	return nil
}

func (c *PersonaCache) key(contentID uint) string {
	return fmt.Sprintf("persona:instructions:%d", contentID)
}
