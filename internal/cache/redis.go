// Package cache keeps finished translations in Redis so several LegalEase
// processes can share them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/unicode/norm"
)

const keyPrefix = "legalease:tm:"

type entry struct {
	Text    string    `json:"text"`
	Backend string    `json:"backend"`
	Stored  time.Time `json:"stored"`
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheWithClient(rdb, ttl)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Key derives the Redis key for a text and language pair.
func Key(text, source, target string) string {
	sum := sha256.Sum256([]byte(norm.NFC.String(strings.TrimSpace(text))))
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, source, target, hex.EncodeToString(sum[:]))
}

func (c *RedisCache) Lookup(ctx context.Context, text, source, target string) (string, bool, error) {
	raw, err := c.client.Get(ctx, Key(text, source, target)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return "", false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return e.Text, true, nil
}

// Remember stores a translation. A zero TTL keeps it forever.
func (c *RedisCache) Remember(ctx context.Context, text, source, target, translated, backend string) error {
	raw, err := json.Marshal(entry{Text: translated, Backend: backend, Stored: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(text, source, target), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Count returns the number of cached translations.
func (c *RedisCache) Count(ctx context.Context) (int, error) {
	n := 0
	err := c.scan(ctx, func(keys []string) error {
		n += len(keys)
		return nil
	})
	return n, err
}

// Clear deletes every cached translation and reports how many were removed.
func (c *RedisCache) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := c.scan(ctx, func(keys []string) error {
		n, err := c.client.Del(ctx, keys...).Result()
		removed += n
		return err
	})
	return removed, err
}

func (c *RedisCache) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 200).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
