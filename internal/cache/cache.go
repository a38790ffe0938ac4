// Package cache stores finished reports in Redis, keyed by the rule set
// fingerprint and the content hash of the checked file.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dgallion1/thesischeck/internal/docmodel"
)

const keyPrefix = "thesischeck:report:"

// ReportCache is a Redis-backed report cache.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client. ttl <= 0 stores entries without expiry.
func New(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Dial parses a redis:// URL, connects and pings the server.
func Dial(ctx context.Context, redisURL string, ttl time.Duration) (*ReportCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ttl), nil
}

func key(fingerprint, hash string) string {
	return keyPrefix + fingerprint + ":" + hash
}

// Get returns the cached report or nil on a miss.
func (c *ReportCache) Get(ctx context.Context, fingerprint, hash string) (*docmodel.Report, error) {
	data, err := c.client.Get(ctx, key(fingerprint, hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var r docmodel.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}

// Put stores r.
func (c *ReportCache) Put(ctx context.Context, fingerprint, hash string, r *docmodel.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := c.client.Set(ctx, key(fingerprint, hash), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set report: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
