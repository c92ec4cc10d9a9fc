// Package cache keeps each survey's most recent evaluation in Redis so reads
// do not have to touch Postgres.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"heatsurvey_backend/internal/heatloss/transport"
	"heatsurvey_backend/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "heatloss:eval:"
	defaultTTL = 24 * time.Hour
)

// Cache stores evaluation responses keyed by organization and survey.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient opens a go-redis client from a redis:// or rediss:// URL.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

// New wraps rdb. A non-positive ttl falls back to 24h.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key returns the cache key for a survey.
func Key(orgID, surveyID uuid.UUID) string {
	return keyPrefix + orgID.String() + ":" + surveyID.String()
}

// Get returns the cached evaluation. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, orgID, surveyID uuid.UUID) (*transport.EvaluationResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(orgID, surveyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached evaluation: %w", err)
	}

	var resp transport.EvaluationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// A payload from an older schema is treated as a miss and dropped.
		_ = c.rdb.Del(ctx, Key(orgID, surveyID)).Err()
		return nil, false, nil
	}
	return &resp, true, nil
}

// Set stores resp with the configured TTL.
func (c *Cache) Set(ctx context.Context, orgID, surveyID uuid.UUID, resp transport.EvaluationResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(orgID, surveyID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached evaluation: %w", err)
	}
	return nil
}

// Invalidate drops the cached evaluation for a survey.
func (c *Cache) Invalidate(ctx context.Context, orgID, surveyID uuid.UUID) error {
	if err := c.rdb.Del(ctx, Key(orgID, surveyID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached evaluation: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
