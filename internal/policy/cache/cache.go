// Package cache provides a redis read-through cache over the policy store.
//
// Policy reads sit on the submission hot path; the cache keeps them off
// postgres. Mutations write through to the backing store and invalidate
// eagerly, with a TTL bounding staleness if an invalidation is lost.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"canopy/internal/policy"
	"canopy/internal/policy/metrics"
	"canopy/pkg/domain"
)

// Cache wraps a policy.Store with redis. It implements policy.Store.
type Cache struct {
	next    policy.Store
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func New(next policy.Store, client *redis.Client, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{next: next, client: client, ttl: ttl, metrics: m}
}

func cacheKey(category domain.Category) string {
	return "canopy:policy:" + category.String()
}

// cachedPolicy is the redis representation. MaxAge is serialized in seconds
// to keep the entry readable with redis-cli.
type cachedPolicy struct {
	Category             string   `json:"category"`
	MinValue             float64  `json:"min_value"`
	MaxValue             float64  `json:"max_value"`
	MaxAgeSeconds        int64    `json:"max_age_seconds"`
	AllowNegative        bool     `json:"allow_negative"`
	RequiredEvidence     []string `json:"required_evidence"`
	AllowedUnits         []string `json:"allowed_units"`
	AllowedMethodologies []string `json:"allowed_methodologies"`
}

func (c *Cache) Get(ctx context.Context, category domain.Category) (policy.ValidationPolicy, error) {
	raw, err := c.client.Get(ctx, cacheKey(category)).Bytes()
	if err == nil {
		var entry cachedPolicy
		if err := json.Unmarshal(raw, &entry); err == nil {
			c.metrics.RecordCacheHit()
			return fromCached(entry), nil
		}
		// Corrupt entry: fall through to the store and overwrite below.
	} else if !errors.Is(err, redis.Nil) {
		// Redis trouble must not take policy reads down; serve from the store.
		c.metrics.RecordCacheError()
		return c.next.Get(ctx, category)
	}

	c.metrics.RecordCacheMiss()
	p, err := c.next.Get(ctx, category)
	if err != nil {
		return policy.ValidationPolicy{}, err
	}

	if body, err := json.Marshal(toCached(p)); err == nil {
		_ = c.client.Set(ctx, cacheKey(category), body, c.ttl).Err()
	}
	return p, nil
}

func (c *Cache) Put(ctx context.Context, p policy.ValidationPolicy) error {
	if err := c.next.Put(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.Category)
	return nil
}

func (c *Cache) AddUnit(ctx context.Context, category domain.Category, unit domain.Unit) (bool, error) {
	added, err := c.next.AddUnit(ctx, category, unit)
	if err == nil && added {
		c.invalidate(ctx, category)
	}
	return added, err
}

func (c *Cache) AddMethodology(ctx context.Context, category domain.Category, methodology domain.Methodology) (bool, error) {
	added, err := c.next.AddMethodology(ctx, category, methodology)
	if err == nil && added {
		c.invalidate(ctx, category)
	}
	return added, err
}

func (c *Cache) invalidate(ctx context.Context, category domain.Category) {
	if err := c.client.Del(ctx, cacheKey(category)).Err(); err != nil {
		c.metrics.RecordCacheError()
	}
}

func toCached(p policy.ValidationPolicy) cachedPolicy {
	return cachedPolicy{
		Category:             p.Category.String(),
		MinValue:             p.MinValue,
		MaxValue:             p.MaxValue,
		MaxAgeSeconds:        int64(p.MaxAge / time.Second),
		AllowNegative:        p.AllowNegative,
		RequiredEvidence:     p.RequiredEvidence,
		AllowedUnits:         p.AllowedUnits,
		AllowedMethodologies: p.AllowedMethodologies,
	}
}

func fromCached(entry cachedPolicy) policy.ValidationPolicy {
	return policy.ValidationPolicy{
		Category:             domain.Category(entry.Category),
		MinValue:             entry.MinValue,
		MaxValue:             entry.MaxValue,
		MaxAge:               time.Duration(entry.MaxAgeSeconds) * time.Second,
		AllowNegative:        entry.AllowNegative,
		RequiredEvidence:     entry.RequiredEvidence,
		AllowedUnits:         entry.AllowedUnits,
		AllowedMethodologies: entry.AllowedMethodologies,
	}
}
