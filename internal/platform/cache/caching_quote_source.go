// Package cache provides caching implementations for quote source interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/feature/quotes/usecase"
)

// CachingQuoteSource decorates a QuoteSource with Redis caching.
// Only successful quotes are cached; failures always reach the inner source on the next call.
type CachingQuoteSource struct {
	inner     usecase.QuoteSource
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.QuoteSource = (*CachingQuoteSource)(nil)

// NewCachingQuoteSource decorates a QuoteSource with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "quotes".
func NewCachingQuoteSource(rdb *redis.Client, ttl time.Duration, inner usecase.QuoteSource, namespace string) *CachingQuoteSource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "quotes"
	}
	return &CachingQuoteSource{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// GetQuote returns the cached quote when present, otherwise fetches it from the inner source.
func (c *CachingQuoteSource) GetQuote(ctx context.Context, ticker string) (entity.Quote, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.GetQuote(ctx, ticker)
	}

	key := c.cacheKey(ticker)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Quote
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the provider
	out, err := c.inner.GetQuote(ctx, ticker)
	if err != nil {
		return entity.Quote{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for one ticker.
func (c *CachingQuoteSource) cacheKey(ticker string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(ticker))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
