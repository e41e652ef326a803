// Package di provides dependency injection factories for creating application components.
package di

import (
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	quotehandler "stock_portal/internal/feature/quotes/transport/handler"
	quoteusecase "stock_portal/internal/feature/quotes/usecase"
	"stock_portal/internal/platform/cache"
	"stock_portal/internal/platform/externalapi/twelvedata"
	"stock_portal/internal/platform/externalapi/yahoo"
	infrahttp "stock_portal/internal/platform/http"
	"stock_portal/internal/shared/ratelimiter"
)

const defaultQuoteCacheTTL = time.Minute

// QuoteCacheTTL reads QUOTE_CACHE_TTL (e.g. "30s"). Invalid or empty values fall back to one minute.
func QuoteCacheTTL() time.Duration {
	if d, err := time.ParseDuration(os.Getenv("QUOTE_CACHE_TTL")); err == nil && d > 0 {
		return d
	}
	return defaultQuoteCacheTTL
}

// NewQuoteSources builds the per-market quote sources served by the portal.
// hk is intentionally absent and resolves to unsupported. rdb may be nil to run without cache.
func NewQuoteSources(rdb *redis.Client, ttl time.Duration) map[string]quoteusecase.Source {
	tdCfg := twelvedata.LoadConfig()
	us := twelvedata.NewTwelveDataQuotes(tdCfg, infrahttp.NewHTTPClient(tdCfg.Timeout))

	krCfg := yahoo.LoadConfig(".KS")
	kr := yahoo.NewChartQuotes(krCfg, infrahttp.NewHTTPClient(krCfg.Timeout))

	jpCfg := yahoo.LoadConfig(".T")
	jp := yahoo.NewChartQuotes(jpCfg, infrahttp.NewHTTPClient(jpCfg.Timeout))

	return map[string]quoteusecase.Source{
		"us": {
			QuoteSource: cache.NewCachingQuoteSource(rdb, ttl, us, "quotes:us"),
			// Twelve Data の無料プランは分単位の呼び出し上限がある
			Limiter: ratelimiter.NewRateLimiter(tdCfg.RatePerMinute, time.Minute),
		},
		"kr": {QuoteSource: cache.NewCachingQuoteSource(rdb, ttl, kr, "quotes:kr")},
		"jp": {QuoteSource: cache.NewCachingQuoteSource(rdb, ttl, jp, "quotes:jp")},
	}
}

// NewQuoteHandler wires the quote proxy handler.
func NewQuoteHandler(rdb *redis.Client) *quotehandler.QuoteHandler {
	uc := quoteusecase.NewQuoteUsecase(NewQuoteSources(rdb, QuoteCacheTTL()))
	return quotehandler.NewQuoteHandler(uc)
}
