// Package usecase は市場ごとの価格ソースを束ねる気配値取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"

	"stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/shared/ratelimiter"
)

// QuoteSource は1市場分の気配値取得元を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteSource interface {
	GetQuote(ctx context.Context, ticker string) (entity.Quote, error)
}

// Source は市場に割り当てる価格ソースです。Limiter が nil の場合は流量制御を行いません。
type Source struct {
	QuoteSource QuoteSource
	Limiter     ratelimiter.RateLimiterInterface
}

// QuoteUsecase は市場タグ（小文字）から価格ソースを選び気配値を返します。
type QuoteUsecase struct {
	sources map[string]Source
}

// NewQuoteUsecase は新しい QuoteUsecase を作成します。sources に無い市場は unsupported になります。
func NewQuoteUsecase(sources map[string]Source) *QuoteUsecase {
	normalized := make(map[string]Source, len(sources))
	for m, s := range sources {
		if s.QuoteSource == nil {
			continue
		}
		normalized[strings.ToLower(m)] = s
	}
	return &QuoteUsecase{sources: normalized}
}

// Supports は市場にライブの価格ソースがあるかを返します。
func (qu *QuoteUsecase) Supports(market string) bool {
	_, ok := qu.sources[strings.ToLower(strings.TrimSpace(market))]
	return ok
}

// GetQuote は指定市場の価格ソースから気配値を取得します。
func (qu *QuoteUsecase) GetQuote(ctx context.Context, market, ticker string) (entity.Quote, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return entity.Quote{}, ErrEmptyTicker
	}
	src, ok := qu.sources[strings.ToLower(strings.TrimSpace(market))]
	if !ok {
		return entity.Quote{}, ErrUnsupportedMarket
	}
	if src.Limiter != nil {
		if err := src.Limiter.Wait(ctx); err != nil {
			return entity.Quote{}, err
		}
	}

	q, err := src.QuoteSource.GetQuote(ctx, ticker)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("quote %s/%s: %w", market, ticker, err)
	}
	if q.Ticker == "" {
		q.Ticker = ticker
	}
	return q, nil
}
