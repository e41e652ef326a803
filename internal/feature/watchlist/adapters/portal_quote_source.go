package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	quoteentity "stock_portal/internal/feature/quotes/domain/entity"
	quotedto "stock_portal/internal/feature/quotes/transport/http/dto"
	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/usecase"
)

// portalQuoteSource は1市場分の気配値をポータルの /quotes プロキシから取得します。
type portalQuoteSource struct {
	portal portalClient
	market entity.Market
}

var _ usecase.QuoteSource = (*portalQuoteSource)(nil)

// NewPortalQuoteSource は market 用の QuoteSource を生成します。
func NewPortalQuoteSource(cfg PortalConfig, client *http.Client, market entity.Market) *portalQuoteSource {
	return &portalQuoteSource{portal: newPortalClient(cfg, client), market: market}
}

// NewPortalQuoteSources はライブソースを持つ市場ごとの QuoteSource を返します。
// live に含まれない市場は unsupported として扱われます。
func NewPortalQuoteSources(cfg PortalConfig, client *http.Client, live []entity.Market) map[entity.Market]usecase.QuoteSource {
	out := make(map[entity.Market]usecase.QuoteSource, len(live))
	for _, m := range live {
		out[m] = NewPortalQuoteSource(cfg, client, m)
	}
	return out
}

func (s *portalQuoteSource) GetQuote(ctx context.Context, ticker string) (quoteentity.Quote, error) {
	var res quotedto.QuoteResponse
	path := "/quotes/" + url.PathEscape(string(s.market)) + "/" + url.PathEscape(ticker)
	if _, err := s.portal.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		var pe *PortalError
		if errors.As(err, &pe) && pe.Message == usecase.UnsupportedMarket {
			return quoteentity.Quote{}, errors.New(usecase.UnsupportedMarket)
		}
		return quoteentity.Quote{}, err
	}
	return quoteentity.Quote{
		Ticker:        res.Ticker,
		Name:          res.Name,
		Price:         res.Price,
		Change:        res.Change,
		ChangePercent: res.ChangePercent,
		Volume:        res.Volume,
	}, nil
}
