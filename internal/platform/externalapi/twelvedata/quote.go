package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/feature/quotes/usecase"
	"stock_portal/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataQuotes はTwelve Data外部APIから最新気配値を取得するQuoteSource実装です。
type TwelveDataQuotes struct {
	cfg    Config
	client *http.Client
}

// TwelveDataQuotesがQuoteSourceを実装していることをコンパイル時に検証します。
var _ usecase.QuoteSource = (*TwelveDataQuotes)(nil)

// NewTwelveDataQuotes は指定された設定とHTTPクライアントでTwelveDataQuotesの新しいインスタンスを生成します。
func NewTwelveDataQuotes(cfg Config, client *http.Client) *TwelveDataQuotes {
	return &TwelveDataQuotes{cfg: cfg, client: client}
}

// GetQuote はTwelve Data APIの /quote から銘柄の気配値を取得します。
func (t *TwelveDataQuotes) GetQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	u := fmt.Sprintf("%s/quote?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Quote{}, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return entity.Quote{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.Quote{}, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.QuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Quote{}, err
	}
	if body.Status == "error" {
		return entity.Quote{}, fmt.Errorf("twelvedata: %s", body.Message)
	}

	price, err := strconv.ParseFloat(body.Close, 64)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse close %q: %w", body.Close, err)
	}
	change, err := parseOptionalFloat(body.Change)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse change %q: %w", body.Change, err)
	}
	pct, err := parseOptionalFloat(body.PercentChange)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("parse percent_change %q: %w", body.PercentChange, err)
	}
	var vol int64
	if body.Volume != "" {
		vol, err = strconv.ParseInt(body.Volume, 10, 64)
		if err != nil {
			return entity.Quote{}, fmt.Errorf("parse volume %q: %w", body.Volume, err)
		}
	}

	ticker := body.Symbol
	if ticker == "" {
		ticker = symbol
	}
	return entity.Quote{
		Ticker:        ticker,
		Name:          body.Name,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Volume:        vol,
	}, nil
}

// parseOptionalFloat は空文字を0として扱います。
func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
