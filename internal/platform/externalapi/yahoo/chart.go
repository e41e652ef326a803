package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/feature/quotes/usecase"
)

// userAgent avoids the bot filter that rejects Go's default agent.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// chartResponse represents the Yahoo Finance chart API response.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				ShortName           string  `json:"shortName"`
				LongName            string  `json:"longName"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"previousClose"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// permanentError marks failures that a retry cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// ChartQuotes はYahoo Financeのchart APIから1市場分の気配値を取得するQuoteSource実装です。
type ChartQuotes struct {
	cfg    Config
	client *http.Client
}

var _ usecase.QuoteSource = (*ChartQuotes)(nil)

// NewChartQuotes は新しい ChartQuotes を生成します。
func NewChartQuotes(cfg Config, client *http.Client) *ChartQuotes {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ChartQuotes{cfg: cfg, client: client}
}

// GetQuote fetches the quote of ticker, retrying transient failures with exponential backoff.
func (c *ChartQuotes) GetQuote(ctx context.Context, ticker string) (entity.Quote, error) {
	var lastErr error
	for i := 0; i < c.cfg.MaxAttempts; i++ {
		if i > 0 {
			delay := c.cfg.RetryDelay << uint(i-1)
			slog.Info("retrying yahoo quote fetch", "ticker", ticker, "attempt", i, "delay", delay)
			select {
			case <-ctx.Done():
				return entity.Quote{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		q, err := c.fetch(ctx, ticker)
		if err == nil {
			return q, nil
		}
		lastErr = err
		var perm permanentError
		if errors.As(err, &perm) || ctx.Err() != nil {
			break
		}
		slog.Warn("yahoo quote fetch attempt failed", "ticker", ticker, "attempt", i+1, "error", err)
	}
	return entity.Quote{}, lastErr
}

func (c *ChartQuotes) fetch(ctx context.Context, ticker string) (entity.Quote, error) {
	symbol := ticker + c.cfg.SymbolSuffix
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.cfg.BaseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Quote{}, permanentError{err}
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(req)
	if err != nil {
		return entity.Quote{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	var body chartResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)

	if body.Chart.Error != nil {
		return entity.Quote{}, permanentError{fmt.Errorf("yahoo: %s - %s", body.Chart.Error.Code, body.Chart.Error.Description)}
	}
	if res.StatusCode >= 500 {
		return entity.Quote{}, fmt.Errorf("yahoo http %d", res.StatusCode)
	}
	if res.StatusCode >= 400 {
		return entity.Quote{}, permanentError{fmt.Errorf("yahoo http %d", res.StatusCode)}
	}
	if decodeErr != nil {
		return entity.Quote{}, permanentError{fmt.Errorf("decode chart: %w", decodeErr)}
	}
	if len(body.Chart.Result) == 0 {
		return entity.Quote{}, permanentError{fmt.Errorf("yahoo: empty chart for %s", symbol)}
	}

	meta := body.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	q := entity.Quote{
		Ticker: ticker,
		Name:   meta.ShortName,
		Price:  meta.RegularMarketPrice,
		Volume: meta.RegularMarketVolume,
	}
	if q.Name == "" {
		q.Name = meta.LongName
	}
	if prev != 0 {
		q.Change = meta.RegularMarketPrice - prev
		q.ChangePercent = q.Change / prev * 100
	}
	return q, nil
}
