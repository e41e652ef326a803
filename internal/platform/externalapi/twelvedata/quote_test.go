package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestQuotes(t *testing.T, handler http.HandlerFunc) *TwelveDataQuotes {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewTwelveDataQuotes(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL}, server.Client())
}

func TestNewTwelveDataQuotes(t *testing.T) {
	t.Parallel()

	cfg := Config{
		TwelveDataAPIKey: "test-key",
		BaseURL:          "https://api.test.com",
		Timeout:          10 * time.Second,
	}
	quotes := NewTwelveDataQuotes(cfg, &http.Client{})

	if quotes == nil {
		t.Fatal("expected non-nil client")
	}
	if quotes.cfg.TwelveDataAPIKey != cfg.TwelveDataAPIKey {
		t.Errorf("expected API key %q, got %q", cfg.TwelveDataAPIKey, quotes.cfg.TwelveDataAPIKey)
	}
}

func TestTwelveDataQuotes_GetQuote_Success(t *testing.T) {
	t.Parallel()

	quotes := newTestQuotes(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("expected path /quote, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("expected symbol AAPL, got %s", r.URL.Query().Get("symbol"))
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("expected apikey test-key, got %s", r.URL.Query().Get("apikey"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "AAPL",
			"name": "Apple Inc",
			"exchange": "NASDAQ",
			"currency": "USD",
			"close": "190.50",
			"previous_close": "188.00",
			"change": "2.50",
			"percent_change": "1.32979",
			"volume": "52000000"
		}`))
	})

	q, err := quotes.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Ticker != "AAPL" || q.Name != "Apple Inc" {
		t.Errorf("unexpected identity %q/%q", q.Ticker, q.Name)
	}
	if q.Price != 190.50 {
		t.Errorf("expected price 190.50, got %f", q.Price)
	}
	if q.Change != 2.50 {
		t.Errorf("expected change 2.50, got %f", q.Change)
	}
	if q.ChangePercent != 1.32979 {
		t.Errorf("expected percent 1.32979, got %f", q.ChangePercent)
	}
	if q.Volume != 52000000 {
		t.Errorf("expected volume 52000000, got %d", q.Volume)
	}
}

func TestTwelveDataQuotes_GetQuote_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"too many requests", http.StatusTooManyRequests},
		{"internal server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quotes := newTestQuotes(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			_, err := quotes.GetQuote(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "twelvedata http") {
				t.Errorf("expected HTTP error message, got %v", err)
			}
		})
	}
}

func TestTwelveDataQuotes_GetQuote_APIError(t *testing.T) {
	t.Parallel()

	quotes := newTestQuotes(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 404, "status": "error", "message": "symbol not found"}`))
	})

	_, err := quotes.GetQuote(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "symbol not found") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestTwelveDataQuotes_GetQuote_InvalidNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		errField string
	}{
		{"invalid close", `{"symbol":"AAPL","close":"abc"}`, "parse close"},
		{"missing close", `{"symbol":"AAPL"}`, "parse close"},
		{"invalid change", `{"symbol":"AAPL","close":"1","change":"x"}`, "parse change"},
		{"invalid percent", `{"symbol":"AAPL","close":"1","percent_change":"x"}`, "parse percent_change"},
		{"invalid volume", `{"symbol":"AAPL","close":"1","volume":"1.5"}`, "parse volume"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quotes := newTestQuotes(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.response))
			})

			_, err := quotes.GetQuote(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errField) {
				t.Errorf("expected error containing %q, got %v", tt.errField, err)
			}
		})
	}
}

func TestTwelveDataQuotes_GetQuote_InvalidJSON(t *testing.T) {
	t.Parallel()

	quotes := newTestQuotes(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	})

	if _, err := quotes.GetQuote(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestTwelveDataQuotes_GetQuote_ContextCancellation(t *testing.T) {
	t.Parallel()

	quotes := newTestQuotes(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := quotes.GetQuote(ctx, "AAPL"); err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TWELVE_DATA_BASE_URL", "")
	t.Setenv("TWELVE_DATA_RATE_LIMIT", "55")

	cfg := LoadConfig()

	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.BaseURL != defaultBaseURL {
		t.Errorf("expected default base url, got %q", cfg.BaseURL)
	}
	if cfg.RatePerMinute != 55 {
		t.Errorf("expected rate 55, got %d", cfg.RatePerMinute)
	}
}
