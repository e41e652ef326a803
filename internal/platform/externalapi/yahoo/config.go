// Package yahoo provides a quote client over the Yahoo Finance chart API.
package yahoo

import (
	"os"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for one Yahoo market client.
type Config struct {
	BaseURL      string        // e.g. "https://query1.finance.yahoo.com"
	SymbolSuffix string        // exchange suffix appended to tickers: ".KS" (KOSPI), ".T" (Tokyo)
	Timeout      time.Duration // HTTP request timeout
	MaxAttempts  int           // attempts per quote including the first one
	RetryDelay   time.Duration // first backoff delay, doubled on every retry
}

// LoadConfig loads Yahoo configuration from environment variables for the given suffix.
func LoadConfig(suffix string) Config {
	cfg := Config{
		BaseURL:      os.Getenv("YAHOO_BASE_URL"),
		SymbolSuffix: suffix,
		Timeout:      10 * time.Second,
		MaxAttempts:  3,
		RetryDelay:   time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg
}
