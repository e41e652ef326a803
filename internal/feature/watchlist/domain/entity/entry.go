// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Market is the client-side (lowercase) market tag.
type Market string

const (
	MarketKR Market = "kr"
	MarketUS Market = "us"
	MarketJP Market = "jp"
	MarketHK Market = "hk"
)

// Markets lists every supported market tag.
var Markets = []Market{MarketKR, MarketUS, MarketJP, MarketHK}

// Valid reports whether m is one of the supported market tags.
func (m Market) Valid() bool {
	switch m {
	case MarketKR, MarketUS, MarketJP, MarketHK:
		return true
	}
	return false
}

// Entry is one tracked instrument in a watchlist.
// Ticker is unique within one owner's (or one device's) list and Market never
// changes once the entry has been added.
type Entry struct {
	Ticker      string    `json:"ticker"`
	DisplayName string    `json:"displayName"`
	Market      Market    `json:"market"`
	AddedAt     time.Time `json:"addedAt"`
}

// EnrichedEntry is an Entry with a transient quote overlay.
// The overlay is never persisted. Error and the price fields are mutually exclusive.
type EnrichedEntry struct {
	Entry

	Price         *float64 `json:"price,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
	IsLoading     bool     `json:"isLoading"`
	Error         string   `json:"error,omitempty"`
}

// HasQuote reports whether price data is present.
func (e EnrichedEntry) HasQuote() bool {
	return e.Price != nil
}
