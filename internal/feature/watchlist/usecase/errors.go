// Package usecase implements the watchlist business logic: backend selection,
// the session-side sync engine, price enrichment and the owner-scoped server service.
package usecase

import "errors"

var (
	// ErrNotLoaded is returned when a mutation is issued before the first load completed.
	ErrNotLoaded = errors.New("watchlist has not been loaded")

	// ErrLoginRequired is returned when no backend is available for an unauthenticated session.
	// Callers must distinguish it from a plain false result.
	ErrLoginRequired = errors.New("login required")

	// ErrInvalidEntry is returned for an entry with an empty ticker or an unknown market.
	ErrInvalidEntry = errors.New("invalid watchlist entry")
)

// UnsupportedMarket is the per-entry error for markets without a live quote source.
const UnsupportedMarket = "unsupported"
