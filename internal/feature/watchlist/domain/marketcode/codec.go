// Package marketcode converts market tags between the client form (lowercase)
// and the persistence form (uppercase).
package marketcode

import (
	"strings"

	"stock_portal/internal/feature/watchlist/domain/entity"
)

// ToBackend returns the persistence-layer code for a client market tag.
func ToBackend(m entity.Market) string {
	return strings.ToUpper(string(m))
}

// ToClient returns the client market tag for a persistence-layer code.
// Unknown codes fall back to entity.MarketKR so that a bad row never breaks list rendering.
func ToClient(code string) entity.Market {
	m := entity.Market(strings.ToLower(strings.TrimSpace(code)))
	if !m.Valid() {
		return entity.MarketKR
	}
	return m
}
