package di

import (
	"gorm.io/gorm"

	"stock_portal/internal/feature/watchlist/adapters"
	"stock_portal/internal/feature/watchlist/transport/handler"
	"stock_portal/internal/feature/watchlist/usecase"
)

// Models lists the gorm models migrated when RUN_MIGRATIONS is enabled.
func Models() []any {
	return []any{&adapters.WatchlistModel{}}
}

// NewWatchlistHandler wires the owner-scoped watchlist endpoints over db.
func NewWatchlistHandler(db *gorm.DB) *handler.WatchlistHandler {
	repo := adapters.NewWatchlistRepository(db)
	return handler.NewWatchlistHandler(usecase.NewWatchlistUsecase(repo))
}
