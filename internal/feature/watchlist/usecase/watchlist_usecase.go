package usecase

import (
	"context"
	"strings"
	"time"

	"stock_portal/internal/feature/watchlist/domain/entity"
)

// Repository は所有者単位のウォッチリスト永続化レイヤーを抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Repository interface {
	// ListByOwner は追加日時の降順でエントリを返します。
	ListByOwner(ctx context.Context, ownerID uint) ([]entity.Entry, error)
	// Insert はエントリを保存します。同じ銘柄が既にある場合は false を返します。
	Insert(ctx context.Context, ownerID uint, e entity.Entry) (bool, error)
	// Delete は銘柄を削除し、削除された行があったかを返します。
	Delete(ctx context.Context, ownerID uint, ticker string) (bool, error)
	// DeleteAll は所有者の全エントリを削除します。
	DeleteAll(ctx context.Context, ownerID uint) error
}

// WatchlistUsecase はサーバー側のウォッチリスト操作を定義します。
type WatchlistUsecase struct {
	repo Repository
	now  func() time.Time
}

// NewWatchlistUsecase は新しい WatchlistUsecase を作成します。
func NewWatchlistUsecase(repo Repository) *WatchlistUsecase {
	return &WatchlistUsecase{repo: repo, now: time.Now}
}

// List は所有者のウォッチリストを返します。
func (wu *WatchlistUsecase) List(ctx context.Context, ownerID uint) ([]entity.Entry, error) {
	entries, err := wu.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entity.Entry{}
	}
	return entries, nil
}

// Add はエントリを検証して保存します。AddedAt が未設定の場合は現在時刻を使います。
func (wu *WatchlistUsecase) Add(ctx context.Context, ownerID uint, e entity.Entry) (bool, error) {
	e.Ticker = strings.TrimSpace(e.Ticker)
	if e.Ticker == "" || !e.Market.Valid() {
		return false, ErrInvalidEntry
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = wu.now()
	}
	return wu.repo.Insert(ctx, ownerID, e)
}

// Remove は銘柄を削除します。
func (wu *WatchlistUsecase) Remove(ctx context.Context, ownerID uint, ticker string) (bool, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return false, ErrInvalidEntry
	}
	return wu.repo.Delete(ctx, ownerID, ticker)
}

// Clear は所有者の全エントリを削除します。
func (wu *WatchlistUsecase) Clear(ctx context.Context, ownerID uint) error {
	return wu.repo.DeleteAll(ctx, ownerID)
}
