package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/domain/marketcode"
	"stock_portal/internal/feature/watchlist/usecase"
)

type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.Repository = (*watchlistGorm)(nil)

// NewWatchlistRepository はgormによる所有者単位のウォッチリストリポジトリを生成します。
func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

// WatchlistModel は watchlist_entries テーブルの行です。market はバックエンド形式（大文字）で保存します。
type WatchlistModel struct {
	ID          uint      `gorm:"primaryKey"`
	OwnerID     uint      `gorm:"not null;uniqueIndex:watchlist_owner_ticker,priority:1;index:watchlist_owner_added,priority:1"`
	Ticker      string    `gorm:"size:32;not null;uniqueIndex:watchlist_owner_ticker,priority:2"`
	Market      string    `gorm:"size:8;not null"`
	DisplayName string    `gorm:"size:255;not null;default:''"`
	AddedAt     time.Time `gorm:"not null;index:watchlist_owner_added,priority:2"`
}

func (WatchlistModel) TableName() string {
	return "watchlist_entries"
}

func toModel(ownerID uint, e entity.Entry) WatchlistModel {
	return WatchlistModel{
		OwnerID:     ownerID,
		Ticker:      e.Ticker,
		Market:      marketcode.ToBackend(e.Market),
		DisplayName: e.DisplayName,
		AddedAt:     e.AddedAt.UTC(),
	}
}

func toEntity(m WatchlistModel) entity.Entry {
	return entity.Entry{
		Ticker:      m.Ticker,
		DisplayName: m.DisplayName,
		Market:      marketcode.ToClient(m.Market),
		AddedAt:     m.AddedAt,
	}
}

func (r *watchlistGorm) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Entry, error) {
	var rows []WatchlistModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Entry, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// Insert は (owner_id, ticker) の一意制約に衝突した場合は何もせず false を返します。
func (r *watchlistGorm) Insert(ctx context.Context, ownerID uint, e entity.Entry) (bool, error) {
	m := toModel(ownerID, e)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "ticker"}},
		DoNothing: true,
	}).Create(&m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *watchlistGorm) Delete(ctx context.Context, ownerID uint, ticker string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND ticker = ?", ownerID, ticker).
		Delete(&WatchlistModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *watchlistGorm) DeleteAll(ctx context.Context, ownerID uint) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&WatchlistModel{}).Error
}
