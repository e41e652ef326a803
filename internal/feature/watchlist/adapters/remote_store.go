package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/domain/marketcode"
	"stock_portal/internal/feature/watchlist/transport/http/dto"
	"stock_portal/internal/feature/watchlist/usecase"
)

// remoteStore はポータルサーバーのウォッチリストAPIを使うStore実装です。
// オーナーはベアラートークンで識別されるため ownerID はログにのみ使います。
type remoteStore struct {
	portal portalClient
}

var _ usecase.Store = (*remoteStore)(nil)

// NewRemoteStore は新しいリモートストアを生成します。
func NewRemoteStore(cfg PortalConfig, client *http.Client) *remoteStore {
	return &remoteStore{portal: newPortalClient(cfg, client)}
}

func (s *remoteStore) List(ctx context.Context, ownerID string) []entity.Entry {
	var rows []dto.EntryResponse
	if _, err := s.portal.do(ctx, http.MethodGet, "/watchlist", nil, &rows); err != nil {
		slog.Warn("remote watchlist list failed", "owner_id", ownerID, "error", err)
		return []entity.Entry{}
	}
	out := make([]entity.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, entity.Entry{
			Ticker:      r.Ticker,
			DisplayName: r.DisplayName,
			Market:      marketcode.ToClient(r.Market),
			AddedAt:     r.AddedAt,
		})
	}
	return out
}

// Insert は既存銘柄（200 inserted=false）も成功として扱います。
func (s *remoteStore) Insert(ctx context.Context, ownerID string, e entity.Entry) bool {
	body, err := json.Marshal(dto.EntryRequest{
		Ticker:      e.Ticker,
		Market:      marketcode.ToBackend(e.Market),
		DisplayName: e.DisplayName,
		AddedAt:     e.AddedAt.UTC(),
	})
	if err != nil {
		slog.Warn("remote watchlist insert encode failed", "ticker", e.Ticker, "error", err)
		return false
	}
	var res dto.InsertResponse
	if _, err := s.portal.do(ctx, http.MethodPost, "/watchlist", bytes.NewReader(body), &res); err != nil {
		slog.Warn("remote watchlist insert failed", "owner_id", ownerID, "ticker", e.Ticker, "error", err)
		return false
	}
	return true
}

func (s *remoteStore) Remove(ctx context.Context, ownerID, ticker string) bool {
	var res dto.RemoveResponse
	if _, err := s.portal.do(ctx, http.MethodDelete, "/watchlist/"+url.PathEscape(ticker), nil, &res); err != nil {
		slog.Warn("remote watchlist remove failed", "owner_id", ownerID, "ticker", ticker, "error", err)
		return false
	}
	return true
}

func (s *remoteStore) Clear(ctx context.Context, ownerID string) {
	if _, err := s.portal.do(ctx, http.MethodDelete, "/watchlist", nil, nil); err != nil {
		slog.Warn("remote watchlist clear failed", "owner_id", ownerID, "error", err)
	}
}
