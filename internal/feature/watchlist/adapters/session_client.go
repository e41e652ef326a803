package adapters

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"stock_portal/internal/feature/watchlist/transport/http/dto"
	"stock_portal/internal/feature/watchlist/usecase"
)

// SessionResolver はベアラートークンから現在のセッションを解決します。
type SessionResolver struct {
	portal portalClient
}

// NewSessionResolver は新しい SessionResolver を生成します。
func NewSessionResolver(cfg PortalConfig, client *http.Client) *SessionResolver {
	return &SessionResolver{portal: newPortalClient(cfg, client)}
}

// Resolve は GET /me を呼び出します。トークンが無い、または401の場合は未ログインのセッションを返します。
// それ以外の失敗はエラーとして返し、呼び出し側はセッションを保留のままにします。
func (r *SessionResolver) Resolve(ctx context.Context) (usecase.Session, error) {
	if strings.TrimSpace(r.portal.cfg.Token) == "" {
		return usecase.Session{}, nil
	}
	var me dto.MeResponse
	status, err := r.portal.do(ctx, http.MethodGet, "/me", nil, &me)
	if status == http.StatusUnauthorized {
		return usecase.Session{}, nil
	}
	if err != nil {
		return usecase.Session{Pending: true}, err
	}
	if me.OwnerID == "" {
		return usecase.Session{Pending: true}, errors.New("identity response without owner_id")
	}
	return usecase.Session{OwnerID: me.OwnerID}, nil
}
