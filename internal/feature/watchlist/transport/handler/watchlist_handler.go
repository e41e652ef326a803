// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/domain/marketcode"
	"stock_portal/internal/feature/watchlist/transport/http/dto"
	"stock_portal/internal/feature/watchlist/usecase"
	jwtmw "stock_portal/internal/platform/jwt"
)

// WatchlistUsecase はサーバー側ウォッチリスト操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type WatchlistUsecase interface {
	List(ctx context.Context, ownerID uint) ([]entity.Entry, error)
	Add(ctx context.Context, ownerID uint, e entity.Entry) (bool, error)
	Remove(ctx context.Context, ownerID uint, ticker string) (bool, error)
	Clear(ctx context.Context, ownerID uint) error
}

// WatchlistHandler はウォッチリストのHTTPリクエストを処理します。
// すべてのエンドポイントは jwtmw.AuthRequired の後ろに置かれる前提です。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は指定されたusecaseでWatchlistHandlerの新しいインスタンスを生成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// List は GET /watchlist を処理し、追加日時の降順で返します。
func (h *WatchlistHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	entries, err := h.uc.List(c.Request.Context(), ownerID)
	if err != nil {
		slog.Error("failed to list watchlist", "owner_id", ownerID, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to list watchlist"})
		return
	}

	out := make([]dto.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.EntryResponse{
			Ticker:      e.Ticker,
			Market:      marketcode.ToBackend(e.Market),
			DisplayName: e.DisplayName,
			AddedAt:     e.AddedAt.UTC(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Add は POST /watchlist を処理します。新規なら201、既存の銘柄なら200を返します。
func (h *WatchlistHandler) Add(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	market := entity.Market(strings.ToLower(strings.TrimSpace(req.Market)))
	if !market.Valid() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown market"})
		return
	}

	inserted, err := h.uc.Add(c.Request.Context(), ownerID, entity.Entry{
		Ticker:      req.Ticker,
		DisplayName: req.DisplayName,
		Market:      market,
		AddedAt:     req.AddedAt,
	})
	switch {
	case errors.Is(err, usecase.ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		slog.Error("failed to insert watchlist entry", "owner_id", ownerID, "ticker", req.Ticker, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to insert entry"})
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	c.JSON(status, dto.InsertResponse{Inserted: inserted})
}

// Remove は DELETE /watchlist/:ticker を処理します。
func (h *WatchlistHandler) Remove(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	removed, err := h.uc.Remove(c.Request.Context(), ownerID, c.Param("ticker"))
	switch {
	case errors.Is(err, usecase.ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		slog.Error("failed to remove watchlist entry", "owner_id", ownerID, "ticker", c.Param("ticker"), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to remove entry"})
		return
	}
	c.JSON(http.StatusOK, dto.RemoveResponse{Removed: removed})
}

// Clear は DELETE /watchlist を処理します。
func (h *WatchlistHandler) Clear(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	if err := h.uc.Clear(c.Request.Context(), ownerID); err != nil {
		slog.Error("failed to clear watchlist", "owner_id", ownerID, "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to clear watchlist"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me は GET /me を処理し、トークンが示すオーナーIDを返します。
func (h *WatchlistHandler) Me(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{OwnerID: strconv.FormatUint(uint64(ownerID), 10)})
}

func owner(c *gin.Context) (uint, bool) {
	id, ok := jwtmw.OwnerID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}
	return id, ok
}
