// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/feature/quotes/transport/http/dto"
	"stock_portal/internal/feature/quotes/usecase"
)

// QuoteUsecase は気配値取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	GetQuote(ctx context.Context, market, ticker string) (entity.Quote, error)
}

// QuoteHandler は気配値のHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetQuote は市場タグと銘柄コードを受け取り、気配値をJSONで返します。
//
// エンドポイント例:
// GET /quotes/us/AAPL
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	q, err := h.uc.GetQuote(c.Request.Context(), c.Param("market"), c.Param("ticker"))
	switch {
	case errors.Is(err, usecase.ErrUnsupportedMarket):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: usecase.ErrUnsupportedMarket.Error()})
		return
	case errors.Is(err, usecase.ErrEmptyTicker):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.QuoteResponse{
		Ticker:        q.Ticker,
		Name:          q.Name,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
	})
}
