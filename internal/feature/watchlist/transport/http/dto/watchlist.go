// Package dto はウォッチリストAPIのリクエスト/レスポンスDTOを定義します。
// market はバックエンド形式（大文字）で送受信します。
package dto

import "time"

// EntryRequest は POST /watchlist のリクエストボディです。
type EntryRequest struct {
	Ticker      string    `json:"ticker" binding:"required"`
	Market      string    `json:"market" binding:"required"`
	DisplayName string    `json:"display_name"`
	AddedAt     time.Time `json:"added_at"`
}

// EntryResponse はウォッチリストの1行を表すレスポンスDTOです。
type EntryResponse struct {
	Ticker      string    `json:"ticker"`
	Market      string    `json:"market"`
	DisplayName string    `json:"display_name"`
	AddedAt     time.Time `json:"added_at"`
}

// InsertResponse は追加結果です。
type InsertResponse struct {
	Inserted bool `json:"inserted"`
}

// RemoveResponse は削除結果です。
type RemoveResponse struct {
	Removed bool `json:"removed"`
}

// MeResponse は GET /me のレスポンスです。
type MeResponse struct {
	OwnerID string `json:"owner_id"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
