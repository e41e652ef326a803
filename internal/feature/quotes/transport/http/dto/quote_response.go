// Package dto は気配値APIのリクエスト/レスポンスDTOを定義します。
package dto

// QuoteResponse は気配値のレスポンスDTOです。
type QuoteResponse struct {
	Ticker        string  `json:"ticker"`         // 銘柄コード
	Name          string  `json:"name,omitempty"` // 銘柄名
	Price         float64 `json:"price"`          // 現在値
	Change        float64 `json:"change"`         // 前日比
	ChangePercent float64 `json:"change_percent"` // 前日比（%）
	Volume        int64   `json:"volume"`         // 出来高
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
