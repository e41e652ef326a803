package usecase

import "errors"

var (
	// ErrUnsupportedMarket は価格ソースが存在しない市場を指定した場合に返されます。
	ErrUnsupportedMarket = errors.New("unsupported")

	// ErrEmptyTicker は銘柄コードが空の場合に返されます。
	ErrEmptyTicker = errors.New("ticker is required")
)
