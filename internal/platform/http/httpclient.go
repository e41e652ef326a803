package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は相場APIやポータル呼び出し用のHTTPクライアントを作成します。
//
// http.DefaultClient はタイムアウトを持たないため使用しないこと。
// timeout はリクエスト全体（接続からボディ読み取りまで）の上限です。
// 同一ホストへの並列リクエストが多いため、ホスト単位のアイドル接続を多めに保持します。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
