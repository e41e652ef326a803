package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// PortalConfig はポータルサーバーへの接続設定です。
type PortalConfig struct {
	BaseURL string // 例: "http://localhost:8080"
	Token   string // ベアラートークン。空の場合は未ログイン
}

// PortalError はポータルが4xx/5xxを返したことを表します。
type PortalError struct {
	Status  int
	Message string
}

func (e *PortalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portal http %d", e.Status)
	}
	return fmt.Sprintf("portal http %d: %s", e.Status, e.Message)
}

// portalClient はポータルAPI呼び出しの共通処理です。
type portalClient struct {
	cfg    PortalConfig
	client *http.Client
}

func newPortalClient(cfg PortalConfig, client *http.Client) portalClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return portalClient{cfg: cfg, client: client}
}

// do はリクエストを送り、ステータスコードを返します。out が nil でなければ2xxのボディをデコードします。
func (p portalClient) do(ctx context.Context, method, path string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, body)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&body)
		return res.StatusCode, &PortalError{Status: res.StatusCode, Message: body.Error}
	}
	if out != nil && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return res.StatusCode, nil
}
