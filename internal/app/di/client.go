package di

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock_portal/internal/feature/watchlist/adapters"
	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/usecase"
	infrahttp "stock_portal/internal/platform/http"
	"stock_portal/internal/platform/localstorage"
)

// LiveMarkets are the markets the portal has a quote source for.
var LiveMarkets = []entity.Market{entity.MarketUS, entity.MarketKR, entity.MarketJP}

// ClientConfig holds configuration for the watchlist client.
type ClientConfig struct {
	Portal           adapters.PortalConfig
	LocalStoragePath string
	// StrictAuth disables the device-local store so every watchlist operation requires login.
	StrictAuth bool
	Timeout    time.Duration
}

// LoadClientConfig reads PORTAL_BASE_URL, PORTAL_TOKEN, LOCAL_STORAGE_PATH and STRICT_AUTH.
func LoadClientConfig() ClientConfig {
	cfg := ClientConfig{
		Portal: adapters.PortalConfig{
			BaseURL: os.Getenv("PORTAL_BASE_URL"),
			Token:   os.Getenv("PORTAL_TOKEN"),
		},
		LocalStoragePath: os.Getenv("LOCAL_STORAGE_PATH"),
		StrictAuth:       strings.EqualFold(os.Getenv("STRICT_AUTH"), "true"),
		Timeout:          10 * time.Second,
	}
	if cfg.Portal.BaseURL == "" {
		cfg.Portal.BaseURL = "http://localhost:8080"
	}
	if cfg.LocalStoragePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.LocalStoragePath = filepath.Join(dir, "stock_portal", "storage.json")
		} else {
			cfg.LocalStoragePath = "storage.json"
		}
	}
	return cfg
}

// Client bundles the session-side components of the watchlist.
type Client struct {
	Resolver     *adapters.SessionResolver
	Engine       *usecase.SyncEngine
	Orchestrator *usecase.Orchestrator
}

// NewClient wires the resolver, the sync engine over both backends and the enrichment orchestrator.
func NewClient(cfg ClientConfig, opts ...usecase.OrchestratorOption) *Client {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)

	backends := usecase.Backends{Remote: adapters.NewRemoteStore(cfg.Portal, httpClient)}
	if !cfg.StrictAuth {
		backends.Local = adapters.NewLocalStore(localstorage.New(cfg.LocalStoragePath))
	}

	return &Client{
		Resolver:     adapters.NewSessionResolver(cfg.Portal, httpClient),
		Engine:       usecase.NewSyncEngine(backends, usecase.WithSerializedMutations()),
		Orchestrator: usecase.NewOrchestrator(adapters.NewPortalQuoteSources(cfg.Portal, httpClient, LiveMarkets), opts...),
	}
}
