package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	quoteentity "stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/feature/watchlist/domain/entity"
)

// QuoteSource fetches the live quote of one ticker in a single market.
type QuoteSource interface {
	GetQuote(ctx context.Context, ticker string) (quoteentity.Quote, error)
}

// Orchestrator annotates a market slice of the watchlist with live quotes.
// At most one enrichment cycle runs at a time; triggers that arrive while a cycle is in flight are ignored.
type Orchestrator struct {
	sources  map[entity.Market]QuoteSource
	onUpdate func([]entity.EnrichedEntry)

	inFlight atomic.Bool

	mu        sync.Mutex
	lastKey   string
	displayed []entity.EnrichedEntry
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithUpdateHook registers fn to receive every published list: the all-loading list at the start
// of a cycle and the fully resolved list at its end.
func WithUpdateHook(fn func([]entity.EnrichedEntry)) OrchestratorOption {
	return func(o *Orchestrator) { o.onUpdate = fn }
}

// NewOrchestrator creates an orchestrator. Markets missing from sources resolve to UnsupportedMarket.
func NewOrchestrator(sources map[entity.Market]QuoteSource, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		sources:   make(map[entity.Market]QuoteSource, len(sources)),
		displayed: []entity.EnrichedEntry{},
	}
	for m, s := range sources {
		if s != nil {
			o.sources[m] = s
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sync runs a cycle when the market or the ordered ticker set differs from the last accepted trigger.
// It returns the displayed list and whether a cycle ran.
func (o *Orchestrator) Sync(ctx context.Context, market entity.Market, slice []entity.Entry) ([]entity.EnrichedEntry, bool) {
	key := sliceKey(market, slice)
	o.mu.Lock()
	same := key == o.lastKey
	o.mu.Unlock()
	if same {
		return o.Displayed(), false
	}
	return o.run(ctx, key, slice)
}

// Refresh runs a cycle regardless of the last trigger. It is still subject to the in-flight guard.
func (o *Orchestrator) Refresh(ctx context.Context, market entity.Market, slice []entity.Entry) ([]entity.EnrichedEntry, bool) {
	return o.run(ctx, sliceKey(market, slice), slice)
}

// InFlight reports whether a cycle is currently running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Displayed returns a copy of the last published list.
func (o *Orchestrator) Displayed() []entity.EnrichedEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]entity.EnrichedEntry, len(o.displayed))
	copy(out, o.displayed)
	return out
}

func (o *Orchestrator) run(ctx context.Context, key string, slice []entity.Entry) ([]entity.EnrichedEntry, bool) {
	if len(slice) == 0 {
		o.mu.Lock()
		o.lastKey = key
		o.mu.Unlock()
		o.publish([]entity.EnrichedEntry{})
		return []entity.EnrichedEntry{}, true
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		slog.Debug("enrichment cycle already in flight; trigger ignored", "key", key)
		return o.Displayed(), false
	}
	defer o.inFlight.Store(false)

	o.mu.Lock()
	o.lastKey = key
	o.mu.Unlock()

	loading := make([]entity.EnrichedEntry, len(slice))
	for i, e := range slice {
		loading[i] = entity.EnrichedEntry{Entry: e, IsLoading: true}
	}
	o.publish(loading)

	resolved := make([]entity.EnrichedEntry, len(slice))
	var wg sync.WaitGroup
	for i, e := range slice {
		src, ok := o.sources[e.Market]
		if !ok {
			resolved[i] = entity.EnrichedEntry{Entry: e, Error: UnsupportedMarket}
			continue
		}
		wg.Add(1)
		go func(i int, e entity.Entry, src QuoteSource) {
			defer wg.Done()
			resolved[i] = enrichOne(ctx, e, src)
		}(i, e, src)
	}
	wg.Wait()

	// a trigger accepted meanwhile (an emptied slice) supersedes this cycle's result
	if !o.publishIfCurrent(key, resolved) {
		slog.Debug("enrichment result superseded; discarded", "key", key)
		return o.Displayed(), true
	}
	out := make([]entity.EnrichedEntry, len(resolved))
	copy(out, resolved)
	return out, true
}

// enrichOne never lets one entry's failure escape into the cycle.
func enrichOne(ctx context.Context, e entity.Entry, src QuoteSource) (out entity.EnrichedEntry) {
	out = entity.EnrichedEntry{Entry: e}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("quote source panicked", "ticker", e.Ticker, "market", e.Market, "panic", r)
			out = entity.EnrichedEntry{Entry: e, Error: fmt.Sprintf("quote source panic: %v", r)}
		}
	}()

	q, err := src.GetQuote(ctx, e.Ticker)
	if err != nil {
		slog.Warn("quote fetch failed", "ticker", e.Ticker, "market", e.Market, "error", err)
		out.Error = err.Error()
		return out
	}
	if q.Name != "" {
		out.DisplayName = q.Name
	}
	price, change, pct, vol := q.Price, q.Change, q.ChangePercent, q.Volume
	out.Price = &price
	out.Change = &change
	out.ChangePercent = &pct
	out.Volume = &vol
	return out
}

func (o *Orchestrator) publish(list []entity.EnrichedEntry) {
	o.mu.Lock()
	o.displayed = list
	hook := o.onUpdate
	o.mu.Unlock()
	o.notify(hook, list)
}

// publishIfCurrent publishes list only while key is still the last accepted trigger.
func (o *Orchestrator) publishIfCurrent(key string, list []entity.EnrichedEntry) bool {
	o.mu.Lock()
	if o.lastKey != key {
		o.mu.Unlock()
		return false
	}
	o.displayed = list
	hook := o.onUpdate
	o.mu.Unlock()
	o.notify(hook, list)
	return true
}

func (o *Orchestrator) notify(hook func([]entity.EnrichedEntry), list []entity.EnrichedEntry) {
	if hook != nil {
		snapshot := make([]entity.EnrichedEntry, len(list))
		copy(snapshot, list)
		hook(snapshot)
	}
}

func sliceKey(market entity.Market, slice []entity.Entry) string {
	tickers := make([]string, len(slice))
	for i, e := range slice {
		tickers[i] = e.Ticker
	}
	return string(market) + "|" + strings.Join(tickers, ",")
}
