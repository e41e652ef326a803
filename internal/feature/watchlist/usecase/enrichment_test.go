package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quoteentity "stock_portal/internal/feature/quotes/domain/entity"
	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/usecase"
)

// mockQuoteSource は QuoteSource インターフェースのモック実装です。
type mockQuoteSource struct {
	GetQuoteFunc func(ctx context.Context, ticker string) (quoteentity.Quote, error)
	calls        atomic.Int32
}

func (m *mockQuoteSource) GetQuote(ctx context.Context, ticker string) (quoteentity.Quote, error) {
	m.calls.Add(1)
	if m.GetQuoteFunc != nil {
		return m.GetQuoteFunc(ctx, ticker)
	}
	return quoteentity.Quote{Ticker: ticker, Price: 100}, nil
}

func usSlice(tickers ...string) []entity.Entry {
	out := make([]entity.Entry, len(tickers))
	for i, tk := range tickers {
		out[i] = entry(tk, entity.MarketUS)
	}
	return out
}

// TestOrchestrator_Isolation は1件の取得失敗が他の銘柄の結果に影響しないことを検証します。
func TestOrchestrator_Isolation(t *testing.T) {
	t.Parallel()

	src := &mockQuoteSource{GetQuoteFunc: func(ctx context.Context, ticker string) (quoteentity.Quote, error) {
		if ticker == "MSFT" {
			return quoteentity.Quote{}, errors.New("twelvedata http 500")
		}
		return quoteentity.Quote{Ticker: ticker, Name: ticker + " Corp", Price: 10, Change: 1, ChangePercent: 10, Volume: 5}, nil
	}}
	o := usecase.NewOrchestrator(map[entity.Market]usecase.QuoteSource{entity.MarketUS: src})

	out, ran := o.Refresh(context.Background(), entity.MarketUS, usSlice("AAPL", "MSFT", "NVDA"))

	require.True(t, ran)
	require.Len(t, out, 3)
	for _, i := range []int{0, 2} {
		assert.True(t, out[i].HasQuote(), "entry %d should carry a quote", i)
		assert.Empty(t, out[i].Error)
		assert.False(t, out[i].IsLoading)
		assert.Equal(t, 10.0, *out[i].Price)
		assert.Equal(t, int64(5), *out[i].Volume)
		assert.Equal(t, out[i].Ticker+" Corp", out[i].DisplayName)
	}
	assert.Equal(t, "twelvedata http 500", out[1].Error)
	assert.False(t, out[1].HasQuote())
	assert.False(t, out[1].IsLoading)
	assert.Equal(t, "MSFT Inc.", out[1].DisplayName)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, []string{out[0].Ticker, out[1].Ticker, out[2].Ticker})
}

// TestOrchestrator_InFlightGuard は実行中の再トリガーが無視され、ファンアウトが1回だけになることを検証します。
func TestOrchestrator_InFlightGuard(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	src := &mockQuoteSource{GetQuoteFunc: func(ctx context.Context, ticker string) (quoteentity.Quote, error) {
		<-release
		return quoteentity.Quote{Ticker: ticker, Price: 1}, nil
	}}
	o := usecase.NewOrchestrator(map[entity.Market]usecase.QuoteSource{entity.MarketUS: src})
	slice := usSlice("AAPL", "MSFT")

	var wg sync.WaitGroup
	wg.Add(1)
	var firstRan bool
	go func() {
		defer wg.Done()
		_, firstRan = o.Refresh(context.Background(), entity.MarketUS, slice)
	}()
	require.Eventually(t, o.InFlight, time.Second, time.Millisecond)

	_, secondRan := o.Refresh(context.Background(), entity.MarketUS, slice)
	_, thirdRan := o.Sync(context.Background(), entity.MarketUS, usSlice("TSLA"))

	close(release)
	wg.Wait()

	assert.True(t, firstRan)
	assert.False(t, secondRan)
	assert.False(t, thirdRan)
	assert.Equal(t, int32(2), src.calls.Load(), "exactly one fan-out")
	assert.False(t, o.InFlight())
}

func TestOrchestrator_UnsupportedMarket(t *testing.T) {
	t.Parallel()

	src := &mockQuoteSource{}
	o := usecase.NewOrchestrator(map[entity.Market]usecase.QuoteSource{entity.MarketUS: src})

	out, ran := o.Refresh(context.Background(), entity.MarketHK, []entity.Entry{entry("0700", entity.MarketHK)})

	require.True(t, ran)
	require.Len(t, out, 1)
	assert.Equal(t, usecase.UnsupportedMarket, out[0].Error)
	assert.False(t, out[0].HasQuote())
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestOrchestrator_EmptySlice(t *testing.T) {
	t.Parallel()

	var published [][]entity.EnrichedEntry
	o := usecase.NewOrchestrator(nil, usecase.WithUpdateHook(func(l []entity.EnrichedEntry) {
		published = append(published, l)
	}))

	out, ran := o.Sync(context.Background(), entity.MarketJP, nil)

	assert.True(t, ran)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.False(t, o.InFlight())
	require.Len(t, published, 1)
	assert.Empty(t, published[0])
}

// TestOrchestrator_UpdateHook は読み込み中リストと解決済みリストが順に1回ずつ通知されることを検証します。
func TestOrchestrator_UpdateHook(t *testing.T) {
	t.Parallel()

	var published [][]entity.EnrichedEntry
	o := usecase.NewOrchestrator(
		map[entity.Market]usecase.QuoteSource{entity.MarketUS: &mockQuoteSource{}},
		usecase.WithUpdateHook(func(l []entity.EnrichedEntry) { published = append(published, l) }),
	)

	_, ran := o.Refresh(context.Background(), entity.MarketUS, usSlice("AAPL", "MSFT"))

	require.True(t, ran)
	require.Len(t, published, 2)
	for _, e := range published[0] {
		assert.True(t, e.IsLoading)
		assert.False(t, e.HasQuote())
	}
	for _, e := range published[1] {
		assert.False(t, e.IsLoading)
		assert.True(t, e.HasQuote())
	}
	assert.Equal(t, published[1], o.Displayed())
}

func TestOrchestrator_SyncSkipsUnchangedSlice(t *testing.T) {
	t.Parallel()

	src := &mockQuoteSource{}
	o := usecase.NewOrchestrator(map[entity.Market]usecase.QuoteSource{
		entity.MarketUS: src,
		entity.MarketJP: src,
	})
	ctx := context.Background()

	_, ran := o.Sync(ctx, entity.MarketUS, usSlice("AAPL", "MSFT"))
	require.True(t, ran)

	out, ran := o.Sync(ctx, entity.MarketUS, usSlice("AAPL", "MSFT"))
	assert.False(t, ran, "same market and tickers")
	assert.Len(t, out, 2)

	_, ran = o.Sync(ctx, entity.MarketUS, usSlice("MSFT", "AAPL"))
	assert.True(t, ran, "order change")

	_, ran = o.Sync(ctx, entity.MarketJP, usSlice("MSFT", "AAPL"))
	assert.True(t, ran, "market change")

	_, ran = o.Refresh(ctx, entity.MarketJP, usSlice("MSFT", "AAPL"))
	assert.True(t, ran, "forced refresh")

	assert.Equal(t, int32(8), src.calls.Load())
}

func TestOrchestrator_RecoversFromSourcePanic(t *testing.T) {
	t.Parallel()

	src := &mockQuoteSource{GetQuoteFunc: func(ctx context.Context, ticker string) (quoteentity.Quote, error) {
		if ticker == "BAD" {
			panic("boom")
		}
		return quoteentity.Quote{Ticker: ticker, Price: 1}, nil
	}}
	o := usecase.NewOrchestrator(map[entity.Market]usecase.QuoteSource{entity.MarketUS: src})

	out, ran := o.Refresh(context.Background(), entity.MarketUS, usSlice("BAD", "AAPL"))

	require.True(t, ran)
	assert.Contains(t, out[0].Error, "boom")
	assert.True(t, out[1].HasQuote())
	assert.False(t, o.InFlight())
}

// TestOrchestrator_EmptiedSliceSupersedesRunningCycle は実行中に銘柄が全て削除された場合、
// 実行中サイクルの結果が破棄され空リストが表示され続けることを検証します。
func TestOrchestrator_EmptiedSliceSupersedesRunningCycle(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	src := &mockQuoteSource{GetQuoteFunc: func(ctx context.Context, ticker string) (quoteentity.Quote, error) {
		<-release
		return quoteentity.Quote{Ticker: ticker, Name: "Apple Inc.", Price: 1}, nil
	}}
	var mu sync.Mutex
	var published [][]entity.EnrichedEntry
	o := usecase.NewOrchestrator(
		map[entity.Market]usecase.QuoteSource{entity.MarketUS: src},
		usecase.WithUpdateHook(func(l []entity.EnrichedEntry) {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, l)
		}),
	)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Sync(ctx, entity.MarketUS, usSlice("AAPL"))
	}()
	require.Eventually(t, o.InFlight, time.Second, time.Millisecond)

	out, ran := o.Sync(ctx, entity.MarketUS, nil)
	assert.True(t, ran)
	assert.Empty(t, out)

	close(release)
	<-done

	assert.Empty(t, o.Displayed(), "removed ticker must not come back")
	out, ran = o.Sync(ctx, entity.MarketUS, nil)
	assert.False(t, ran)
	assert.Empty(t, out)

	mu.Lock()
	got := append([][]entity.EnrichedEntry(nil), published...)
	mu.Unlock()
	require.Len(t, got, 2, "loading list and empty list only")
	assert.Empty(t, got[1])

	// 同じ銘柄を再度追加すると新しいサイクルが走る
	out, ran = o.Sync(ctx, entity.MarketUS, usSlice("AAPL"))
	assert.True(t, ran)
	require.Len(t, out, 1)
	assert.True(t, out[0].HasQuote())
}
