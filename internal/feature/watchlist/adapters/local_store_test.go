package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/usecase"
	"stock_portal/internal/platform/localstorage"
)

// brokenKV は常に失敗する KeyValue です。
type brokenKV struct{}

func (brokenKV) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenKV) Set(string, string) error { return errors.New("disk gone") }
func (brokenKV) Remove(string) error { return errors.New("disk gone") }

func newFileKV(t *testing.T) *localstorage.FileStorage {
	t.Helper()
	return localstorage.New(filepath.Join(t.TempDir(), "storage.json"))
}

func TestLocalStore_InsertListRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewLocalStore(newFileKV(t))

	older := entity.Entry{Ticker: "AAPL", Market: entity.MarketUS, AddedAt: baseTime}
	newer := entity.Entry{Ticker: "005930", Market: entity.MarketKR, AddedAt: baseTime.Add(time.Hour)}

	assert.True(t, store.Insert(ctx, "", older))
	assert.True(t, store.Insert(ctx, "", newer))
	assert.True(t, store.Insert(ctx, "", older), "duplicate is a successful no-op")

	got := store.List(ctx, "")
	require.Len(t, got, 2)
	assert.Equal(t, "005930", got[0].Ticker)
	assert.Equal(t, "AAPL", got[1].Ticker)

	assert.True(t, store.Remove(ctx, "", "AAPL"))
	got = store.List(ctx, "")
	require.Len(t, got, 1)
	assert.Equal(t, "005930", got[0].Ticker)

	store.Clear(ctx, "")
	assert.Empty(t, store.List(ctx, ""))
}

// TestLocalStore_MalformedValue は壊れたJSONが空リストとして読まれることを検証します。
func TestLocalStore_MalformedValue(t *testing.T) {
	t.Parallel()

	kv := newFileKV(t)
	require.NoError(t, kv.Set(LocalStorageKey, "{not json"))
	store := NewLocalStore(kv)

	got := store.List(context.Background(), "")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.True(t, store.Insert(context.Background(), "", entity.Entry{Ticker: "AAPL", Market: entity.MarketUS}),
		"a malformed value is overwritten by the next write")
	assert.Len(t, store.List(context.Background(), ""), 1)
}

// TestLocalStore_MalformedValue_EngineLoad は壊れたローカルデータでもエンジンのロードが完了することを検証します。
func TestLocalStore_MalformedValue_EngineLoad(t *testing.T) {
	t.Parallel()

	kv := newFileKV(t)
	require.NoError(t, kv.Set(LocalStorageKey, "][ definitely not json"))

	engine := usecase.NewSyncEngine(usecase.Backends{Local: NewLocalStore(kv)})
	assert.NotPanics(t, func() {
		engine.Load(context.Background(), usecase.Session{})
	})

	assert.True(t, engine.IsLoaded())
	assert.False(t, engine.IsLoading())
	assert.Empty(t, engine.Entries())
}

func TestLocalStore_Unavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := entity.Entry{Ticker: "AAPL", Market: entity.MarketUS}

	for name, store := range map[string]usecase.Store{
		"nil storage":     NewLocalStore(nil),
		"failing storage": NewLocalStore(brokenKV{}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, store.List(ctx, ""))
			assert.False(t, store.Insert(ctx, "", e))
			assert.False(t, store.Remove(ctx, "", "AAPL"))
			assert.NotPanics(t, func() { store.Clear(ctx, "") })
		})
	}
}

func TestLocalStore_SkipsInvalidRows(t *testing.T) {
	t.Parallel()

	kv := newFileKV(t)
	require.NoError(t, kv.Set(LocalStorageKey, `[{"ticker":"AAPL","market":"us"},{"ticker":"","market":"us"},{"ticker":"X","market":"zz"}]`))

	got := NewLocalStore(kv).List(context.Background(), "")
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Ticker)
}
