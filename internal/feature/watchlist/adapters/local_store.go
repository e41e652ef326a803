package adapters

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/usecase"
)

// LocalStorageKey は端末ローカルのウォッチリストを保存するキーです。
const LocalStorageKey = "watchlist"

// KeyValue は端末ローカルの文字列キーバリューストアです。
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// localStore は未ログイン時に使う端末ローカルのStore実装です。
// ownerID は無視されます。
type localStore struct {
	kv KeyValue
}

var _ usecase.Store = (*localStore)(nil)

// NewLocalStore は kv 上のローカルストアを生成します。kv が nil の場合は全操作が空/false になります。
func NewLocalStore(kv KeyValue) *localStore {
	return &localStore{kv: kv}
}

// List は保存されたエントリを追加日時の降順で返します。値が無い・壊れている場合は空リストです。
func (s *localStore) List(_ context.Context, _ string) []entity.Entry {
	entries, _ := s.read()
	return entries
}

func (s *localStore) Insert(_ context.Context, _ string, e entity.Entry) bool {
	entries, ok := s.read()
	if !ok {
		return false
	}
	for _, x := range entries {
		if x.Ticker == e.Ticker {
			return true
		}
	}
	return s.write(append([]entity.Entry{e}, entries...))
}

func (s *localStore) Remove(_ context.Context, _ string, ticker string) bool {
	entries, ok := s.read()
	if !ok {
		return false
	}
	kept := make([]entity.Entry, 0, len(entries))
	for _, x := range entries {
		if x.Ticker != ticker {
			kept = append(kept, x)
		}
	}
	return s.write(kept)
}

func (s *localStore) Clear(_ context.Context, _ string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Remove(LocalStorageKey); err != nil {
		slog.Warn("failed to clear local watchlist", "error", err)
	}
}

// read は ok=false をストレージ自体が使えない場合にのみ返します。値の破損は空リストとして扱います。
func (s *localStore) read() ([]entity.Entry, bool) {
	if s.kv == nil {
		return []entity.Entry{}, false
	}
	raw, found, err := s.kv.Get(LocalStorageKey)
	if err != nil {
		slog.Warn("local storage unavailable", "error", err)
		return []entity.Entry{}, false
	}
	if !found || raw == "" {
		return []entity.Entry{}, true
	}
	var entries []entity.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		slog.Warn("malformed local watchlist; treating as empty", "error", err)
		return []entity.Entry{}, true
	}
	valid := make([]entity.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Ticker == "" || !e.Market.Valid() {
			continue
		}
		valid = append(valid, e)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].AddedAt.After(valid[j].AddedAt)
	})
	return valid, true
}

func (s *localStore) write(entries []entity.Entry) bool {
	b, err := json.Marshal(entries)
	if err != nil {
		slog.Warn("failed to encode local watchlist", "error", err)
		return false
	}
	if err := s.kv.Set(LocalStorageKey, string(b)); err != nil {
		slog.Warn("failed to write local watchlist", "error", err)
		return false
	}
	return true
}
