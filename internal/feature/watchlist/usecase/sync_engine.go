package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"stock_portal/internal/feature/watchlist/domain/entity"
)

// SyncEngine keeps the in-memory watchlist of one session in step with the active backend.
//
// In-memory state only ever reflects confirmed backend state: Add and Remove apply their
// effect after the store reported success, so retrying after a false result is always safe.
// Concurrent mutations are not queued against each other unless WithSerializedMutations is set.
type SyncEngine struct {
	backends  Backends
	now       func() time.Time
	serialize bool

	// mutateMu serializes mutations when serialize is set.
	mutateMu sync.Mutex

	mu      sync.RWMutex
	session Session
	store   Store
	gen     uint64
	entries []entity.Entry
	loading bool
	loaded  bool
}

// EngineOption configures a SyncEngine.
type EngineOption func(*SyncEngine)

// WithClock overrides the clock used to stamp AddedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *SyncEngine) { e.now = now }
}

// WithSerializedMutations runs Add, Remove, Toggle, Clear and MergeLocal one at a time.
func WithSerializedMutations() EngineOption {
	return func(e *SyncEngine) { e.serialize = true }
}

// NewSyncEngine creates an engine over the given backends. Nothing is loaded until Load is called.
func NewSyncEngine(b Backends, opts ...EngineOption) *SyncEngine {
	e := &SyncEngine{
		backends: b,
		now:      time.Now,
		session:  Session{Pending: true},
		entries:  []entity.Entry{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load selects the backend for the session and replaces the entries with its contents.
// It must be called on every session transition. While the session is pending it does nothing,
// so the list never flickers between the two backends.
func (e *SyncEngine) Load(ctx context.Context, s Session) {
	if s.Pending {
		return
	}
	store := SelectStore(s, e.backends)

	e.mu.Lock()
	prev := e.session
	e.session = s
	e.store = store
	e.gen++
	gen := e.gen
	e.loading = true
	e.mu.Unlock()

	if !prev.Pending && !prev.Authenticated() && s.Authenticated() {
		// login does not carry the device list over; MergeLocal does that on request
		slog.Info("session authenticated; device watchlist left in place", "owner_id", s.OwnerID)
	}

	entries := []entity.Entry{}
	if store != nil {
		if listed := store.List(ctx, s.OwnerID); listed != nil {
			entries = listed
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		// a newer session transition superseded this load
		return
	}
	e.entries = entries
	e.loading = false
	e.loaded = true
}

// Add inserts the candidate when its ticker is not tracked yet.
// It returns false for a duplicate or when the store rejected the write.
func (e *SyncEngine) Add(ctx context.Context, candidate entity.Entry) (bool, error) {
	if e.serialize {
		e.mutateMu.Lock()
		defer e.mutateMu.Unlock()
	}
	return e.add(ctx, candidate)
}

func (e *SyncEngine) add(ctx context.Context, candidate entity.Entry) (bool, error) {
	candidate.Ticker = strings.TrimSpace(candidate.Ticker)
	if candidate.Ticker == "" || !candidate.Market.Valid() {
		return false, ErrInvalidEntry
	}

	store, ownerID, gen, err := e.active()
	if err != nil {
		return false, err
	}
	if e.IsMember(candidate.Ticker) {
		return false, nil
	}

	candidate.AddedAt = e.now()
	if !store.Insert(ctx, ownerID, candidate) {
		slog.Warn("watchlist insert rejected by store", "ticker", candidate.Ticker, "market", candidate.Market)
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen && e.indexOf(candidate.Ticker) < 0 {
		e.entries = append([]entity.Entry{candidate}, e.entries...)
	}
	return true, nil
}

// Remove deletes the entry with the given ticker once the store confirmed it.
func (e *SyncEngine) Remove(ctx context.Context, ticker string) (bool, error) {
	if e.serialize {
		e.mutateMu.Lock()
		defer e.mutateMu.Unlock()
	}
	return e.remove(ctx, ticker)
}

func (e *SyncEngine) remove(ctx context.Context, ticker string) (bool, error) {
	store, ownerID, gen, err := e.active()
	if err != nil {
		return false, err
	}
	if !store.Remove(ctx, ownerID, ticker) {
		slog.Warn("watchlist remove rejected by store", "ticker", ticker)
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen {
		e.entries = filterOut(e.entries, ticker)
	}
	return true, nil
}

// Toggle removes a tracked candidate and returns false, or adds an untracked one and returns true.
// ErrLoginRequired means the operation was refused and is not the same as false.
func (e *SyncEngine) Toggle(ctx context.Context, candidate entity.Entry) (bool, error) {
	if e.serialize {
		e.mutateMu.Lock()
		defer e.mutateMu.Unlock()
	}
	candidate.Ticker = strings.TrimSpace(candidate.Ticker)
	if e.IsMember(candidate.Ticker) {
		_, err := e.remove(ctx, candidate.Ticker)
		return false, err
	}
	_, err := e.add(ctx, candidate)
	return true, err
}

// Clear empties the active backend and the in-memory list.
// The in-memory list is emptied whatever the backend reports.
func (e *SyncEngine) Clear(ctx context.Context) error {
	if e.serialize {
		e.mutateMu.Lock()
		defer e.mutateMu.Unlock()
	}
	store, ownerID, gen, err := e.active()
	if err != nil {
		return err
	}
	store.Clear(ctx, ownerID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen {
		e.entries = []entity.Entry{}
	}
	return nil
}

// MergeLocal copies the device-local entries into the remote list of an authenticated session.
// Tickers already tracked remotely are skipped and the original AddedAt is kept.
// The local list itself is not modified. It returns how many entries were copied.
func (e *SyncEngine) MergeLocal(ctx context.Context) (int, error) {
	if e.serialize {
		e.mutateMu.Lock()
		defer e.mutateMu.Unlock()
	}
	store, ownerID, gen, err := e.active()
	if err != nil {
		return 0, err
	}
	e.mu.RLock()
	authenticated := e.session.Authenticated()
	e.mu.RUnlock()
	if !authenticated {
		return 0, ErrLoginRequired
	}
	if e.backends.Local == nil {
		return 0, nil
	}

	local := e.backends.Local.List(ctx, "")
	merged := make([]entity.Entry, 0, len(local))
	// oldest first so the remote insertion order matches the original order
	for i := len(local) - 1; i >= 0; i-- {
		entry := local[i]
		if e.IsMember(entry.Ticker) || !entry.Market.Valid() {
			continue
		}
		if !store.Insert(ctx, ownerID, entry) {
			slog.Warn("merge of local entry rejected by store", "ticker", entry.Ticker)
			continue
		}
		merged = append(merged, entry)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen && len(merged) > 0 {
		for _, m := range merged {
			if e.indexOf(m.Ticker) < 0 {
				e.entries = append(e.entries, m)
			}
		}
		sort.SliceStable(e.entries, func(i, j int) bool {
			return e.entries[i].AddedAt.After(e.entries[j].AddedAt)
		})
	}
	slog.Info("device watchlist merged", "owner_id", ownerID, "merged", len(merged), "candidates", len(local))
	return len(merged), nil
}

// IsMember reports whether ticker is tracked.
func (e *SyncEngine) IsMember(ticker string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.indexOf(ticker) >= 0
}

// ByMarket returns the tracked entries of one market in list order.
func (e *SyncEngine) ByMarket(m entity.Market) []entity.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entity.Entry, 0, len(e.entries))
	for _, entry := range e.entries {
		if entry.Market == m {
			out = append(out, entry)
		}
	}
	return out
}

// Entries returns a copy of the tracked entries.
func (e *SyncEngine) Entries() []entity.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]entity.Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// IsLoading reports whether a load is in progress.
func (e *SyncEngine) IsLoading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// IsLoaded distinguishes "never loaded" from "loaded and empty".
func (e *SyncEngine) IsLoaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// active returns the store a mutation should go to, together with the owner and the load generation.
func (e *SyncEngine) active() (Store, string, uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return nil, "", 0, ErrNotLoaded
	}
	if e.store == nil {
		return nil, "", 0, ErrLoginRequired
	}
	return e.store, e.session.OwnerID, e.gen, nil
}

// indexOf must be called with mu held.
func (e *SyncEngine) indexOf(ticker string) int {
	for i, entry := range e.entries {
		if entry.Ticker == ticker {
			return i
		}
	}
	return -1
}

func filterOut(entries []entity.Entry, ticker string) []entity.Entry {
	out := make([]entity.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Ticker != ticker {
			out = append(out, entry)
		}
	}
	return out
}
