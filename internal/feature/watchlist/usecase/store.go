package usecase

import (
	"context"

	"stock_portal/internal/feature/watchlist/domain/entity"
)

// Store is the persistence capability set shared by the remote and the local backend.
// Failures never surface as errors: reads degrade to an empty list and writes to false.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Store interface {
	// List returns the owner's entries ordered by AddedAt descending.
	List(ctx context.Context, ownerID string) []entity.Entry
	// Insert persists e. A ticker that is already present is a successful no-op.
	Insert(ctx context.Context, ownerID string, e entity.Entry) bool
	// Remove deletes the entry with the given ticker.
	Remove(ctx context.Context, ownerID, ticker string) bool
	// Clear deletes every entry of the owner.
	Clear(ctx context.Context, ownerID string)
}

// Session is the identity fact consumed by the engine.
// Pending is true while the identity check has not completed yet.
type Session struct {
	Pending bool
	OwnerID string
}

// Authenticated reports whether the session carries a resolved owner identity.
func (s Session) Authenticated() bool {
	return !s.Pending && s.OwnerID != ""
}

// Backends holds the two interchangeable store variants.
// Local may be nil in deployments that require login for any watchlist use.
type Backends struct {
	Remote Store
	Local  Store
}

// SelectStore returns the store that is authoritative for the session.
// It is a pure function of the session so the active backend can never drift from the identity.
// A nil result means no backend is available.
func SelectStore(s Session, b Backends) Store {
	if s.Pending {
		return nil
	}
	if s.Authenticated() {
		return b.Remote
	}
	return b.Local
}
