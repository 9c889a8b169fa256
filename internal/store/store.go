package store

import (
	"context"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
)

// Store caches the last-known-good derived snapshot per view between
// process runs. The remote service stays the source of truth; this exists
// only so a fresh invocation can show stale data instead of a blank screen
// while the first refresh is in flight.
type Store interface {
	// GetSnapshot returns the cached snapshot for a view key, or nil when
	// none has been saved.
	GetSnapshot(ctx context.Context, viewKey string) (*model.Snapshot, error)
	// SaveSnapshot replaces the cached snapshot for a view key.
	SaveSnapshot(ctx context.Context, viewKey string, snap model.Snapshot) error

	Migrate(ctx context.Context) error
	Close() error
}
