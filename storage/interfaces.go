package storage

import (
	"context"

	"github.com/geosift/geosift/core"
)

// CatalogRepository provides operations for managing the indexed POI catalog.
// Implementations must be thread-safe and support concurrent access.
type CatalogRepository interface {
	// AddEntries adds one or more catalog entries to storage.
	// Entries with Id=0 get a content-based ID derived from their name.
	// Sets InsertedAt if not already set. Returns the stored entries.
	AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error)

	// GetEntry retrieves a single catalog entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.CatalogEntry, error)

	// FindByName retrieves a catalog entry by its exact name.
	// Returns ErrNotFound if no entry matches.
	FindByName(ctx context.Context, name string) (*core.CatalogEntry, error)

	// FindSimilar finds catalog entries similar to the given vector.
	// Returns entries with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.CatalogMatch, error)

	// Count returns the total number of catalog entries.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
