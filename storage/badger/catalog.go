// Copyright 2026 Geosift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	return &CatalogRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CatalogRepository has no resources to release
// beyond the shared backend, which the owner closes.
func (r *CatalogRepository) Close() error {
	return nil
}

// AddEntries adds one or more catalog entries to storage.
func (r *CatalogRepository) AddEntries(ctx context.Context, entries ...*core.CatalogEntry) ([]*core.CatalogEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			// Use content-based ID if not set
			if entry.Id == 0 {
				entry.Id = core.IDFromContent(entry.Name)
			}

			// Set timestamps, preserving InsertedAt on re-adds
			now := time.Now().UTC()
			if entry.InsertedAt.IsZero() {
				entry.InsertedAt = now
			}
			entry.UpdatedAt = now

			// Store primary record
			key := makeCatalogEntryKey(entry.Id)
			value := storage.MarshalCatalogEntry(entry)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store name index
			nameKey := makeCatalogNameKey(entry.Name)
			if err := tx.Set(nameKey, storage.MarshalID(entry.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return entries, err
}

// GetEntry retrieves a single catalog entry by ID.
func (r *CatalogRepository) GetEntry(ctx context.Context, id core.ID) (*core.CatalogEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCatalogEntryKey(id)
		var err error
		result, err = readEntry(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindByName retrieves a catalog entry by its exact name via the name index.
func (r *CatalogRepository) FindByName(ctx context.Context, name string) (*core.CatalogEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.CatalogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nameKey := makeCatalogNameKey(name)
		item, err := tx.Get(nameKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var entryID core.ID
		err = item.Value(func(val []byte) error {
			entryID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readEntry(tx, makeCatalogEntryKey(entryID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindSimilar finds catalog entries similar to the given vector by scanning
// all stored entries. Vectors are expected to be normalized, so the dot
// product equals cosine similarity.
func (r *CatalogRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.CatalogMatch, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var results []*core.CatalogMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var entry *core.CatalogEntry
			err := item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalCatalogEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, entry.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.CatalogMatch{
					Entry: entry,
					Score: similarity,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.CatalogMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the total number of catalog entries.
func (r *CatalogRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogEntryPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// readEntry reads a catalog entry from the transaction.
func readEntry(tx *badger.Txn, key []byte) (*core.CatalogEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.CatalogEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalCatalogEntry(val)
		return err
	})
	return entry, err
}
