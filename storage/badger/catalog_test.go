package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/storage"
)

func TestCatalogBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	entry := &core.CatalogEntry{
		Name:   "central park",
		Attrs:  map[string]string{"city": "new york"},
		Vector: []float32{0.1, 0.2, 0.3},
	}

	added, err := repo.AddEntries(ctx, entry)
	if err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := repo.GetEntry(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.Name != "central park" {
		t.Fatalf("Expected 'central park', got '%s'", retrieved.Name)
	}
	if retrieved.Attrs["city"] != "new york" {
		t.Fatalf("Expected attrs to survive a round trip, got %v", retrieved.Attrs)
	}

	found, err := repo.FindByName(ctx, "central park")
	if err != nil {
		t.Fatalf("Failed to find entry by name: %v", err)
	}
	if found.Id != added[0].Id {
		t.Fatalf("Expected ID %d, got %d", added[0].Id, found.Id)
	}
}

func TestCatalogNotFound(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := repo.GetEntry(ctx, 12345); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if _, err := repo.FindByName(ctx, "nowhere"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCatalogContentID(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	first, err := repo.AddEntries(ctx, &core.CatalogEntry{Name: "eiffel tower"})
	if err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	second, err := repo.AddEntries(ctx, &core.CatalogEntry{Name: "eiffel tower"})
	if err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	if first[0].Id != second[0].Id {
		t.Fatalf("Expected the same content ID for the same name, got %d and %d", first[0].Id, second[0].Id)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected duplicate name to overwrite, got %d entries", count)
	}
}

func TestCatalogPreservesInsertedAt(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := repo.AddEntries(ctx, &core.CatalogEntry{Name: "golden gate bridge"})
	if err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	firstInserted := added[0].InsertedAt

	readded, err := repo.AddEntries(ctx, &core.CatalogEntry{
		Name:       "golden gate bridge",
		InsertedAt: firstInserted,
	})
	if err != nil {
		t.Fatalf("Failed to re-add entry: %v", err)
	}
	if !readded[0].InsertedAt.Equal(firstInserted) {
		t.Fatalf("Expected InsertedAt to be preserved, got %v and %v", firstInserted, readded[0].InsertedAt)
	}
	if readded[0].UpdatedAt.Before(firstInserted) {
		t.Fatal("Expected UpdatedAt to move forward on re-add")
	}

	stored, err := repo.GetEntry(ctx, readded[0].Id)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if !stored.InsertedAt.Equal(firstInserted) {
		t.Fatalf("Expected stored InsertedAt to be preserved, got %v", stored.InsertedAt)
	}
}

func TestCatalogFindSimilar(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = repo.AddEntries(ctx,
		&core.CatalogEntry{Name: "exact", Vector: []float32{1, 0, 0}},
		&core.CatalogEntry{Name: "close", Vector: []float32{0.9, 0.1, 0}},
		&core.CatalogEntry{Name: "orthogonal", Vector: []float32{0, 1, 0}},
		&core.CatalogEntry{Name: "unembedded"},
	)
	if err != nil {
		t.Fatalf("Failed to add entries: %v", err)
	}

	matches, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Entry.Name != "exact" {
		t.Fatalf("Expected best match first, got '%s'", matches[0].Entry.Name)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Expected descending score order")
	}

	limited, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 0.0, 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("Expected limit to cap results, got %d", len(limited))
	}
}

func TestCatalogClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	repo.Close()
	backend.Close()

	ctx := context.Background()
	if _, err := repo.Count(ctx); !errors.Is(err, storage.ErrStorageClosed) {
		t.Fatalf("Expected ErrStorageClosed, got %v", err)
	}
}
