package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRepositoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewRepositoryStore(setupTestDB(t))

	record, err := store.Add(ctx, "octo", "https://github.com/octo/repo.git", "/tmp/repos/octo")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if record.ID == 0 {
		t.Fatalf("expected non-zero record id")
	}
	if record.Indexed {
		t.Fatalf("expected new record to be unindexed")
	}

	fetched, err := store.Get(ctx, "octo")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fetched.URL != "https://github.com/octo/repo.git" {
		t.Fatalf("unexpected url %q", fetched.URL)
	}
	if fetched.LastUpdated != nil {
		t.Fatalf("expected LastUpdated to be unset for a fresh record")
	}

	exists, err := store.Exists(ctx, "octo")
	if err != nil || !exists {
		t.Fatalf("Exists failed: exists=%v err=%v", exists, err)
	}

	removed, err := store.Remove(ctx, "octo")
	if err != nil || !removed {
		t.Fatalf("Remove failed: removed=%v err=%v", removed, err)
	}

	if _, err := store.Get(ctx, "octo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestRepositoryStoreDuplicateAlias(t *testing.T) {
	ctx := context.Background()
	store := NewRepositoryStore(setupTestDB(t))

	if _, err := store.Add(ctx, "dup", "https://github.com/a/b.git", "/tmp/dup"); err != nil {
		t.Fatalf("first Add returned error: %v", err)
	}

	_, err := store.Add(ctx, "dup", "https://github.com/c/d.git", "/tmp/dup2")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepositoryStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewRepositoryStore(setupTestDB(t))

	for _, alias := range []string{"zeta", "alpha", "mid"} {
		if _, err := store.Add(ctx, alias, "https://github.com/o/"+alias+".git", "/tmp/"+alias); err != nil {
			t.Fatalf("Add %s returned error: %v", alias, err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, alias := range want {
		if records[i].Alias != alias {
			t.Fatalf("expected alias %q at index %d, got %q", alias, i, records[i].Alias)
		}
	}

	count, err := store.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("Count failed: count=%d err=%v", count, err)
	}
}

func TestRepositoryStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := NewRepositoryStore(setupTestDB(t))

	if _, err := store.Add(ctx, "octo", "https://github.com/octo/repo.git", "/tmp/octo"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	indexed := true
	if err := store.UpdateStatus(ctx, "octo", &now, &indexed); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	record, err := store.Get(ctx, "octo")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.LastUpdated == nil || !record.LastUpdated.Equal(now) {
		t.Fatalf("expected LastUpdated %v, got %v", now, record.LastUpdated)
	}
	if !record.Indexed {
		t.Fatalf("expected Indexed to be true")
	}

	// Partial update must leave the other field untouched.
	later := now.Add(time.Hour)
	if err := store.UpdateStatus(ctx, "octo", &later, nil); err != nil {
		t.Fatalf("partial UpdateStatus returned error: %v", err)
	}
	record, err = store.Get(ctx, "octo")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !record.Indexed {
		t.Fatalf("partial update should not reset Indexed")
	}

	if err := store.UpdateStatus(ctx, "missing", &now, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing alias, got %v", err)
	}
}

func TestRepositoryStoreListIndexEntries(t *testing.T) {
	ctx := context.Background()
	store := NewRepositoryStore(setupTestDB(t))

	record, err := store.Add(ctx, "octo", "https://github.com/octo/repo.git", "/tmp/octo")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	embedding := "[0.1,0.2]"
	if _, err := store.AddIndexEntry(ctx, record.ID, "z.go", "hash-z", nil); err != nil {
		t.Fatalf("AddIndexEntry returned error: %v", err)
	}
	if _, err := store.AddIndexEntry(ctx, record.ID, "a.go", "hash-a", &embedding); err != nil {
		t.Fatalf("AddIndexEntry returned error: %v", err)
	}

	entries, err := store.ListIndexEntries(ctx, record.ID)
	if err != nil {
		t.Fatalf("ListIndexEntries returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].FilePath != "a.go" || entries[1].FilePath != "z.go" {
		t.Fatalf("expected entries ordered by file path, got %q then %q", entries[0].FilePath, entries[1].FilePath)
	}
	if entries[0].EmbeddingData == nil || *entries[0].EmbeddingData != embedding {
		t.Fatalf("expected embedding data to round-trip")
	}
	if entries[1].EmbeddingData != nil {
		t.Fatalf("expected nil embedding data for z.go")
	}
}

func TestRepositoryStoreRemoveCascadesIndexEntries(t *testing.T) {
	ctx := context.Background()
	dbCtx := setupTestDB(t)
	store := NewRepositoryStore(dbCtx)

	record, err := store.Add(ctx, "octo", "https://github.com/octo/repo.git", "/tmp/octo")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	for _, path := range []string{"a.go", "b.go"} {
		if _, err := store.AddIndexEntry(ctx, record.ID, path, "hash-"+path, nil); err != nil {
			t.Fatalf("AddIndexEntry returned error: %v", err)
		}
	}

	count, err := store.CountIndexEntries(ctx, record.ID)
	if err != nil || count != 2 {
		t.Fatalf("CountIndexEntries failed: count=%d err=%v", count, err)
	}

	removed, err := store.Remove(ctx, "octo")
	if err != nil || !removed {
		t.Fatalf("Remove failed: removed=%v err=%v", removed, err)
	}

	assertCount(t, dbCtx.DB, "index_entries", 0)

	// Removing again is idempotent: no error, reports nothing removed.
	removed, err = store.Remove(ctx, "octo")
	if err != nil {
		t.Fatalf("second Remove returned error: %v", err)
	}
	if removed {
		t.Fatalf("expected second Remove to report no record")
	}
}
