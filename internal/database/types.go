package database

import "time"

// RepositoryRecord represents a row in the repositories table. A record's
// existence does not imply its local path still holds a valid clone; that
// divergence is detected by the cache manager's reconciliation operations.
type RepositoryRecord struct {
	ID          int64
	Alias       string
	URL         string
	LocalPath   string
	LastUpdated *time.Time
	Indexed     bool
}

// IndexEntryRecord mirrors the index_entries table. Entries belong to exactly
// one repository and are cascade-deleted with it. Reserved for the semantic
// indexing feature; the search path never mutates them.
type IndexEntryRecord struct {
	ID            int64
	RepoID        int64
	FilePath      string
	ContentHash   string
	EmbeddingData *string
	CreatedAt     time.Time
}

// Info describes the catalog file itself for diagnostic output.
type Info struct {
	DatabasePath string
	Exists       bool
	DataDir      string
	DirExists    bool
	SizeMB       float64
}
