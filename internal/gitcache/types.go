package gitcache

import (
	"time"

	"github.com/kodeklip/kodeklip/internal/database"
)

// CloneResult reports the outcome of a clone operation.
type CloneResult struct {
	OK      bool
	Message string
	Record  *database.RepositoryRecord
}

// UpdateResult reports the outcome of an update operation.
type UpdateResult struct {
	OK         bool
	Message    string
	HasChanges bool
}

// CheckResult reports whether a remote has updates without pulling them.
type CheckResult struct {
	OK         bool
	Message    string
	HasUpdates bool
}

// RemoveResult reports the outcome of removing a repository.
type RemoveResult struct {
	OK      bool
	Message string
}

// RepoStatus is a point-in-time snapshot of one repository. When the local
// clone cannot be opened, IsGitRepo is false and only the path fields are
// populated; status must always produce some answer for diagnostic use.
type RepoStatus struct {
	Alias          string
	LocalPath      string
	Exists         bool
	IsGitRepo      bool
	CurrentBranch  string
	TotalCommits   int
	IsDirty        bool
	UntrackedFiles int
	HasRemote      bool
	RemoteURL      string
	LastUpdated    *time.Time
	Indexed        bool
	CatalogURL     string
	Error          string
}

// StatusResult wraps a RepoStatus with the usual success flag and message.
type StatusResult struct {
	OK      bool
	Message string
	Status  RepoStatus
}

// FailedRemoval records one orphan directory that could not be deleted.
type FailedRemoval struct {
	Directory string
	Error     string
}

// CleanupReport summarises a cleanup pass over the cache root. Failures are
// isolated per directory and never abort the batch.
type CleanupReport struct {
	OK           bool
	Message      string
	OrphanedDirs []string
	RemovedDirs  []string
	Failed       []FailedRemoval
	SpaceFreedMB float64
}

// SyncReport summarises one reconciliation pass between catalog and
// filesystem. Running it again with no further drift yields an empty report.
type SyncReport struct {
	OK             bool
	Message        string
	MissingRepos   []string
	InvalidRepos   []string
	UpdatedRepos   []string
	RemovedRecords []string
}

// RepoSize pairs an alias with its on-disk size.
type RepoSize struct {
	Alias  string
	SizeMB float64
}

// DiskUsageReport aggregates per-repository disk usage. Repositories whose
// directory is inaccessible contribute zero rather than aborting the total.
type DiskUsageReport struct {
	OK          bool
	Message     string
	TotalRepos  int
	TotalSizeMB float64
	AvgSizeMB   float64
	RepoSizes   map[string]float64
	Largest     []RepoSize
}
