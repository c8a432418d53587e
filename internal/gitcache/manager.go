// Package gitcache bridges catalog records to actual on-disk git clones. It
// owns cloning, updating, removing, and reconciling repositories so that the
// catalog and the filesystem never diverge silently.
package gitcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kodeklip/kodeklip/internal/config"
	"github.com/kodeklip/kodeklip/internal/database"
)

// Manager coordinates the repository cache: catalog records on one side,
// on-disk clones under the repos directory on the other.
type Manager struct {
	db       *database.Context
	store    *database.RepositoryStore
	reposDir string

	// Progress receives sideband output from clone/fetch/pull operations.
	Progress io.Writer
}

// NewManager builds a Manager over the given catalog handle, ensuring the
// repos directory exists.
func NewManager(dbCtx *database.Context) (*Manager, error) {
	reposDir := config.GetReposDir()
	if err := os.MkdirAll(reposDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create repos directory: %w", err)
	}

	return &Manager{
		db:       dbCtx,
		store:    database.NewRepositoryStore(dbCtx),
		reposDir: reposDir,
		Progress: os.Stderr,
	}, nil
}

// Store exposes the underlying catalog store.
func (m *Manager) Store() *database.RepositoryStore {
	return m.store
}

// ReposDir returns the cache root holding one clone directory per alias.
func (m *Manager) ReposDir() string {
	return m.reposDir
}

// LocalPath returns the canonical clone location for an alias.
func (m *Manager) LocalPath(alias string) string {
	return filepath.Join(m.reposDir, alias)
}

// RepositoryExists reports whether alias has BOTH a valid local clone and a
// catalog record. Either alone is insufficient; this dual check is the
// precondition for all other operations.
func (m *Manager) RepositoryExists(ctx context.Context, alias string) bool {
	if !isValidClone(m.LocalPath(alias)) {
		return false
	}
	exists, err := m.store.Exists(ctx, alias)
	return err == nil && exists
}

// Clone clones url into the cache under alias and records it in the catalog.
// Any failure after the clone starts removes the partial directory so the
// same alias can always be retried.
func (m *Manager) Clone(ctx context.Context, url, alias string) CloneResult {
	if !ValidateRepositoryURL(url) {
		return CloneResult{Message: fmt.Sprintf("Invalid repository URL: %s", url)}
	}

	alias = strings.TrimSpace(alias)
	if alias == "" {
		return CloneResult{Message: "Repository alias cannot be empty"}
	}

	localPath := m.LocalPath(alias)

	if _, err := os.Stat(localPath); err == nil {
		return CloneResult{Message: fmt.Sprintf("Repository with alias %q already exists", alias)}
	}

	inCatalog, err := m.store.Exists(ctx, alias)
	if err != nil {
		return CloneResult{Message: fmt.Sprintf("Failed to check catalog for %q: %v", alias, err)}
	}
	if inCatalog {
		return CloneResult{Message: fmt.Sprintf("Repository alias %q already exists in database", alias)}
	}

	_, err = git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
		URL:      url,
		Progress: m.Progress,
	})
	if err != nil {
		removePartialClone(localPath)
		return CloneResult{Message: describeGitError("Git clone failed", err)}
	}

	if !isValidClone(localPath) {
		removePartialClone(localPath)
		return CloneResult{Message: "Clone appeared to succeed but repository not found locally"}
	}

	record, err := m.store.Add(ctx, alias, url, localPath)
	if err != nil {
		removePartialClone(localPath)
		return CloneResult{Message: fmt.Sprintf("Failed to record repository %q: %v", alias, err)}
	}

	return CloneResult{
		OK:      true,
		Message: fmt.Sprintf("Successfully cloned %s to %s", alias, localPath),
		Record:  record,
	}
}

// Update fetches from origin and fast-forwards the local clone when the
// remote has new refs. The catalog timestamp is stamped on every success,
// whether or not changes were pulled. A dirty working tree is refused.
func (m *Manager) Update(ctx context.Context, alias string) UpdateResult {
	if !m.RepositoryExists(ctx, alias) {
		return UpdateResult{Message: fmt.Sprintf("Repository %q does not exist", alias)}
	}

	localPath := m.LocalPath(alias)

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return UpdateResult{Message: fmt.Sprintf("Local repository %q is corrupted or not a valid git repository", alias)}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return UpdateResult{Message: fmt.Sprintf("Local repository %q is corrupted or not a valid git repository", alias)}
	}

	status, err := worktree.Status()
	if err != nil {
		return UpdateResult{Message: fmt.Sprintf("Failed to inspect working tree of %q: %v", alias, err)}
	}
	if !status.IsClean() {
		return UpdateResult{Message: fmt.Sprintf("Repository %q has uncommitted changes", alias)}
	}

	hasChanges, fetchErr := m.fetch(ctx, repo)
	if fetchErr != nil {
		return UpdateResult{Message: describeGitError("Git update failed", fetchErr)}
	}

	var message string
	if hasChanges {
		if err := worktree.PullContext(ctx, &git.PullOptions{
			RemoteName: git.DefaultRemoteName,
			Progress:   m.Progress,
		}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return UpdateResult{Message: describeGitError("Git update failed", err)}
		}
		message = fmt.Sprintf("Successfully updated %s - pulled new changes", alias)
	} else {
		message = fmt.Sprintf("Repository %s is already up to date", alias)
	}

	now := time.Now().UTC()
	if err := m.store.UpdateStatus(ctx, alias, &now, nil); err != nil {
		return UpdateResult{Message: fmt.Sprintf("Failed to record update time for %q: %v", alias, err)}
	}

	return UpdateResult{OK: true, Message: message, HasChanges: hasChanges}
}

// CheckRemoteUpdates runs the fetch-and-inspect half of Update without
// pulling and without touching the catalog.
func (m *Manager) CheckRemoteUpdates(ctx context.Context, alias string) CheckResult {
	if !m.RepositoryExists(ctx, alias) {
		return CheckResult{Message: fmt.Sprintf("Repository %q does not exist", alias)}
	}

	repo, err := git.PlainOpen(m.LocalPath(alias))
	if err != nil {
		return CheckResult{Message: fmt.Sprintf("Local repository %q is corrupted or not a valid git repository", alias)}
	}

	hasUpdates, fetchErr := m.fetch(ctx, repo)
	if fetchErr != nil {
		return CheckResult{Message: describeGitError("Failed to check remote updates", fetchErr)}
	}

	var message string
	if hasUpdates {
		message = fmt.Sprintf("Repository %s has remote updates available", alias)
	} else {
		message = fmt.Sprintf("Repository %s is up to date with remote", alias)
	}

	return CheckResult{OK: true, Message: message, HasUpdates: hasUpdates}
}

// fetch fetches from origin and reports whether any ref was not already up
// to date.
func (m *Manager) fetch(ctx context.Context, repo *git.Repository) (bool, error) {
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		Progress:   m.Progress,
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, nil
	}
	return false, err
}

// Status assembles a diagnostic snapshot of one repository. An invalid local
// clone yields a partial status with IsGitRepo=false rather than an error.
func (m *Manager) Status(ctx context.Context, alias string) StatusResult {
	if !m.RepositoryExists(ctx, alias) {
		return StatusResult{Message: fmt.Sprintf("Repository %q does not exist", alias)}
	}

	localPath := m.LocalPath(alias)
	status := RepoStatus{
		Alias:     alias,
		LocalPath: localPath,
		Exists:    true,
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		status.IsGitRepo = false
		status.Error = "Not a valid git repository"
		return StatusResult{
			Message: fmt.Sprintf("Repository %q is not a valid git repository", alias),
			Status:  status,
		}
	}

	status.IsGitRepo = true

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			status.CurrentBranch = head.Name().Short()
		} else {
			status.CurrentBranch = "HEAD"
		}

		if iter, err := repo.Log(&git.LogOptions{From: head.Hash()}); err == nil {
			count := 0
			_ = iter.ForEach(func(_ *object.Commit) error {
				count++
				return nil
			})
			status.TotalCommits = count
		}
	}

	if worktree, err := repo.Worktree(); err == nil {
		if wtStatus, err := worktree.Status(); err == nil {
			status.IsDirty = !wtStatus.IsClean()
			for _, file := range wtStatus {
				if file.Worktree == git.Untracked {
					status.UntrackedFiles++
				}
			}
		}
	}

	if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		status.HasRemote = true
		for _, remote := range remotes {
			cfg := remote.Config()
			if cfg.Name == git.DefaultRemoteName && len(cfg.URLs) > 0 {
				status.RemoteURL = cfg.URLs[0]
				break
			}
		}
		if status.RemoteURL == "" {
			if urls := remotes[0].Config().URLs; len(urls) > 0 {
				status.RemoteURL = urls[0]
			}
		}
	}

	if record, err := m.store.Get(ctx, alias); err == nil {
		status.LastUpdated = record.LastUpdated
		status.Indexed = record.Indexed
		status.CatalogURL = record.URL
	}

	return StatusResult{
		OK:      true,
		Message: fmt.Sprintf("Status retrieved for %s", alias),
		Status:  status,
	}
}

// Remove deletes the catalog record and, unless keepFiles, the local clone.
// The catalog goes first: a dangling directory is recoverable by cleanup,
// while a dangling record pointing at deleted files is not.
func (m *Manager) Remove(ctx context.Context, alias string, keepFiles bool) RemoveResult {
	record, err := m.store.Get(ctx, alias)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return RemoveResult{Message: fmt.Sprintf("Repository %q not found in database", alias)}
		}
		return RemoveResult{Message: fmt.Sprintf("Failed to remove repository %q: %v", alias, err)}
	}

	if _, err := m.store.Remove(ctx, alias); err != nil {
		return RemoveResult{Message: fmt.Sprintf("Failed to remove repository %q: %v", alias, err)}
	}

	localPath := m.LocalPath(alias)

	if keepFiles {
		return RemoveResult{OK: true, Message: fmt.Sprintf("Removed repository %q from database (kept local files)", alias)}
	}

	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		return RemoveResult{OK: true, Message: fmt.Sprintf("Removed repository %q from database (no local files found)", alias)}
	}

	if err := os.RemoveAll(localPath); err != nil {
		// Best-effort rollback of the catalog delete so the record is not
		// lost while its files remain.
		if _, addErr := m.store.Add(ctx, record.Alias, record.URL, record.LocalPath); addErr == nil {
			_ = m.store.UpdateStatus(ctx, record.Alias, record.LastUpdated, &record.Indexed)
		}
		return RemoveResult{Message: fmt.Sprintf("Failed to remove repository %q: %v", alias, err)}
	}

	if _, err := os.Stat(localPath); err == nil {
		// The record is already gone; the leftover directory becomes an
		// orphan for CleanupOrphanedFiles to reconcile.
		return RemoveResult{Message: fmt.Sprintf("Failed to completely remove local files for %q", alias)}
	}

	return RemoveResult{OK: true, Message: fmt.Sprintf("Successfully removed repository %q and local files", alias)}
}

// CleanupOrphanedFiles deletes cache subdirectories whose name matches no
// catalog alias. Each directory is processed independently; one failed
// removal never aborts the rest of the batch.
func (m *Manager) CleanupOrphanedFiles(ctx context.Context) CleanupReport {
	var report CleanupReport

	records, err := m.store.List(ctx)
	if err != nil {
		report.Message = fmt.Sprintf("Cleanup failed: %v", err)
		return report
	}

	aliases := make(map[string]struct{}, len(records))
	for _, record := range records {
		aliases[record.Alias] = struct{}{}
	}

	entries, err := os.ReadDir(m.reposDir)
	if err != nil {
		if os.IsNotExist(err) {
			report.OK = true
			report.Message = "No repositories directory found"
			return report
		}
		report.Message = fmt.Sprintf("Cleanup failed: %v", err)
		return report
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, known := aliases[entry.Name()]; known {
			continue
		}

		report.OrphanedDirs = append(report.OrphanedDirs, entry.Name())
		dirPath := filepath.Join(m.reposDir, entry.Name())
		sizeMB := dirSizeMB(dirPath)

		if err := os.RemoveAll(dirPath); err != nil {
			report.Failed = append(report.Failed, FailedRemoval{Directory: entry.Name(), Error: err.Error()})
			continue
		}

		report.RemovedDirs = append(report.RemovedDirs, entry.Name())
		report.SpaceFreedMB += sizeMB
	}

	report.OK = true
	if len(report.OrphanedDirs) > 0 {
		report.Message = fmt.Sprintf("Cleaned up %d orphaned directories, freed %.2f MB",
			len(report.RemovedDirs), report.SpaceFreedMB)
		if len(report.Failed) > 0 {
			report.Message += fmt.Sprintf(" (%d failed)", len(report.Failed))
		}
	} else {
		report.Message = "No orphaned directories found"
	}

	return report
}

// SyncDatabaseWithFilesystem reconciles every catalog record against the
// filesystem: records whose clone is gone or invalid are deleted, records
// whose path drifted from the canonical location are rewritten. All
// mutations are applied in one transaction, and the operation is idempotent.
func (m *Manager) SyncDatabaseWithFilesystem(ctx context.Context) SyncReport {
	var report SyncReport

	records, err := m.store.List(ctx)
	if err != nil {
		report.Message = fmt.Sprintf("Database synchronization failed: %v", err)
		return report
	}

	actions := database.ReconcileActions{PathUpdates: make(map[int64]string)}

	for _, record := range records {
		if _, err := os.Stat(record.LocalPath); os.IsNotExist(err) {
			report.MissingRepos = append(report.MissingRepos, record.Alias)
			report.RemovedRecords = append(report.RemovedRecords, record.Alias)
			actions.RemoveIDs = append(actions.RemoveIDs, record.ID)
			continue
		}

		if !isValidClone(record.LocalPath) {
			report.InvalidRepos = append(report.InvalidRepos, record.Alias)
			report.RemovedRecords = append(report.RemovedRecords, record.Alias)
			actions.RemoveIDs = append(actions.RemoveIDs, record.ID)
			continue
		}

		if expected := m.LocalPath(record.Alias); record.LocalPath != expected {
			report.UpdatedRepos = append(report.UpdatedRepos, record.Alias)
			actions.PathUpdates[record.ID] = expected
		}
	}

	if err := m.store.ApplyReconciliation(ctx, actions); err != nil {
		report.Message = fmt.Sprintf("Database synchronization failed: %v", err)
		return report
	}

	report.OK = true
	totalIssues := len(report.MissingRepos) + len(report.InvalidRepos) + len(report.UpdatedRepos)
	if totalIssues > 0 {
		report.Message = fmt.Sprintf("Synchronized database: removed %d records, updated %d paths",
			len(report.RemovedRecords), len(report.UpdatedRepos))
	} else {
		report.Message = "Database is already synchronized with filesystem"
	}

	return report
}

// DiskUsage sums on-disk sizes per repository. Inaccessible directories
// contribute zero rather than aborting the aggregate.
func (m *Manager) DiskUsage(ctx context.Context) DiskUsageReport {
	report := DiskUsageReport{RepoSizes: make(map[string]float64)}

	records, err := m.store.List(ctx)
	if err != nil {
		report.Message = fmt.Sprintf("Failed to calculate disk usage: %v", err)
		return report
	}

	report.TotalRepos = len(records)

	for _, record := range records {
		if _, err := os.Stat(record.LocalPath); err != nil {
			continue
		}
		sizeMB := dirSizeMB(record.LocalPath)
		report.RepoSizes[record.Alias] = sizeMB
		report.TotalSizeMB += sizeMB
	}

	if report.TotalRepos > 0 {
		report.AvgSizeMB = report.TotalSizeMB / float64(report.TotalRepos)
	}

	sizes := make([]RepoSize, 0, len(report.RepoSizes))
	for alias, size := range report.RepoSizes {
		sizes = append(sizes, RepoSize{Alias: alias, SizeMB: size})
	}
	sort.SliceStable(sizes, func(i, j int) bool {
		if sizes[i].SizeMB != sizes[j].SizeMB {
			return sizes[i].SizeMB > sizes[j].SizeMB
		}
		return sizes[i].Alias < sizes[j].Alias
	})
	if len(sizes) > 5 {
		sizes = sizes[:5]
	}
	report.Largest = sizes

	report.OK = true
	report.Message = fmt.Sprintf("Total disk usage: %.2f MB across %d repositories",
		report.TotalSizeMB, report.TotalRepos)

	return report
}

// isValidClone reports whether path exists and carries the .git marker.
func isValidClone(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	_, err := os.Stat(filepath.Join(path, git.GitDirName))
	return err == nil
}

// removePartialClone best-effort deletes a failed clone target.
func removePartialClone(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.RemoveAll(path)
	}
}

// dirSizeMB sums regular file sizes under dir, in megabytes. Unreadable
// trees count as zero.
func dirSizeMB(dir string) float64 {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	if err != nil {
		return 0
	}
	return float64(total) / (1024 * 1024)
}
