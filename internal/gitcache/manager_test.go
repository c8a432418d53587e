package gitcache

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/kodeklip/kodeklip/internal/database"
)

func setupManager(t *testing.T) *Manager {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("KODEKLIP_DIR", tmp)

	dbCtx, err := database.CreateDatabase("")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.CloseDatabase(dbCtx))
	})

	manager, err := NewManager(dbCtx)
	require.NoError(t, err)
	manager.Progress = io.Discard
	return manager
}

// initUpstream creates a local repository with one commit to act as origin.
func initUpstream(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream")
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, repo, dir, "README.md", "hello from upstream\n", "initial commit")
	return dir
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, message string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(name)
	require.NoError(t, err)
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

// seedClone clones upstream into the cache under alias and records it in
// the catalog, bypassing URL validation the way an already-managed
// repository would look on disk.
func seedClone(t *testing.T, m *Manager, alias, upstream string) {
	t.Helper()
	localPath := m.LocalPath(alias)
	_, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: upstream})
	require.NoError(t, err)

	_, err = m.Store().Add(context.Background(), alias, upstream, localPath)
	require.NoError(t, err)
}

func TestCloneRejectsInvalidURL(t *testing.T) {
	m := setupManager(t)

	result := m.Clone(context.Background(), "not-a-url", "bad")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "Invalid repository URL")

	require.NoDirExists(t, m.LocalPath("bad"))
	require.False(t, m.RepositoryExists(context.Background(), "bad"))
}

func TestCloneRejectsEmptyAlias(t *testing.T) {
	m := setupManager(t)

	result := m.Clone(context.Background(), "https://github.com/user/repo.git", "   ")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "alias cannot be empty")
}

func TestCloneRejectsDirectoryCollision(t *testing.T) {
	m := setupManager(t)
	require.NoError(t, os.MkdirAll(m.LocalPath("taken"), 0o750))

	result := m.Clone(context.Background(), "https://github.com/user/repo.git", "taken")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "already exists")
}

func TestCloneRejectsCatalogCollision(t *testing.T) {
	m := setupManager(t)
	_, err := m.Store().Add(context.Background(), "taken", "https://github.com/a/b.git", "/elsewhere")
	require.NoError(t, err)

	result := m.Clone(context.Background(), "https://github.com/user/repo.git", "taken")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "already exists in database")
}

func TestCloneFailureLeavesNoPartialDirectory(t *testing.T) {
	m := setupManager(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Unresolvable host: the clone fails at transport level and the target
	// directory must be rolled back so the alias can be retried.
	result := m.Clone(ctx, "https://host.invalid/user/repo.git", "ghost")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "Git clone failed")

	require.NoDirExists(t, m.LocalPath("ghost"))
	require.False(t, m.RepositoryExists(context.Background(), "ghost"))
}

func TestRepositoryExistsRequiresBothSides(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	require.False(t, m.RepositoryExists(ctx, "nothing"))

	// Directory without a catalog record is not enough.
	upstream := initUpstream(t)
	localPath := m.LocalPath("dir-only")
	_, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: upstream})
	require.NoError(t, err)
	require.False(t, m.RepositoryExists(ctx, "dir-only"))

	// Catalog record without a valid clone is not enough either.
	_, err = m.Store().Add(ctx, "record-only", upstream, m.LocalPath("record-only"))
	require.NoError(t, err)
	require.False(t, m.RepositoryExists(ctx, "record-only"))

	seedClone(t, m, "both", upstream)
	require.True(t, m.RepositoryExists(ctx, "both"))
}

func TestUpdateRefusesDirtyWorktree(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "dirty", upstream)

	// An untracked file counts as dirty; updates must never risk local
	// modifications.
	require.NoError(t, os.WriteFile(filepath.Join(m.LocalPath("dirty"), "scratch.txt"), []byte("wip"), 0o644))

	result := m.Update(ctx, "dirty")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "uncommitted changes")

	record, err := m.Store().Get(ctx, "dirty")
	require.NoError(t, err)
	require.Nil(t, record.LastUpdated)
}

func TestUpdateAlreadyUpToDate(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "fresh", upstream)

	result := m.Update(ctx, "fresh")
	require.True(t, result.OK)
	require.False(t, result.HasChanges)
	require.Contains(t, result.Message, "already up to date")

	record, err := m.Store().Get(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, record.LastUpdated)
}

func TestUpdatePullsNewCommits(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "behind", upstream)

	upstreamRepo, err := git.PlainOpen(upstream)
	require.NoError(t, err)
	commitFile(t, upstreamRepo, upstream, "feature.go", "package feature\n", "add feature")

	result := m.Update(ctx, "behind")
	require.True(t, result.OK)
	require.True(t, result.HasChanges)
	require.Contains(t, result.Message, "pulled new changes")

	require.FileExists(t, filepath.Join(m.LocalPath("behind"), "feature.go"))
}

func TestUpdateMissingRepository(t *testing.T) {
	m := setupManager(t)

	result := m.Update(context.Background(), "missing")
	require.False(t, result.OK)
	require.Contains(t, result.Message, "does not exist")
}

func TestCheckRemoteUpdatesIsReadOnly(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "watched", upstream)

	result := m.CheckRemoteUpdates(ctx, "watched")
	require.True(t, result.OK)
	require.False(t, result.HasUpdates)

	upstreamRepo, err := git.PlainOpen(upstream)
	require.NoError(t, err)
	commitFile(t, upstreamRepo, upstream, "new.txt", "new\n", "new commit")

	result = m.CheckRemoteUpdates(ctx, "watched")
	require.True(t, result.OK)
	require.True(t, result.HasUpdates)

	// Never pulls and never touches the catalog.
	require.NoFileExists(t, filepath.Join(m.LocalPath("watched"), "new.txt"))
	record, err := m.Store().Get(ctx, "watched")
	require.NoError(t, err)
	require.Nil(t, record.LastUpdated)
}

func TestStatusSnapshot(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "octo", upstream)

	result := m.Status(ctx, "octo")
	require.True(t, result.OK)

	status := result.Status
	require.True(t, status.Exists)
	require.True(t, status.IsGitRepo)
	require.NotEmpty(t, status.CurrentBranch)
	require.GreaterOrEqual(t, status.TotalCommits, 1)
	require.False(t, status.IsDirty)
	require.True(t, status.HasRemote)
	require.Equal(t, upstream, status.RemoteURL)
	require.Equal(t, upstream, status.CatalogURL)
}

func TestStatusInvalidCloneIsPartial(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	// A directory carrying an empty .git marker passes the existence check
	// but cannot be opened as a repository.
	localPath := m.LocalPath("broken")
	require.NoError(t, os.MkdirAll(filepath.Join(localPath, ".git"), 0o750))
	_, err := m.Store().Add(ctx, "broken", "https://github.com/a/b.git", localPath)
	require.NoError(t, err)

	result := m.Status(ctx, "broken")
	require.False(t, result.OK)
	require.True(t, result.Status.Exists)
	require.False(t, result.Status.IsGitRepo)
	require.NotEmpty(t, result.Status.Error)
}

func TestRemoveDeletesRecordAndFiles(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "doomed", upstream)

	result := m.Remove(ctx, "doomed", false)
	require.True(t, result.OK)

	require.False(t, m.RepositoryExists(ctx, "doomed"))
	require.NoDirExists(t, m.LocalPath("doomed"))
}

func TestRemoveKeepFilesPreservesClone(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "kept", upstream)

	result := m.Remove(ctx, "kept", true)
	require.True(t, result.OK)

	require.False(t, m.RepositoryExists(ctx, "kept"))
	require.DirExists(t, m.LocalPath("kept"))
}

func TestRemoveMissingRepository(t *testing.T) {
	m := setupManager(t)

	result := m.Remove(context.Background(), "missing", false)
	require.False(t, result.OK)
	require.Contains(t, result.Message, "not found in database")
}

func TestCleanupOrphanedFiles(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "kept", upstream)

	strayDir := filepath.Join(m.ReposDir(), "stray")
	require.NoError(t, os.MkdirAll(strayDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(strayDir, "junk.bin"), make([]byte, 2048), 0o644))

	report := m.CleanupOrphanedFiles(ctx)
	require.True(t, report.OK)
	require.Equal(t, []string{"stray"}, report.OrphanedDirs)
	require.Equal(t, []string{"stray"}, report.RemovedDirs)
	require.Empty(t, report.Failed)
	require.Greater(t, report.SpaceFreedMB, 0.0)

	require.NoDirExists(t, strayDir)
	require.DirExists(t, m.LocalPath("kept"))
}

func TestCleanupWithNoOrphans(t *testing.T) {
	m := setupManager(t)

	report := m.CleanupOrphanedFiles(context.Background())
	require.True(t, report.OK)
	require.Empty(t, report.OrphanedDirs)
	require.Equal(t, "No orphaned directories found", report.Message)
}

func TestSyncDatabaseWithFilesystem(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)

	// Healthy repository at the canonical location.
	seedClone(t, m, "healthy", upstream)

	// Record whose clone is gone.
	_, err := m.Store().Add(ctx, "gone", upstream, m.LocalPath("gone"))
	require.NoError(t, err)

	// Record whose path exists but is not a repository.
	invalidPath := m.LocalPath("hollow")
	require.NoError(t, os.MkdirAll(invalidPath, 0o750))
	_, err = m.Store().Add(ctx, "hollow", upstream, invalidPath)
	require.NoError(t, err)

	// Record whose clone lives at a stale, non-canonical path.
	stalePath := filepath.Join(t.TempDir(), "relocated")
	_, err = git.PlainClone(stalePath, false, &git.CloneOptions{URL: upstream})
	require.NoError(t, err)
	staleRecord, err := m.Store().Add(ctx, "drifted", upstream, stalePath)
	require.NoError(t, err)
	require.NotNil(t, staleRecord)

	report := m.SyncDatabaseWithFilesystem(ctx)
	require.True(t, report.OK)
	require.Equal(t, []string{"gone"}, report.MissingRepos)
	require.Equal(t, []string{"hollow"}, report.InvalidRepos)
	require.Equal(t, []string{"drifted"}, report.UpdatedRepos)
	require.ElementsMatch(t, []string{"gone", "hollow"}, report.RemovedRecords)

	drifted, err := m.Store().Get(ctx, "drifted")
	require.NoError(t, err)
	require.Equal(t, m.LocalPath("drifted"), drifted.LocalPath)

	// Second run with no intervening drift must be an empty delta.
	second := m.SyncDatabaseWithFilesystem(ctx)
	require.True(t, second.OK)
	require.Empty(t, second.MissingRepos)
	require.Empty(t, second.InvalidRepos)
	require.Empty(t, second.UpdatedRepos)
	require.Equal(t, "Database is already synchronized with filesystem", second.Message)
}

func TestDiskUsage(t *testing.T) {
	m := setupManager(t)
	ctx := context.Background()

	upstream := initUpstream(t)
	seedClone(t, m, "alpha", upstream)
	seedClone(t, m, "beta", upstream)

	// Record pointing nowhere contributes zero instead of aborting.
	_, err := m.Store().Add(ctx, "phantom", upstream, m.LocalPath("phantom"))
	require.NoError(t, err)

	report := m.DiskUsage(ctx)
	require.True(t, report.OK)
	require.Equal(t, 3, report.TotalRepos)
	require.Greater(t, report.TotalSizeMB, 0.0)
	require.Contains(t, report.RepoSizes, "alpha")
	require.Contains(t, report.RepoSizes, "beta")
	require.NotContains(t, report.RepoSizes, "phantom")

	require.LessOrEqual(t, len(report.Largest), 5)
	for i := 1; i < len(report.Largest); i++ {
		require.GreaterOrEqual(t, report.Largest[i-1].SizeMB, report.Largest[i].SizeMB)
	}
}
