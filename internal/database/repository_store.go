package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqldb "github.com/kodeklip/kodeklip/internal/database/sqlc"
)

// RepositoryStore provides transactional access to repository records and
// their index entries.
type RepositoryStore struct {
	ctx *Context
}

func NewRepositoryStore(dbCtx *Context) *RepositoryStore {
	return &RepositoryStore{ctx: dbCtx}
}

// Add inserts a new repository record. Returns ErrAlreadyExists when the
// alias is taken.
func (s *RepositoryStore) Add(ctx context.Context, alias, url, localPath string) (*RepositoryRecord, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return nil, fmt.Errorf("repository store: missing database context")
	}

	result, err := queries.InsertRepository(ctx, sqldb.InsertRepositoryParams{
		Alias:     alias,
		URL:       url,
		LocalPath: localPath,
		Indexed:   0,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("repository %q: %w", alias, ErrAlreadyExists)
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &RepositoryRecord{
		ID:        id,
		Alias:     alias,
		URL:       url,
		LocalPath: localPath,
	}, nil
}

// Get returns the record for alias, or ErrNotFound.
func (s *RepositoryStore) Get(ctx context.Context, alias string) (*RepositoryRecord, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return nil, fmt.Errorf("repository store: missing database context")
	}

	row, err := queries.FindRepositoryByAlias(ctx, alias)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("repository %q: %w", alias, ErrNotFound)
		}
		return nil, err
	}

	record := mapRepositoryRow(row)
	return &record, nil
}

// Exists reports whether a catalog record for alias is present.
func (s *RepositoryStore) Exists(ctx context.Context, alias string) (bool, error) {
	_, err := s.Get(ctx, alias)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns all repository records ordered by alias ascending.
func (s *RepositoryStore) List(ctx context.Context) ([]RepositoryRecord, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return nil, fmt.Errorf("repository store: missing database context")
	}

	rows, err := queries.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]RepositoryRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapRepositoryRow(row))
	}
	return result, nil
}

// Count returns the number of repository records.
func (s *RepositoryStore) Count(ctx context.Context) (int64, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return 0, fmt.Errorf("repository store: missing database context")
	}
	return queries.CountRepositories(ctx)
}

// UpdateStatus updates only the supplied fields of a record. Returns
// ErrNotFound when the alias is absent.
func (s *RepositoryStore) UpdateStatus(ctx context.Context, alias string, lastUpdated *time.Time, indexed *bool) error {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return fmt.Errorf("repository store: missing database context")
	}

	if lastUpdated == nil && indexed == nil {
		_, err := s.Get(ctx, alias)
		return err
	}

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	queries = queries.WithTx(tx)

	apply := func() error {
		if lastUpdated != nil {
			affected, err := queries.UpdateRepositoryLastUpdated(ctx, sqldb.UpdateRepositoryLastUpdatedParams{
				LastUpdated: nullTime(lastUpdated),
				Alias:       alias,
			})
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("repository %q: %w", alias, ErrNotFound)
			}
		}

		if indexed != nil {
			affected, err := queries.UpdateRepositoryIndexed(ctx, sqldb.UpdateRepositoryIndexedParams{
				Indexed: boolToInt64(*indexed),
				Alias:   alias,
			})
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("repository %q: %w", alias, ErrNotFound)
			}
		}
		return nil
	}

	if err := apply(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback error: %w)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// UpdateLocalPath rewrites the stored local path for a record.
func (s *RepositoryStore) UpdateLocalPath(ctx context.Context, id int64, localPath string) error {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return fmt.Errorf("repository store: missing database context")
	}
	return queries.UpdateRepositoryLocalPath(ctx, sqldb.UpdateRepositoryLocalPathParams{
		LocalPath: localPath,
		ID:        id,
	})
}

// Remove deletes a record and cascades the delete to its index entries in a
// single transaction. Returns whether a record existed; absence is not an
// error so the operation is idempotent.
func (s *RepositoryStore) Remove(ctx context.Context, alias string) (bool, error) {
	if s.ctx == nil || s.ctx.DB == nil {
		return false, fmt.Errorf("repository store: missing database context")
	}

	record, err := s.Get(ctx, alias)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := queriesFromContext(s.ctx).WithTx(tx)

	if _, err := queries.DeleteIndexEntriesByRepo(ctx, record.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return false, fmt.Errorf("failed to delete index entries: %w (rollback error: %w)", err, rbErr)
		}
		return false, fmt.Errorf("failed to delete index entries: %w", err)
	}

	if _, err := queries.DeleteRepositoryByID(ctx, record.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return false, fmt.Errorf("failed to delete repository: %w (rollback error: %w)", err, rbErr)
		}
		return false, fmt.Errorf("failed to delete repository: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit remove transaction: %w", err)
	}

	return true, nil
}

// AddIndexEntry inserts an index entry for a repository.
func (s *RepositoryStore) AddIndexEntry(ctx context.Context, repoID int64, filePath, contentHash string, embeddingData *string) (*IndexEntryRecord, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return nil, fmt.Errorf("repository store: missing database context")
	}

	result, err := queries.InsertIndexEntry(ctx, sqldb.InsertIndexEntryParams{
		RepoID:        repoID,
		FilePath:      filePath,
		ContentHash:   contentHash,
		EmbeddingData: nullString(embeddingData),
	})
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &IndexEntryRecord{
		ID:            id,
		RepoID:        repoID,
		FilePath:      filePath,
		ContentHash:   contentHash,
		EmbeddingData: embeddingData,
	}, nil
}

// ListIndexEntries returns a repository's index entries ordered by file path.
func (s *RepositoryStore) ListIndexEntries(ctx context.Context, repoID int64) ([]IndexEntryRecord, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return nil, fmt.Errorf("repository store: missing database context")
	}

	rows, err := queries.ListIndexEntriesByRepo(ctx, repoID)
	if err != nil {
		return nil, err
	}

	result := make([]IndexEntryRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapIndexEntryRow(row))
	}
	return result, nil
}

// CountIndexEntries returns how many index entries a repository has.
func (s *RepositoryStore) CountIndexEntries(ctx context.Context, repoID int64) (int64, error) {
	queries := queriesFromContext(s.ctx)
	if queries == nil {
		return 0, fmt.Errorf("repository store: missing database context")
	}
	return queries.CountIndexEntriesByRepo(ctx, repoID)
}

// ReconcileActions describes the catalog mutations computed by a filesystem
// scan: records to delete and stored paths to rewrite.
type ReconcileActions struct {
	RemoveIDs   []int64
	PathUpdates map[int64]string
}

// ApplyReconciliation applies all reconciliation actions within a single
// transaction, cascading index-entry deletes for removed records.
func (s *RepositoryStore) ApplyReconciliation(ctx context.Context, actions ReconcileActions) error {
	if s.ctx == nil || s.ctx.DB == nil {
		return fmt.Errorf("repository store: missing database context")
	}
	if len(actions.RemoveIDs) == 0 && len(actions.PathUpdates) == 0 {
		return nil
	}

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := queriesFromContext(s.ctx).WithTx(tx)

	apply := func() error {
		for _, id := range actions.RemoveIDs {
			if _, err := queries.DeleteIndexEntriesByRepo(ctx, id); err != nil {
				return fmt.Errorf("failed to delete index entries: %w", err)
			}
			if _, err := queries.DeleteRepositoryByID(ctx, id); err != nil {
				return fmt.Errorf("failed to delete repository: %w", err)
			}
		}
		for id, path := range actions.PathUpdates {
			if err := queries.UpdateRepositoryLocalPath(ctx, sqldb.UpdateRepositoryLocalPathParams{
				LocalPath: path,
				ID:        id,
			}); err != nil {
				return fmt.Errorf("failed to update repository path: %w", err)
			}
		}
		return nil
	}

	if err := apply(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback error: %w)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}
