package sqldb

import (
	"context"
	"database/sql"
)

// IndexEntry mirrors a row in the index_entries table.
type IndexEntry struct {
	ID            int64
	RepoID        int64
	FilePath      string
	ContentHash   string
	EmbeddingData sql.NullString
	CreatedAt     sql.NullTime
}

const insertIndexEntry = `
INSERT INTO index_entries (repo_id, file_path, content_hash, embedding_data)
VALUES (?, ?, ?, ?)
`

// InsertIndexEntryParams holds the values for InsertIndexEntry.
type InsertIndexEntryParams struct {
	RepoID        int64
	FilePath      string
	ContentHash   string
	EmbeddingData sql.NullString
}

func (q *Queries) InsertIndexEntry(ctx context.Context, arg InsertIndexEntryParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertIndexEntry,
		arg.RepoID,
		arg.FilePath,
		arg.ContentHash,
		arg.EmbeddingData,
	)
}

const listIndexEntriesByRepo = `
SELECT id, repo_id, file_path, content_hash, embedding_data, created_at
FROM index_entries
WHERE repo_id = ?
ORDER BY file_path ASC
`

func (q *Queries) ListIndexEntriesByRepo(ctx context.Context, repoID int64) ([]IndexEntry, error) {
	rows, err := q.db.QueryContext(ctx, listIndexEntriesByRepo, repoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []IndexEntry
	for rows.Next() {
		var e IndexEntry
		if err := rows.Scan(&e.ID, &e.RepoID, &e.FilePath, &e.ContentHash, &e.EmbeddingData, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countIndexEntriesByRepo = `
SELECT COUNT(*) FROM index_entries WHERE repo_id = ?
`

func (q *Queries) CountIndexEntriesByRepo(ctx context.Context, repoID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countIndexEntriesByRepo, repoID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteIndexEntriesByRepo = `
DELETE FROM index_entries WHERE repo_id = ?
`

func (q *Queries) DeleteIndexEntriesByRepo(ctx context.Context, repoID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteIndexEntriesByRepo, repoID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
