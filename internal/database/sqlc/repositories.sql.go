package sqldb

import (
	"context"
	"database/sql"
)

// Repository mirrors a row in the repositories table.
type Repository struct {
	ID          int64
	Alias       string
	URL         string
	LocalPath   string
	LastUpdated sql.NullTime
	Indexed     int64
}

const insertRepository = `
INSERT INTO repositories (alias, url, local_path, last_updated, indexed)
VALUES (?, ?, ?, ?, ?)
`

// InsertRepositoryParams holds the values for InsertRepository.
type InsertRepositoryParams struct {
	Alias       string
	URL         string
	LocalPath   string
	LastUpdated sql.NullTime
	Indexed     int64
}

func (q *Queries) InsertRepository(ctx context.Context, arg InsertRepositoryParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertRepository,
		arg.Alias,
		arg.URL,
		arg.LocalPath,
		arg.LastUpdated,
		arg.Indexed,
	)
}

const findRepositoryByAlias = `
SELECT id, alias, url, local_path, last_updated, indexed
FROM repositories
WHERE alias = ?
`

func (q *Queries) FindRepositoryByAlias(ctx context.Context, alias string) (Repository, error) {
	row := q.db.QueryRowContext(ctx, findRepositoryByAlias, alias)
	var r Repository
	err := row.Scan(&r.ID, &r.Alias, &r.URL, &r.LocalPath, &r.LastUpdated, &r.Indexed)
	return r, err
}

const listRepositories = `
SELECT id, alias, url, local_path, last_updated, indexed
FROM repositories
ORDER BY alias ASC
`

func (q *Queries) ListRepositories(ctx context.Context) ([]Repository, error) {
	rows, err := q.db.QueryContext(ctx, listRepositories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.Alias, &r.URL, &r.LocalPath, &r.LastUpdated, &r.Indexed); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRepositories = `
SELECT COUNT(*) FROM repositories
`

func (q *Queries) CountRepositories(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRepositories)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateRepositoryLastUpdated = `
UPDATE repositories SET last_updated = ? WHERE alias = ?
`

// UpdateRepositoryLastUpdatedParams holds the values for UpdateRepositoryLastUpdated.
type UpdateRepositoryLastUpdatedParams struct {
	LastUpdated sql.NullTime
	Alias       string
}

func (q *Queries) UpdateRepositoryLastUpdated(ctx context.Context, arg UpdateRepositoryLastUpdatedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRepositoryLastUpdated, arg.LastUpdated, arg.Alias)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateRepositoryIndexed = `
UPDATE repositories SET indexed = ? WHERE alias = ?
`

// UpdateRepositoryIndexedParams holds the values for UpdateRepositoryIndexed.
type UpdateRepositoryIndexedParams struct {
	Indexed int64
	Alias   string
}

func (q *Queries) UpdateRepositoryIndexed(ctx context.Context, arg UpdateRepositoryIndexedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateRepositoryIndexed, arg.Indexed, arg.Alias)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateRepositoryLocalPath = `
UPDATE repositories SET local_path = ? WHERE id = ?
`

// UpdateRepositoryLocalPathParams holds the values for UpdateRepositoryLocalPath.
type UpdateRepositoryLocalPathParams struct {
	LocalPath string
	ID        int64
}

func (q *Queries) UpdateRepositoryLocalPath(ctx context.Context, arg UpdateRepositoryLocalPathParams) error {
	_, err := q.db.ExecContext(ctx, updateRepositoryLocalPath, arg.LocalPath, arg.ID)
	return err
}

const deleteRepositoryByID = `
DELETE FROM repositories WHERE id = ?
`

func (q *Queries) DeleteRepositoryByID(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRepositoryByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
