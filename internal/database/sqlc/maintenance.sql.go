package sqldb

import "context"

const deleteAllIndexEntries = `DELETE FROM index_entries`

func (q *Queries) DeleteAllIndexEntries(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllIndexEntries)
	return err
}

const deleteAllRepositories = `DELETE FROM repositories`

func (q *Queries) DeleteAllRepositories(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllRepositories)
	return err
}
