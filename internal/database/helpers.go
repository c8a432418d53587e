package database

import (
	"database/sql"
	"time"

	sqldb "github.com/kodeklip/kodeklip/internal/database/sqlc"
)

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullString(value *string) sql.NullString {
	if value == nil || *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func optionalTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}

func boolToInt64(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func queriesFromContext(ctx *Context) *sqldb.Queries {
	if ctx == nil {
		return nil
	}
	if ctx.Queries != nil {
		return ctx.Queries
	}
	if ctx.DB == nil {
		return nil
	}
	return sqldb.New(ctx.DB)
}

func mapRepositoryRow(row sqldb.Repository) RepositoryRecord {
	return RepositoryRecord{
		ID:          row.ID,
		Alias:       row.Alias,
		URL:         row.URL,
		LocalPath:   row.LocalPath,
		LastUpdated: timePtr(row.LastUpdated),
		Indexed:     row.Indexed != 0,
	}
}

func mapIndexEntryRow(row sqldb.IndexEntry) IndexEntryRecord {
	return IndexEntryRecord{
		ID:            row.ID,
		RepoID:        row.RepoID,
		FilePath:      row.FilePath,
		ContentHash:   row.ContentHash,
		EmbeddingData: stringPtr(row.EmbeddingData),
		CreatedAt:     optionalTime(row.CreatedAt),
	}
}
