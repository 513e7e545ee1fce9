package db

import (
	"context"
	"database/sql"
)

// MigrateUp creates the record table. The statements are valid for both
// postgres and sqlite.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS news_records (
    collection  TEXT NOT NULL,
    record_key  TEXT NOT NULL,
    content     TEXT NOT NULL,
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, record_key)
)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_news_records_updated_at ON news_records(collection, updated_at)`); err != nil {
		return err
	}

	return nil
}
