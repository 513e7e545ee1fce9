// Package sqlite provides the SQLite implementation of the record store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feedsift/internal/observability/metrics"
	"feedsift/internal/repository"
	"feedsift/internal/resilience/circuitbreaker"
)

const storeName = "sqlite"

// NewsRepo implements repository.NewsRepository on SQLite.
type NewsRepo struct {
	db *circuitbreaker.SQL
}

// NewNewsRepo creates a sqlite-backed record store. Queries run behind the
// database circuit breaker.
func NewNewsRepo(db *sql.DB) *NewsRepo {
	return &NewsRepo{db: circuitbreaker.NewSQL(db, circuitbreaker.StoreConfig(storeName))}
}

// Exists reports whether a record is stored under key.
func (repo *NewsRepo) Exists(ctx context.Context, collection, key string) (bool, error) {
	defer observe("exists", time.Now())
	const query = `SELECT 1 FROM news_records WHERE collection = ? AND record_key = ?`

	rows, err := repo.db.QueryContext(ctx, query, collection, key)
	if err != nil {
		return false, fmt.Errorf("Exists: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("Exists: rows.Err: %w", err)
	}
	return found, nil
}

// WriteOrReplace stores content under key, replacing any previous content.
func (repo *NewsRepo) WriteOrReplace(ctx context.Context, collection, key, content string) error {
	defer observe("write", time.Now())
	const query = `
INSERT INTO news_records (collection, record_key, content, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (collection, record_key)
DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`

	if _, err := repo.db.ExecContext(ctx, query, collection, key, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", repository.ErrWriteFailed, collection, key, err)
	}
	return nil
}

// Get returns the content stored under key.
func (repo *NewsRepo) Get(ctx context.Context, collection, key string) (string, error) {
	defer observe("get", time.Now())
	const query = `SELECT content FROM news_records WHERE collection = ? AND record_key = ?`

	rows, err := repo.db.QueryContext(ctx, query, collection, key)
	if err != nil {
		return "", fmt.Errorf("Get: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", fmt.Errorf("Get: rows.Err: %w", err)
		}
		return "", fmt.Errorf("%w: %s/%s", repository.ErrNotFound, collection, key)
	}
	var content string
	if err := rows.Scan(&content); err != nil {
		return "", fmt.Errorf("Get: Scan: %w", err)
	}
	return content, nil
}

// List returns the keys of a collection, most recently written first.
func (repo *NewsRepo) List(ctx context.Context, collection string) ([]string, error) {
	defer observe("list", time.Now())
	const query = `
SELECT record_key FROM news_records
WHERE collection = ?
ORDER BY updated_at DESC, record_key`

	rows, err := repo.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]string, 0, 64)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return keys, nil
}

func observe(operation string, start time.Time) {
	metrics.RecordStoreOperation(storeName, operation, time.Since(start))
}
