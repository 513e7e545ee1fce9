package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// StoreConfig is the preset for a SQL collection store: it opens only when
// every one of at least five calls failed, since one bad statement says
// nothing about the database.
func StoreConfig(store string) Config {
	return Config{
		Name:             "store-" + store,
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// SQL routes statements through a breaker so an unreachable database fails
// each save at once instead of waiting out the driver timeout.
type SQL struct {
	cb *CircuitBreaker
	db *sql.DB
}

// NewSQL wraps db with a breaker built from cfg.
func NewSQL(db *sql.DB, cfg Config) *SQL {
	return &SQL{cb: New(cfg), db: db}
}

func (s *SQL) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return Call(s.cb, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, query, args...)
	})
}

func (s *SQL) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Call(s.cb, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

func (s *SQL) State() gobreaker.State { return s.cb.State() }

func (s *SQL) IsOpen() bool { return s.cb.IsOpen() }

// DB returns the unguarded handle.
func (s *SQL) DB() *sql.DB { return s.db }
