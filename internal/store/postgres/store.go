// Package postgres implements the SignalStore on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store implements store.Store. Every call carries its own timeout; no
// lock or transaction is held across engine computation.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects and pings.
func Open(dsn string, timeout time.Duration) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return New(db, timeout), nil
}

// New wraps an existing connection, used by tests with sqlmock.
func New(db *sqlx.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// Ping reports store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
