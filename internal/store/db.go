// Package store is the read-only relational boundary: a pgx connection pool
// over the pension_data / users / advisor_clients tables, adapted from the
// teacher's pkg/core/store/db.go pool-initialization pattern. The readers in
// this package never write; the /signup handler in cmd/api inserts users
// through the same pool directly.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
)

// InitDB opens the pool using the PENSION_DB_URL environment variable. Safe
// to call more than once; only the first call dials.
func InitDB(ctx context.Context) error {
	var err error
	poolOnce.Do(func() {
		dbURL := os.Getenv("PENSION_DB_URL")
		if dbURL == "" {
			err = fmt.Errorf("PENSION_DB_URL environment variable not set")
			return
		}

		cfg, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, cfg)
	})
	return err
}

// GetPool returns the shared connection pool. Nil until InitDB succeeds.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool. Safe to call on a pool that was never opened.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
