package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a new database connection pool. A positive
// statementTimeout caps both statement execution and lock waits on every
// connection, so a claim blocked behind a drawing fails instead of hanging.
func NewConnection(ctx context.Context, databaseURL string, statementTimeout time.Duration) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.ConnConfig.RuntimeParams["timezone"] = "UTC"
	if statementTimeout > 0 {
		millis := strconv.FormatInt(statementTimeout.Milliseconds(), 10)
		config.ConnConfig.RuntimeParams["statement_timeout"] = millis
		config.ConnConfig.RuntimeParams["lock_timeout"] = millis
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
