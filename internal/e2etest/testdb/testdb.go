// Package testdb connects e2e tests to a disposable Postgres database given by
// TEST_DATABASE_URI.
package testdb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

const envDSN = "TEST_DATABASE_URI"

// ErrNoDatabase means the e2e suite has no database to run against.
var ErrNoDatabase = errors.New(envDSN + " is not set")

type TestDBInstance struct {
	DSN  string
	pool *pgxpool.Pool
}

func NewTestDBInstance() (*TestDBInstance, error) {
	dsn := os.Getenv(envDSN)
	if dsn == "" {
		return nil, ErrNoDatabase
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect test db: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping test db: %w", err)
	}
	return &TestDBInstance{DSN: dsn, pool: pool}, nil
}

// Truncate empties every table the migrations create.
func (db *TestDBInstance) Truncate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, "TRUNCATE settlements, smm_orders, balance RESTART IDENTITY CASCADE")
	return err
}

func (db *TestDBInstance) Down() {
	_ = db.Truncate(context.Background())
	db.pool.Close()
}
