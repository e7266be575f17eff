// Package store opens the device-local SQLite database and vends the client
// repositories backed by it.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/migrations"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/blobs"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/kv"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

// Store bundles the local repositories with their backing database handle.
type Store struct {
	Blobs blobs.Repository
	KV    kv.Repository

	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite store at dsn, applies
// migrations, and returns the repositories.
func InitDatabase(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return &Store{
		Blobs: blobs.NewSQLiteRepository(db, logger),
		KV:    kv.NewSQLiteRepository(db),
		db:    db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
