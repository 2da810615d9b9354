package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deppfellow/users-api/internal/config"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT     NOT NULL UNIQUE,
    name          TEXT     NOT NULL CHECK (length(name) BETWEEN 1 AND 100),
    status        TEXT     NOT NULL DEFAULT 'active'
                           CHECK (status IN ('active', 'inactive', 'suspended')),
    password_hash TEXT     NOT NULL,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS users_created_at_id_idx ON users (created_at, id);
`

// OpenSQLite opens the SQLite database at path and creates the schema.
//
// ":memory:" databases live per connection, so the pool is pinned to a
// single connection to keep every query on the same database.
func OpenSQLite(ctx context.Context, path string, logger *zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}

	logger.Info().Str("path", path).Msg("opened sqlite database")
	return db, nil
}

// NewSQLite opens the SQLite database named in the config.
func NewSQLite(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*sql.DB, error) {
	return OpenSQLite(ctx, cfg.Database.Path, logger)
}
