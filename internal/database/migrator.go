package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const versionTable = "users_api_schema_version"

// SchemaStatus is the position of the users schema relative to the embedded
// migrations.
type SchemaStatus struct {
	Current int32
	Latest  int32
}

func (s SchemaStatus) Pending() int32 {
	if s.Current >= s.Latest {
		return 0
	}
	return s.Latest - s.Current
}

// Migrator applies the embedded users migrations over a dedicated
// connection. Close must be called when done.
type Migrator struct {
	conn   *pgx.Conn
	tern   *tern.Migrator
	logger *zerolog.Logger
}

func NewMigrator(ctx context.Context, logger *zerolog.Logger, cfg *config.DatabaseConfig) (*Migrator, error) {
	conn, err := pgx.Connect(ctx, PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("connecting for migrations: %w", err)
	}

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("constructing migrator: %w", err)
	}

	sub, err := fs.Sub(migrations, "migrations")
	if err == nil {
		err = m.LoadMigrations(sub)
	}
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("loading users migrations: %w", err)
	}

	return &Migrator{conn: conn, tern: m, logger: logger}, nil
}

func (m *Migrator) Status(ctx context.Context) (SchemaStatus, error) {
	current, err := m.tern.GetCurrentVersion(ctx)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("reading schema version: %w", err)
	}
	return SchemaStatus{Current: current, Latest: int32(len(m.tern.Migrations))}, nil
}

// Up migrates to target, or to the latest migration when target is 0.
// A target below the current version rolls back.
func (m *Migrator) Up(ctx context.Context, target int32) error {
	before, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if target == 0 {
		target = before.Latest
	}
	if target < 0 || target > before.Latest {
		return fmt.Errorf("schema version %d out of range 0..%d", target, before.Latest)
	}

	if target == before.Current {
		m.logger.Info().Int32("version", target).Msg("users schema up to date")
		return nil
	}

	if err := m.tern.MigrateTo(ctx, target); err != nil {
		return fmt.Errorf("migrating users schema to %d: %w", target, err)
	}
	m.logger.Info().
		Int32("from", before.Current).
		Int32("to", target).
		Msg("migrated users schema")
	return nil
}

func (m *Migrator) Close(ctx context.Context) error {
	return m.conn.Close(ctx)
}

// Migrate brings the Postgres schema to the latest embedded migration.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	m, err := NewMigrator(ctx, logger, &cfg.Database)
	if err != nil {
		return err
	}
	defer m.Close(ctx)

	return m.Up(ctx, 0)
}
