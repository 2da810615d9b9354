// Package database opens the SQL connections behind the user store.
//
// Postgres goes through a pgx pool with query tracing (New Relic when the
// agent runs, zerolog in the local environment, Prometheus always); its
// schema is managed by tern migrations embedded in the binary. SQLite goes
// through database/sql and creates its schema on open.
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/lib/metrics"
	loggerConfig "github.com/deppfellow/users-api/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// DatabasePingTimeout bounds the startup ping, in seconds.
const DatabasePingTimeout = 10

type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// tracerChain fans query callbacks out to every tracer in order, since
// ConnConfig has a single Tracer slot.
type tracerChain []pgx.QueryTracer

func (tc tracerChain) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range tc {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (tc tracerChain) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range tc {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

type queryStartKey struct{}

// queryMetrics feeds query latency into the users_api_db_query_duration
// histogram.
type queryMetrics struct{}

func (queryMetrics) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (queryMetrics) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	metrics.ObserveDBQuery(time.Since(start), data.Err)
}

// PostgresDSN builds the connection URL from config. Credentials are
// escaped so they cannot break the URL.
func PostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		cfg.Name,
		cfg.SSLMode,
	)
}

func queryTracer(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) pgx.QueryTracer {
	chain := tracerChain{queryMetrics{}}

	if loggerService.GetApplication() != nil {
		chain = append(chain, nrpgx5.NewTracer())
	}

	// Query logging is far too noisy outside a developer machine.
	if cfg.Primary.Env == "local" {
		level := logger.GetLevel()
		chain = append(chain, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(level)),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(level)),
		})
	}

	if len(chain) == 1 {
		return chain[0]
	}
	return chain
}

// New creates the Postgres pool and pings the server.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	poolCfg, err := pgxpool.ParseConfig(PostgresDSN(&cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("parsing pgx pool config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	poolCfg.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second
	poolCfg.ConnConfig.Tracer = queryTracer(cfg, logger, loggerService)

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres at %s: %w", net.JoinHostPort(cfg.Database.Host, strconv.Itoa(cfg.Database.Port)), err)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Name).
		Msg("connected to postgres")

	return &Database{Pool: pool, log: logger}, nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close never fails; the error return satisfies io.Closer.
func (db *Database) Close() error {
	db.log.Info().Msg("closing postgres pool")
	db.Pool.Close()
	return nil
}
