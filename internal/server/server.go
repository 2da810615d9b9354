// Package server holds the application container: configuration, loggers,
// the optional Postgres pool, SQLite handle, Redis client and job service,
// and the HTTP server lifecycle.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/database"
	"github.com/deppfellow/users-api/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/users-api/internal/logger"
)

// Server is the application container. Connections that the configuration
// does not ask for stay nil.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService

	// DB is set when database.driver is postgres.
	DB *database.Database

	// SQLite is set when database.driver is sqlite.
	SQLite *sql.DB

	// Redis is set when redis.address is configured.
	Redis *redis.Client

	// Job is set when jobs are enabled and Redis is configured.
	Job *job.JobService

	httpServer *http.Server
}

// New opens the connections the configuration asks for.
//
// A Redis that does not answer at startup is logged and kept: the cache
// degrades to the store and health reports it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.DB = db
	case config.DriverSQLite:
		db, err := database.NewSQLite(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		s.SQLite = db
	}

	if cfg.Redis.Address != "" {
		s.Redis = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Address,
		})

		if loggerService != nil && loggerService.GetApplication() != nil {
			s.Redis.AddHook(nrredis.NewHook(s.Redis.Options()))
		}

		if err := s.Redis.Ping(ctx).Err(); err != nil {
			logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without it")
		}
	}

	if cfg.JobsEnabled() {
		jobService := job.NewJobService(logger, cfg)
		if err := jobService.Start(); err != nil {
			s.closeStores()
			return nil, fmt.Errorf("failed to start job server: %w", err)
		}
		s.Job = jobService
	}

	return s, nil
}

func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start serves HTTP until Shutdown. It returns http.ErrServerClosed after a
// graceful shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("store", s.Config.Database.Driver).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then stops jobs and closes every
// connection. It keeps going after a failure and returns all errors joined.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if err := s.closeStores(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *Server) closeStores() error {
	var errs []error

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}
	if s.SQLite != nil {
		if err := s.SQLite.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close sqlite: %w", err))
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
