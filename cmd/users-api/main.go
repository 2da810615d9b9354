package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/database"
	"github.com/deppfellow/users-api/internal/handler"
	"github.com/deppfellow/users-api/internal/logger"
	"github.com/deppfellow/users-api/internal/repository"
	"github.com/deppfellow/users-api/internal/router"
	"github.com/deppfellow/users-api/internal/server"
	"github.com/deppfellow/users-api/internal/service"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const DefaultContextTimeout = 30

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the users API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(runServe)
		},
	}

	var target int32
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(cfg *config.Config, log *zerolog.Logger, _ *logger.LoggerService) error {
				return withMigrator(cfg, log, func(ctx context.Context, m *database.Migrator) error {
					return m.Up(ctx, target)
				})
			})
		},
	}
	migrate.Flags().Int32Var(&target, "to", 0, "schema version to migrate to, 0 for latest")

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current and latest schema versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(cfg *config.Config, log *zerolog.Logger, _ *logger.LoggerService) error {
				return withMigrator(cfg, log, func(ctx context.Context, m *database.Migrator) error {
					st, err := m.Status(ctx)
					if err != nil {
						return err
					}
					log.Info().
						Int32("current", st.Current).
						Int32("latest", st.Latest).
						Int32("pending", st.Pending()).
						Msg("users schema status")
					return nil
				})
			})
		},
	})

	root := &cobra.Command{
		Use:           "users-api",
		Short:         "Users REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, migrate)
	return root
}

// withApp loads the configuration and loggers, runs fn and flushes New
// Relic afterwards. Errors are logged here so main only sets the exit code.
func withApp(fn func(cfg *config.Config, log *zerolog.Logger, ls *logger.LoggerService) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Error().Err(err).Msg("failed to load config")
		return err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		bootLog := logger.NewLogger(cfg.Observability)
		bootLog.Error().Err(err).Msg("failed to start New Relic, continuing without it")
	}
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if err := fn(cfg, &log, loggerService); err != nil {
		log.Error().Err(err).Msg("exiting")
		return err
	}
	return nil
}

func withMigrator(cfg *config.Config, log *zerolog.Logger, fn func(context.Context, *database.Migrator) error) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return errors.New("migrations only apply to the postgres driver")
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	m, err := database.NewMigrator(ctx, log, &cfg.Database)
	if err != nil {
		return err
	}
	defer m.Close(ctx)

	return fn(ctx, m)
}

func runServe(cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) error {
	if cfg.Database.Driver == config.DriverPostgres && cfg.Primary.Env != "local" {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
		err := database.Migrate(ctx, log, cfg)
		cancel()
		if err != nil {
			return err
		}
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		return err
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return err
	}
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)

	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = srv.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
