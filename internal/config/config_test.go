package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Database.SeedUsers != 100 {
		t.Errorf("SeedUsers = %d, want 100", cfg.Database.SeedUsers)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Observability.ServiceName != "users-api" {
		t.Errorf("ServiceName = %q", cfg.Observability.ServiceName)
	}
	if cfg.CacheEnabled() || cfg.JobsEnabled() {
		t.Error("redis-backed features must be off without a redis address")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("USERSAPI_PRIMARY__ENV", "production")
	t.Setenv("USERSAPI_SERVER__PORT", "9090")
	t.Setenv("USERSAPI_SERVER__READ_TIMEOUT", "5")
	t.Setenv("USERSAPI_DATABASE__DRIVER", "sqlite")
	t.Setenv("USERSAPI_DATABASE__PATH", ":memory:")
	t.Setenv("USERSAPI_REDIS__ADDRESS", "localhost:6379")
	t.Setenv("USERSAPI_REDIS__CACHE_TTL", "30s")
	t.Setenv("USERSAPI_JOBS__ENABLED", "true")
	t.Setenv("USERSAPI_OBSERVABILITY__LOGGING__LEVEL", "warn")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "9090" || cfg.Server.ReadTimeout != 5 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != ":memory:" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Redis.CacheTTL != 30*time.Second || !cfg.CacheEnabled() || !cfg.JobsEnabled() {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Observability.Logging.Level != "warn" || cfg.Observability.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Observability.Logging)
	}
	if !cfg.Observability.IsProduction() {
		t.Error("environment must follow primary.env")
	}
}

func TestLoadConfigRejectsPostgresWithoutHost(t *testing.T) {
	t.Setenv("USERSAPI_DATABASE__DRIVER", "postgres")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("USERSAPI_DATABASE__DRIVER", "mongo")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("USERSAPI_SERVER__CORS_ALLOWED_ORIGINS"); got != "server.cors_allowed_origins" {
		t.Fatalf("envKey = %q", got)
	}
}
