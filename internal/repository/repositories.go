package repository

import (
	"fmt"

	"github.com/deppfellow/users-api/internal/config"
	"github.com/deppfellow/users-api/internal/server"
)

// Repositories holds every store the services depend on.
type Repositories struct {
	User UserRepository
}

// NewRepositories picks the user store named by the database driver and,
// when Redis is configured for caching, wraps it in the read-through cache.
func NewRepositories(s *server.Server) (*Repositories, error) {
	var users UserRepository

	switch s.Config.Database.Driver {
	case config.DriverPostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("postgres driver selected but no pool is open")
		}
		users = NewPostgresUserRepository(s.DB.Pool)
	case config.DriverSQLite:
		if s.SQLite == nil {
			return nil, fmt.Errorf("sqlite driver selected but no database is open")
		}
		users = NewSQLiteUserRepository(s.SQLite)
	case config.DriverMemory, "":
		users = NewSeededMemoryUserRepository(s.Config.Database.SeedUsers)
	default:
		return nil, fmt.Errorf("unknown database driver %q", s.Config.Database.Driver)
	}

	if s.Config.CacheEnabled() && s.Redis != nil {
		users = NewCachedUserRepository(users, s.Redis, s.Config.Redis.CacheTTL, s.Logger)
	}

	return &Repositories{User: users}, nil
}
