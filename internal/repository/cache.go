package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const userCachePrefix = "users:"

// CachedUserRepository is a read-through Redis cache in front of another
// store. Only GetByID is cached; writes invalidate the entry. Redis errors
// are logged and the call falls through to the wrapped store.
//
// Every write bumps a per-user version key before evicting. A miss fills
// the cache inside a WATCH on that key, so a fill that read the store
// before a concurrent write is discarded instead of resurrecting the old
// row.
type CachedUserRepository struct {
	UserRepository

	rdb    *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewCachedUserRepository(inner UserRepository, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		UserRepository: inner,
		rdb:            rdb,
		ttl:            ttl,
		logger:         logger,
	}
}

// cachedUser mirrors user.User including the fields hidden from the API.
type cachedUser struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Status       user.Status `json:"status"`
	PasswordHash string      `json:"password_hash"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func userCacheKey(id string) string {
	return userCachePrefix + id
}

func userVersionKey(id string) string {
	return userCachePrefix + id + ":version"
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	raw, err := r.rdb.Get(ctx, userCacheKey(id)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if err := json.Unmarshal(raw, &cu); err == nil {
			u := user.User(cu)
			return &u, nil
		}
		r.logger.Warn().Err(err).Str("user_id", id).Msg("discarding undecodable cached user")
	case !errors.Is(err, redis.Nil):
		r.logger.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
	}

	return r.fill(ctx, id)
}

// fill reads id from the wrapped store and caches it unless a write to the
// same user landed in between.
func (r *CachedUserRepository) fill(ctx context.Context, id string) (*user.User, error) {
	var (
		u       *user.User
		readErr error
		read    bool
	)

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		u, readErr = r.UserRepository.GetByID(ctx, id)
		read = true
		if readErr != nil {
			return nil
		}

		raw, err := json.Marshal(cachedUser(*u))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userCacheKey(id), raw, r.ttl)
			return nil
		})
		return err
	}, userVersionKey(id))

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		r.logger.Debug().Str("user_id", id).Msg("user changed while filling cache, not caching")
	default:
		r.logger.Warn().Err(err).Str("user_id", id).Msg("user cache write failed")
	}

	if !read {
		return r.UserRepository.GetByID(ctx, id)
	}
	return u, readErr
}

func (r *CachedUserRepository) Update(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	u, err := r.UserRepository.Update(ctx, id, patch)
	r.invalidate(ctx, id)
	return u, err
}

func (r *CachedUserRepository) Delete(ctx context.Context, id string) error {
	err := r.UserRepository.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

// Ping reports the health of the wrapped store. Redis health is checked
// separately so a cache outage does not mark the store down.
func (r *CachedUserRepository) Ping(ctx context.Context) error {
	if p, ok := r.UserRepository.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// invalidate runs after every write, successful or not. The version bump
// aborts in-flight fills; the delete drops the cached row.
func (r *CachedUserRepository) invalidate(ctx context.Context, id string) {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, userVersionKey(id))
		pipe.Expire(ctx, userVersionKey(id), r.versionTTL())
		pipe.Del(ctx, userCacheKey(id))
		return nil
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
	}
}

// versionTTL outlives any fill that started before the write.
func (r *CachedUserRepository) versionTTL() time.Duration {
	return max(2*r.ttl, time.Minute)
}

var (
	_ UserRepository = (*CachedUserRepository)(nil)
	_ Pinger         = (*CachedUserRepository)(nil)
)
