package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/deppfellow/users-api/internal/model/user"
)

// SeedTime is the creation time of every seeded user.
var SeedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MemoryUserRepository keeps users in insertion order behind a RWMutex.
// Seeded and created users share the same creation-time ordering because
// creation times only grow.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   []user.User
	byID    map[string]int
	byEmail map[string]string
}

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]int),
		byEmail: make(map[string]string),
	}
}

// SeedUsers returns n demo users: ids "0".."n-1", emails user{i}@example.com.
func SeedUsers(n int) []user.User {
	users := make([]user.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, user.User{
			ID:        strconv.Itoa(i),
			Email:     fmt.Sprintf("user%d@example.com", i),
			Name:      fmt.Sprintf("User %d", i),
			Status:    user.StatusActive,
			CreatedAt: SeedTime,
			UpdatedAt: SeedTime,
		})
	}
	return users
}

// NewSeededMemoryUserRepository returns a store holding SeedUsers(n).
func NewSeededMemoryUserRepository(n int) *MemoryUserRepository {
	r := NewMemoryUserRepository()
	for _, u := range SeedUsers(n) {
		r.insertLocked(u)
	}
	return r
}

func (r *MemoryUserRepository) insertLocked(u user.User) {
	r.byID[u.ID] = len(r.users)
	r.byEmail[u.Email] = u.ID
	r.users = append(r.users, u)
}

func (r *MemoryUserRepository) Count(ctx context.Context, filter user.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, u := range r.users {
		if filter.Matches(u) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryUserRepository) List(ctx context.Context, filter user.Filter, offset, limit int) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, limit)
	skipped := 0
	for _, u := range r.users {
		if len(out) == limit {
			break
		}
		if !filter.Matches(u) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := r.users[i]
	return &u, nil
}

func (r *MemoryUserRepository) Insert(ctx context.Context, u user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; ok {
		return nil, fmt.Errorf("insert user %s: duplicate id", u.ID)
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, ErrEmailTaken
	}

	r.insertLocked(u)
	return &u, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	current := r.users[i]
	if patch.Email != nil && *patch.Email != current.Email {
		if owner, taken := r.byEmail[*patch.Email]; taken && owner != id {
			return nil, ErrEmailTaken
		}
	}

	updated := current.Apply(patch)
	if updated.Email != current.Email {
		delete(r.byEmail, current.Email)
		r.byEmail[updated.Email] = id
	}
	r.users[i] = updated
	return &updated, nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}

	delete(r.byEmail, r.users[i].Email)
	delete(r.byID, id)
	r.users = append(r.users[:i], r.users[i+1:]...)
	for j := i; j < len(r.users); j++ {
		r.byID[r.users[j].ID] = j
	}
	return nil
}

// Ping always succeeds.
func (r *MemoryUserRepository) Ping(ctx context.Context) error {
	return nil
}

var _ UserRepository = (*MemoryUserRepository)(nil)
