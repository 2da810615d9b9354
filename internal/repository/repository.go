// Package repository is the store boundary of the API.
//
// UserRepository is implemented by an in-memory store (the default, seeded
// with demo users), a Postgres store, a SQLite store, and a Redis
// read-through cache that wraps any of them.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/users-api/internal/model/user"
)

var (
	// ErrUserNotFound is returned when no user has the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when another user already owns the email.
	ErrEmailTaken = errors.New("email already taken")
)

// UserRepository persists users.
//
// List returns users oldest first, ties in a stable store-specific order
// (insertion order in memory, id in SQL). Insert must be
// atomic: two concurrent inserts never share an id or an email. Update
// applies the patch to the stored user and returns the result.
type UserRepository interface {
	Count(ctx context.Context, filter user.Filter) (int, error)
	List(ctx context.Context, filter user.Filter, offset, limit int) ([]user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Insert(ctx context.Context, u user.User) (*user.User, error)
	Update(ctx context.Context, id string, patch user.Patch) (*user.User, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
