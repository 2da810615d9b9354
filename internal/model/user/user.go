// Package user defines the User resource, its request payloads and the
// filter/patch values handed to the store.
package user

import (
	"strings"
	"time"
)

// User is the resource returned by every /api/users endpoint.
//
// PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Status       Status    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filter narrows a listing. The zero value matches every user.
type Filter struct {
	// Status, when set, keeps only users in that status.
	Status *Status

	// Search keeps users whose name or email contains it, ignoring case.
	Search string
}

// Matches reports whether u passes the filter. SQL stores express the same
// predicate in their WHERE clause.
func (f Filter) Matches(u User) bool {
	if f.Status != nil && u.Status != *f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			return false
		}
	}
	return true
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Email  *string
	Name   *string
	Status *Status

	// UpdatedAt is the time of the update. It only moves the stored
	// timestamp forward.
	UpdatedAt time.Time
}

// Apply returns u with the patch merged in.
func (u User) Apply(p Patch) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Status != nil {
		switch *p.Status {
		case StatusActive, StatusInactive, StatusSuspended:
			u.Status = *p.Status
		}
	}
	if p.UpdatedAt.After(u.UpdatedAt) {
		u.UpdatedAt = p.UpdatedAt
	}
	return u
}
