package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/deppfellow/users-api/internal/database"
	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/rs/zerolog"
)

// stores returns a fresh, empty instance of every store that runs without
// external services.
func stores(t *testing.T) map[string]UserRepository {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.OpenSQLite(context.Background(), ":memory:", &logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return map[string]UserRepository{
		"memory": NewMemoryUserRepository(),
		"sqlite": NewSQLiteUserRepository(db),
	}
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newUser(i int, status user.Status) user.User {
	at := base.Add(time.Duration(i) * time.Second)
	return user.User{
		ID:           fmt.Sprintf("id-%02d", i),
		Email:        fmt.Sprintf("person%d@example.com", i),
		Name:         fmt.Sprintf("Person %d", i),
		Status:       status,
		PasswordHash: "hash",
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func fill(t *testing.T, repo UserRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		status := user.StatusActive
		if i%3 == 0 {
			status = user.StatusSuspended
		}
		if _, err := repo.Insert(context.Background(), newUser(i, status)); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}
}

func ids(users []user.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestUserRepositoryInsertAndGet(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := newUser(1, user.StatusInactive)
			if _, err := repo.Insert(ctx, want); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			got, err := repo.GetByID(ctx, want.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.Email != want.Email || got.Name != want.Name || got.Status != want.Status {
				t.Errorf("got %+v, want %+v", got, want)
			}
			if got.PasswordHash != "hash" {
				t.Errorf("PasswordHash = %q", got.PasswordHash)
			}
			if !got.CreatedAt.Equal(want.CreatedAt) || got.CreatedAt.Location() != time.UTC {
				t.Errorf("CreatedAt = %v, want %v in UTC", got.CreatedAt, want.CreatedAt)
			}

			if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("GetByID(missing) err = %v, want ErrUserNotFound", err)
			}
		})
	}
}

func TestUserRepositoryInsertDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first := newUser(1, user.StatusActive)
			if _, err := repo.Insert(ctx, first); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			dup := newUser(2, user.StatusActive)
			dup.Email = first.Email
			if _, err := repo.Insert(ctx, dup); !errors.Is(err, ErrEmailTaken) {
				t.Fatalf("Insert duplicate err = %v, want ErrEmailTaken", err)
			}

			n, err := repo.Count(ctx, user.Filter{})
			if err != nil || n != 1 {
				t.Errorf("Count = %d, %v; want 1", n, err)
			}
		})
	}
}

func TestUserRepositoryListPaging(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			fill(t, repo, 12)

			page, err := repo.List(ctx, user.Filter{}, 5, 5)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"id-05", "id-06", "id-07", "id-08", "id-09"}
			if fmt.Sprint(ids(page)) != fmt.Sprint(want) {
				t.Errorf("ids = %v, want %v", ids(page), want)
			}

			tail, err := repo.List(ctx, user.Filter{}, 10, 5)
			if err != nil {
				t.Fatalf("List tail: %v", err)
			}
			if len(tail) != 2 {
				t.Errorf("len(tail) = %d, want 2", len(tail))
			}

			past, err := repo.List(ctx, user.Filter{}, 50, 5)
			if err != nil {
				t.Fatalf("List past end: %v", err)
			}
			if past == nil || len(past) != 0 {
				t.Errorf("past end = %#v, want empty non-nil slice", past)
			}
		})
	}
}

func TestUserRepositoryFilter(t *testing.T) {
	ctx := context.Background()
	suspended := user.StatusSuspended

	tests := []struct {
		name   string
		filter user.Filter
		want   int
	}{
		{"no filter", user.Filter{}, 12},
		{"status", user.Filter{Status: &suspended}, 4},
		{"search name ignores case", user.Filter{Search: "PERSON 1"}, 3},
		{"search email", user.Filter{Search: "person11@"}, 1},
		{"search and status", user.Filter{Status: &suspended, Search: "person9"}, 1},
		{"wildcards are literal", user.Filter{Search: "%"}, 0},
	}

	for name, repo := range stores(t) {
		fill(t, repo, 12)
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				n, err := repo.Count(ctx, tt.filter)
				if err != nil {
					t.Fatalf("Count: %v", err)
				}
				if n != tt.want {
					t.Errorf("Count = %d, want %d", n, tt.want)
				}

				users, err := repo.List(ctx, tt.filter, 0, 100)
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				if len(users) != tt.want {
					t.Errorf("len(List) = %d, want %d", len(users), tt.want)
				}
				for _, u := range users {
					if !tt.filter.Matches(u) {
						t.Errorf("List returned %s which does not match", u.ID)
					}
				}
			})
		}
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			fill(t, repo, 3)

			newName := "Renamed"
			inactive := user.StatusInactive
			later := base.Add(time.Hour)

			got, err := repo.Update(ctx, "id-01", user.Patch{Name: &newName, Status: &inactive, UpdatedAt: later})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if got.Name != newName || got.Status != inactive || got.Email != "person1@example.com" {
				t.Errorf("Update = %+v", got)
			}
			if !got.UpdatedAt.Equal(later) {
				t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
			}

			stored, err := repo.GetByID(ctx, "id-01")
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if stored.Name != newName || !stored.UpdatedAt.Equal(later) {
				t.Errorf("stored = %+v", stored)
			}

			// An older timestamp never moves updated_at backwards.
			again, err := repo.Update(ctx, "id-01", user.Patch{UpdatedAt: base})
			if err != nil {
				t.Fatalf("Update older: %v", err)
			}
			if !again.UpdatedAt.Equal(later) {
				t.Errorf("UpdatedAt = %v, want %v", again.UpdatedAt, later)
			}

			taken := "person2@example.com"
			if _, err := repo.Update(ctx, "id-01", user.Patch{Email: &taken, UpdatedAt: later}); !errors.Is(err, ErrEmailTaken) {
				t.Errorf("Update taken email err = %v, want ErrEmailTaken", err)
			}

			own := "person1@example.com"
			if _, err := repo.Update(ctx, "id-01", user.Patch{Email: &own, UpdatedAt: later}); err != nil {
				t.Errorf("Update to own email: %v", err)
			}

			if _, err := repo.Update(ctx, "missing", user.Patch{Name: &newName}); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("Update missing err = %v, want ErrUserNotFound", err)
			}
		})
	}
}

func TestUserRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			fill(t, repo, 3)

			if err := repo.Delete(ctx, "id-01"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := repo.Delete(ctx, "id-01"); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("second Delete err = %v, want ErrUserNotFound", err)
			}
			if _, err := repo.GetByID(ctx, "id-01"); !errors.Is(err, ErrUserNotFound) {
				t.Errorf("GetByID after Delete err = %v", err)
			}

			all, err := repo.List(ctx, user.Filter{}, 0, 10)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if fmt.Sprint(ids(all)) != "[id-00 id-02]" {
				t.Errorf("ids = %v", ids(all))
			}

			// The freed email can be reused.
			reuse := newUser(7, user.StatusActive)
			reuse.Email = "person1@example.com"
			if _, err := repo.Insert(ctx, reuse); err != nil {
				t.Errorf("Insert with freed email: %v", err)
			}
		})
	}
}

func TestSeededMemoryUserRepository(t *testing.T) {
	repo := NewSeededMemoryUserRepository(100)

	n, err := repo.Count(context.Background(), user.Filter{})
	if err != nil || n != 100 {
		t.Fatalf("Count = %d, %v; want 100", n, err)
	}

	users, err := repo.List(context.Background(), user.Filter{}, 20, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if users[0].ID != "20" || users[19].ID != "39" {
		t.Errorf("page 2 spans %s..%s, want 20..39", users[0].ID, users[19].ID)
	}

	u, err := repo.GetByID(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Email != "user42@example.com" || !u.CreatedAt.Equal(SeedTime) {
		t.Errorf("seeded user = %+v", u)
	}
}
