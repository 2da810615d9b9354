package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/deppfellow/users-api/internal/sqlerr"
)

const (
	liteUserColumns = `id, email, name, status, password_hash, created_at, updated_at`

	liteInsertUser = `
		INSERT INTO users (` + liteUserColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	liteGetUserByID = `
		SELECT ` + liteUserColumns + `
		FROM   users
		WHERE  id = ?`

	liteUpdateUser = `
		UPDATE users
		SET    email = ?, name = ?, status = ?, updated_at = ?
		WHERE  id = ?`

	liteDeleteUser = `
		DELETE FROM users WHERE id = ?`
)

// SQLiteUserRepository stores users in SQLite through database/sql.
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// liteWhere renders the filter. SQLite's LIKE is case-insensitive for ASCII.
func liteWhere(filter user.Filter) (string, []any) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 3)

	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status.String())
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteUserRepository) Count(ctx context.Context, filter user.Filter) (int, error) {
	where, args := liteWhere(filter)

	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *SQLiteUserRepository) List(ctx context.Context, filter user.Filter, offset, limit int) ([]user.User, error) {
	where, args := liteWhere(filter)
	args = append(args, limit, offset)

	query := `
		SELECT ` + liteUserColumns + `
		FROM   users
		` + where + `
		ORDER  BY created_at, id
		LIMIT  ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0, limit)
	for rows.Next() {
		u, err := scanLiteUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return getLiteUser(ctx, r.db, id)
}

func (r *SQLiteUserRepository) Insert(ctx context.Context, u user.User) (*user.User, error) {
	_, err := r.db.ExecContext(ctx, liteInsertUser,
		u.ID, u.Email, u.Name, u.Status.String(), u.PasswordHash, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// Update reads, merges and writes back inside one transaction; SQLite
// serializes writers, so the merge sees the latest row.
func (r *SQLiteUserRepository) Update(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getLiteUser(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	updated := current.Apply(patch)
	_, err = tx.ExecContext(ctx, liteUpdateUser,
		updated.Email, updated.Name, updated.Status.String(), updated.UpdatedAt.UTC(), id)
	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update user %s: commit: %w", id, err)
	}
	return &updated, nil
}

func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, liteDeleteUser, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *SQLiteUserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getLiteUser(ctx context.Context, q queryRower, id string) (*user.User, error) {
	u, err := scanLiteUser(q.QueryRowContext(ctx, liteGetUserByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLiteUser(row rowScanner) (user.User, error) {
	var (
		u      user.User
		status string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &status, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}

	st, err := user.ParseStatus(status)
	if err != nil {
		return user.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Status = st
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

var _ UserRepository = (*SQLiteUserRepository)(nil)
