package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/users-api/internal/model/user"
	"github.com/deppfellow/users-api/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUserColumns = `id, email, name, status, password_hash, created_at, updated_at`

	pgInsertUser = `
		INSERT INTO users (` + pgUserColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + pgUserColumns

	pgGetUserByID = `
		SELECT ` + pgUserColumns + `
		FROM   users
		WHERE  id = $1`

	pgDeleteUser = `
		DELETE FROM users WHERE id = $1`
)

// PostgresUserRepository stores users in Postgres through a pgx pool.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// pgWhere renders the filter as a WHERE clause with numbered placeholders.
func pgWhere(filter user.Filter) (string, []any) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if filter.Status != nil {
		args = append(args, filter.Status.String())
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresUserRepository) Count(ctx context.Context, filter user.Filter) (int, error) {
	where, args := pgWhere(filter)

	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepository) List(ctx context.Context, filter user.Filter, offset, limit int) ([]user.User, error) {
	where, args := pgWhere(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM   users
		%s
		ORDER  BY created_at, id
		LIMIT  $%d OFFSET $%d`,
		pgUserColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanPgUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, pgGetUserByID, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return collectOnePgUser(rows)
}

func (r *PostgresUserRepository) Insert(ctx context.Context, u user.User) (*user.User, error) {
	rows, err := r.pool.Query(ctx, pgInsertUser,
		u.ID, u.Email, u.Name, u.Status.String(), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created, err := collectOnePgUser(rows)
	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return nil, ErrEmailTaken
	}
	return created, err
}

// Update builds the SET list from the non-nil patch fields. updated_at only
// moves forward, so concurrent updates cannot make it go back in time.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.Email != nil {
		args = append(args, *patch.Email)
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", len(args)))
	}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, patch.Status.String())
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, patch.UpdatedAt)
	setClauses = append(setClauses, fmt.Sprintf("updated_at = GREATEST(updated_at, $%d)", len(args)))

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE users
		SET    %s
		WHERE  id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), pgUserColumns)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	updated, err := collectOnePgUser(rows)
	if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
		return nil, ErrEmailTaken
	}
	return updated, err
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, pgDeleteUser, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func collectOnePgUser(rows pgx.Rows) (*user.User, error) {
	u, err := pgx.CollectExactlyOneRow(rows, scanPgUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanPgUser(row pgx.CollectableRow) (user.User, error) {
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

var _ UserRepository = (*PostgresUserRepository)(nil)
