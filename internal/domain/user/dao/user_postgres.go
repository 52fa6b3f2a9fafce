package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/campus-market/internal/domain/user/entity"
)

const userColumns = `id, name, email, mobile, password, is_verified, is_admin, is_archived`

// UserPostgres implements user repository for PostgreSQL
type UserPostgres struct {
	pool *pgxpool.Pool
}

// NewUserPostgres creates a new PostgreSQL user repository
func NewUserPostgres(pool *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{pool: pool}
}

// GetByID retrieves a user by ID
func (r *UserPostgres) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByName retrieves the first user with the given display name
func (r *UserPostgres) GetByName(ctx context.Context, name string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE name = $1 ORDER BY seq LIMIT 1`, name)
	return scanUser(row)
}

// GetByIDs retrieves users for a set of IDs
func (r *UserPostgres) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// List retrieves users, optionally including archived accounts
func (r *UserPostgres) List(ctx context.Context, includeArchived bool) ([]entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE $1 OR NOT is_archived ORDER BY seq`

	rows, err := r.pool.Query(ctx, query, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// UpdateProfile updates the editable profile fields
func (r *UserPostgres) UpdateProfile(ctx context.Context, id string, p entity.Profile) (*entity.User, error) {
	query := `
		UPDATE users SET
			name = $2,
			mobile = $3,
			password = COALESCE(NULLIF($4, ''), password)
		WHERE id = $1
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, id, p.Name, p.Mobile, p.PasswordHash)
	return scanUser(row)
}

// SetArchived sets the archived flag
func (r *UserPostgres) SetArchived(ctx context.Context, id string, archived bool) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET is_archived = $2 WHERE id = $1 RETURNING `+userColumns, id, archived)
	return scanUser(row)
}

// Delete removes a user, reporting whether it existed
func (r *UserPostgres) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash, &u.IsVerified, &u.IsAdmin, &u.IsArchived)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]entity.User, error) {
	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash, &u.IsVerified, &u.IsAdmin, &u.IsArchived); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}
