package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"blog/internal/domain"

	"github.com/lib/pq"
)

const userColumns = "id, username, email, password_hash, created_at"

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByID retrieves a user by ID.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return d.getUser(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by email.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.getUser(ctx, "email = $1", email)
}

// GetByUsername retrieves a user by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.getUser(ctx, "username = $1", username)
}

// ListByIDs returns the users that exist among ids.
func (d *DB) ListByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Create creates a new user.
func (d *DB) Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES ($1, $2, $3, $4) RETURNING "+userColumns,
		username, email, passwordHash, time.Now().UTC(),
	))
	if uniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	return u, err
}
