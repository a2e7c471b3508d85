// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by repositories when a unique field (username,
// email) is already taken.
var ErrDuplicate = errors.New("already exists")

// User represents a registered author or reader.
type User struct {
	ID           int64     `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Author is the public projection of a User attached to posts, comments
// and likes.
type Author struct {
	ID       int64  `json:"_id"`
	Username string `json:"username"`
}

// AuthorOf returns the public projection of u.
func AuthorOf(u *User) *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, Username: u.Username}
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// ListByIDs returns the users that exist among ids, in no particular order.
	ListByIDs(ctx context.Context, ids []int64) ([]User, error)
	// Create returns ErrDuplicate when the username or email is taken.
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
}

// TokenIssuer signs and verifies bearer tokens carrying a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
	Verify(token string) (int64, error)
}
