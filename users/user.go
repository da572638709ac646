// Package users is the credential store: it persists usernames with their
// password hashes and looks them up again. Each backend maps its storage
// representation to User at its own boundary, so callers never see database
// rows or documents.
package users

import (
	"context"
	"errors"
	"time"
)

// User is the domain representation of a registered account.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	HashedPassword string    `json:"-"` // Do not expose hashed password
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser is the input to Store.Create. The password is already hashed.
type NewUser struct {
	Username       string
	HashedPassword string
	Email          string
}

var (
	// ErrUserNotFound is returned by FindByUsername when no user has that name.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned by Create when the username is taken.
	ErrDuplicateUser = errors.New("username already exists")
)

// Store persists users. Implementations must make Create's uniqueness check
// and insert atomic, and must be safe for concurrent use.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)
}
