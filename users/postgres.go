package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505" // PostgreSQL unique violation error code

// pgxQuerier is the subset of *pgxpool.Pool the store uses.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps users in the `users` table created by db.EnsurePostgresSchema.
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore wraps a pgx pool (or anything with QueryRow).
func NewPostgresStore(db pgxQuerier) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByUsername loads the user row for username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, COALESCE(email, ''), password, created_at FROM users WHERE username = $1`

	var u User
	err := s.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// Create inserts a new row. The unique constraint on username turns a
// concurrent duplicate registration into ErrDuplicateUser.
func (s *PostgresStore) Create(ctx context.Context, nu NewUser) (*User, error) {
	query := `INSERT INTO users (id, username, password, email)
              VALUES ($1, $2, $3, NULLIF($4, ''))
              RETURNING created_at`

	u := &User{
		ID:             uuid.NewString(),
		Username:       nu.Username,
		Email:          nu.Email,
		HashedPassword: nu.HashedPassword,
	}
	err := s.db.QueryRow(ctx, query, u.ID, u.Username, u.HashedPassword, u.Email).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}
