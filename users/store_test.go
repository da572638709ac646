package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/user/cinelens-go/config"
)

func TestMemoryStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, NewUser{Username: "alice", HashedPassword: "hash", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = s.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStore_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, NewUser{Username: "alice", HashedPassword: "h1"})
	require.NoError(t, err)

	_, err = s.Create(ctx, NewUser{Username: "alice", HashedPassword: "h2"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", found.HashedPassword, "first registration must win")
}

func TestMemoryStore_ConcurrentRegistrationCreatesOneAccount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(ctx, NewUser{Username: "race", HashedPassword: "h"}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestPostgresStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "hash", "alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	store := NewPostgresStore(mock)
	u, err := store.Create(context.Background(), NewUser{Username: "alice", HashedPassword: "hash", Email: "alice@example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, createdAt, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "hash", "").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"})

	_, err = NewPostgresStore(mock).Create(context.Background(), NewUser{Username: "alice", HashedPassword: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateDBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "alice", "hash", "").
		WillReturnError(errors.New("db down"))

	_, err = NewPostgresStore(mock).Create(context.Background(), NewUser{Username: "alice", HashedPassword: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUser)
	assert.Contains(t, err.Error(), "db down")
}

func TestPostgresStore_FindByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password", "created_at"}).
			AddRow("6f1c1d4e-0000-4000-8000-000000000001", "alice", "", "hash", createdAt))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)

	u, err := store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "6f1c1d4e-0000-4000-8000-000000000001", u.ID)
	assert.Equal(t, "hash", u.HashedPassword)
	assert.Empty(t, u.Email)

	_, err = store.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDocumentToUser(t *testing.T) {
	id := primitive.NewObjectID()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	u := userDocument{ID: id, Username: "alice", Password: "hash", Email: "a@example.com", CreatedAt: createdAt}.toUser()
	assert.Equal(t, id.Hex(), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "hash", u.HashedPassword)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, createdAt, u.CreatedAt)

	// Documents from older deployments only have username and password.
	legacy := userDocument{ID: id, Username: "bob", Password: "hash"}.toUser()
	assert.Equal(t, id.Timestamp().UTC(), legacy.CreatedAt)
}

func TestOpen_Memory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), &config.DatabaseConfig{URL: "memory://"})
	require.NoError(t, err)
	defer closeFn()

	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, _, err := Open(context.Background(), &config.DatabaseConfig{URL: "redis://localhost"})
	assert.Error(t, err)
}
