// Package db provides datastore connectivity for the credential store.
// It establishes a pgx connection pool or a MongoDB client from the configured
// connection string and makes sure the users table or collection exists with a
// uniqueness guarantee on username.
package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	// `time` is used for setting timeouts and connection pool configurations.
	"time"

	// `pgxpool` is part of the `jackc/pgx` suite, providing a robust connection pool for PostgreSQL.
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/user/cinelens-go/apperror"
)

// Backend identifies which datastore a connection string points at.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongo"
	BackendMemory   Backend = "memory"
)

// DefaultMongoDatabase is used when the Mongo URI has no database path.
const DefaultMongoDatabase = "cinelens"

// usersSchema is applied at startup. The UNIQUE constraint is what makes
// registration's check-and-insert atomic.
const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	username   TEXT NOT NULL,
	password   TEXT NOT NULL,
	email      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_username_key UNIQUE (username)
)`

// DetectBackend inspects the scheme of a connection string.
func DetectBackend(dsn string) (Backend, error) {
	u, err := url.Parse(strings.TrimSpace(dsn))
	if err != nil {
		return "", apperror.NewConfigError("invalid database connection string", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "memory":
		return BackendMemory, nil
	default:
		return "", apperror.NewConfigError(fmt.Sprintf("unsupported database scheme %q", u.Scheme), nil)
	}
}

// NewPostgresPool creates a pgx pool from dsn and verifies it with a ping.
func NewPostgresPool(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.NewConfigError("error parsing postgres connection string", err)
	}

	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError("error creating pgxpool", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close() // Clean up on connection failure
		return nil, apperror.NewDatabaseError("error connecting to postgres", err)
	}

	return pool, nil
}

// EnsurePostgresSchema creates the users table if it does not exist yet.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, usersSchema); err != nil {
		return apperror.NewDatabaseError("failed to create users table", err)
	}
	return nil
}

// NewMongoClient connects to MongoDB and returns the client together with the
// database named in the URI path (DefaultMongoDatabase when absent).
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, string, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, "", apperror.NewDatabaseError("error connecting to mongodb", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, "", apperror.NewDatabaseError("error pinging mongodb", err)
	}

	return client, MongoDatabaseName(uri), nil
}

// MongoDatabaseName extracts the database from a mongodb:// URI path.
func MongoDatabaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultMongoDatabase
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return DefaultMongoDatabase
	}
	return name
}
