package users

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/user/cinelens-go/config"
	"github.com/user/cinelens-go/db"
)

// Open builds the Store selected by the scheme of cfg.URL and prepares its
// schema. The returned close function releases the underlying connections.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, func(), error) {
	backend, err := db.DetectBackend(cfg.URL)
	if err != nil {
		return nil, nil, err
	}

	switch backend {
	case db.BackendPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.URL, cfg.PoolSize)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Str("backend", string(backend)).Int("pool_size", cfg.PoolSize).Msg("credential store ready")
		return NewPostgresStore(pool), pool.Close, nil

	case db.BackendMongo:
		client, dbName, err := db.NewMongoClient(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		store := NewMongoStore(client.Database(dbName))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.Info().Str("backend", string(backend)).Str("database", dbName).Msg("credential store ready")
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongodb disconnect failed")
			}
		}
		return store, closeFn, nil

	default:
		log.Warn().Msg("using in-memory credential store; users are lost on restart")
		return NewMemoryStore(), func() {}, nil
	}
}
