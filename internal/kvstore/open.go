package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"movie-discovery-client/internal/config"
	"movie-discovery-client/internal/database"
)

// redisKeyPrefix namespaces the favorites slot inside a shared Redis DB.
const redisKeyPrefix = "movie-discovery:"

// Open builds the backend selected by cfg.KV.Backend. The returned close
// function releases any connection and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	noop := func() {}

	switch cfg.KV.Backend {
	case config.BackendMemory:
		slog.Warn("favorites are kept in memory and will not survive a restart")
		return NewMemory(), noop, nil

	case config.BackendFile, "":
		s, err := NewFile(afero.NewOsFs(), cfg.KV.Dir)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("favorites stored on disk", "dir", cfg.KV.Dir)
		return s, noop, nil

	case config.BackendRedis:
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedis(rdb, redisKeyPrefix), func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgres(db), func() { _ = db.Close() }, nil

	case config.BackendMinIO:
		client, err := database.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, noop, err
		}
		return NewMinIO(client, cfg.MinIO.BucketName), noop, nil
	}

	return nil, noop, fmt.Errorf("unsupported KV backend %q", cfg.KV.Backend)
}
