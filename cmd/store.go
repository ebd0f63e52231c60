package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/datasource"
	"github.com/neetwise/listing/internal/datasource/memory"
	"github.com/neetwise/listing/internal/datasource/postgres"
	"github.com/neetwise/listing/internal/datasource/redisfeed"
	"github.com/neetwise/listing/internal/datasource/sqlite"
	"github.com/neetwise/listing/internal/secrets"
)

const (
	driverMemory   = "memory"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	envPostgresURL = "NEETWISE_POSTGRES_URL"
	envRedisURL    = "NEETWISE_REDIS_URL"
)

// openStore connects the configured document store. The returned function
// releases it.
func openStore(ctx context.Context, config *Config, logger *zap.Logger) (datasource.Source, func(), error) {
	driver := strings.ToLower(strings.TrimSpace(config.Store.Driver))
	logger.Debug("opening document store", zap.String("driver", driver))

	switch driver {
	case driverMemory:
		return memory.New(config.UserID), func() {}, nil
	case driverSQLite, "":
		store, err := sqlite.Open(ctx, config.Store.SQLitePath, config.UserID)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil
	case driverPostgres:
		return openPostgres(ctx, config, logger)
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", config.Store.Driver)
	}
}

func openPostgres(ctx context.Context, config *Config, logger *zap.Logger) (datasource.Source, func(), error) {
	databaseURL, err := secrets.Load(secrets.Source{
		Name: "postgres url",
		File: config.Store.PostgresURLFile,
		Env:  envPostgresURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set store.postgres-url-file or %s)", err, envPostgresURL)
	}

	pool, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}

	// Without redis, arrivals only reach listings of this process.
	var feed postgres.Feed
	closeFeed := func() {}
	if strings.TrimSpace(config.Store.RedisURLFile) != "" || os.Getenv(envRedisURL) != "" {
		redisURL, err := secrets.Load(secrets.Source{
			Name: "redis url",
			File: config.Store.RedisURLFile,
			Env:  envRedisURL,
		})
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		client, err := redisfeed.Connect(ctx, redisURL)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		feed = redisfeed.New(client, logger)
		closeFeed = func() {
			if err := client.Close(); err != nil {
				logger.Warn("closing redis client", zap.Error(err))
			}
		}
	} else {
		logger.Info("redis is not configured, real-time arrivals stay in process")
	}

	return postgres.New(pool, feed, config.UserID), func() {
		closeFeed()
		pool.Close()
	}, nil
}
