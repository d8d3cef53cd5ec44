package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/deckgen/config"
	"github.com/target/deckgen/internal/bootstrap"
	"github.com/target/deckgen/internal/data"
)

type infraOptions struct {
	// WantDB connects the presentation catalog when it is enabled.
	WantDB bool
	// WantServices builds the presentation service on top of the stores.
	WantServices bool
}

type adminStores struct {
	Jobs  *data.RedisJobStore
	Queue *data.RedisWorkQueue
	Usage *data.RedisUsageCounter
}

type infra struct {
	db       *sql.DB
	redis    redis.UniversalClient
	stores   adminStores
	services *bootstrap.ServiceContainer
}

// openInfra connects Redis, and optionally Postgres and the service layer.
func openInfra(ctx context.Context, cmdCtx *commandContext, opts infraOptions) (*infra, error) {
	cfg := cmdCtx.Config
	in := &infra{}

	client, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{RedisConfig: cfg.Redis, Logger: cmdCtx.Logger})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	in.redis = client
	in.stores = adminStores{
		Jobs: data.NewRedisJobStore(client, data.JobStoreConfig{
			StatusTTL: cfg.Retention.StatusTTL,
			URLTTL:    cfg.Retention.URLTTL,
		}),
		Queue: data.NewRedisWorkQueue(client, cfg.Redis.QueueKey),
		Usage: data.NewRedisUsageCounter(client),
	}

	if opts.WantDB && cfg.Postgres.Enabled {
		db, dbErr := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: cmdCtx.Logger})
		if dbErr != nil {
			return nil, errors.Join(fmt.Errorf("connect db: %w", dbErr), in.closeErr())
		}
		in.db = db
	}

	if opts.WantServices {
		// Only the front-end half is needed; never build a worker from the CLI.
		svcCfg := cfg
		svcCfg.Services = string(config.ServiceModeHTTP)
		container, svcErr := bootstrap.NewServices(ctx, &bootstrap.ServiceDeps{
			Config:      &svcCfg,
			DB:          in.db,
			RedisClient: client,
			Logger:      cmdCtx.Logger,
		})
		if svcErr != nil {
			return nil, errors.Join(fmt.Errorf("build services: %w", svcErr), in.closeErr())
		}
		in.services = &container
	}

	return in, nil
}

func (in *infra) closeErr() error {
	var closeErr error
	if in.services != nil {
		if err := in.services.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close services: %w", err))
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}

func (in *infra) close(logger *slog.Logger) {
	if err := in.closeErr(); err != nil {
		logger.Warn("close infrastructure failed", "error", err)
	}
}
