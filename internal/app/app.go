// Package app wires configuration, logging, storage connections and the
// HTTP router into a runnable service.
package app

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adminboard/dashboard-core/internal/api"
	"github.com/adminboard/dashboard-core/internal/infrastructure/config"
	mongodb "github.com/adminboard/dashboard-core/internal/infrastructure/db/mongo"
	redisdb "github.com/adminboard/dashboard-core/internal/infrastructure/db/redis"
	"github.com/adminboard/dashboard-core/pkg/logger"
)

// Run loads configuration from the environment, connects the stores and
// serves the dashboard API until the listener fails. Mongo is attempted
// but optional; when unreachable the audit trail falls back to Redis.
func Run(ctx context.Context) error {
	log := logger.New("development", "info")
	cfg := config.Load(log)
	log = logger.New(cfg.Env, cfg.LogLevel)

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	var db *mongo.Database
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, audit trail stays on redis")
		db = nil
	} else {
		defer func() { _ = mongoClient.Disconnect(ctx) }()
	}

	e := api.NewRouter(cfg, rdb, db, log)
	log.Info().Str("addr", cfg.ListenAddr).Msg("dashboard core listening")
	return e.Start(cfg.ListenAddr)
}
