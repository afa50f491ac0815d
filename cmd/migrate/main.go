package main

import (
	"context"
	"flag"

	"cartbuilder/internal/config"
	"cartbuilder/internal/db"
	applogger "cartbuilder/internal/logger"
	"cartbuilder/internal/migrate"
	"go.uber.org/zap"
)

func main() {
	down := flag.Int("down", 0, "revert this many migrations instead of applying")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := applogger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.Named("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if *down > 0 {
		if err := migrate.Rollback(ctx, pool, *down); err != nil {
			logger.Fatal("rollback migrations", zap.Error(err))
		}
	} else if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	version, dirty, ok, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Fatal("read schema version", zap.Error(err))
	}
	if !ok {
		logger.Info("schema is empty")
		return
	}
	logger.Info("migrations done", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
