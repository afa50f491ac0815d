package main

import (
	"context"

	"cartbuilder/internal/config"
	"cartbuilder/internal/db"
	applogger "cartbuilder/internal/logger"
	customerrepo "cartbuilder/internal/repository/customer"
	productrepo "cartbuilder/internal/repository/product"
	storerepo "cartbuilder/internal/repository/store"
	"cartbuilder/internal/seed"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := applogger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	repos := seed.Repos{
		Stores:    storerepo.NewPostgres(pool, logger),
		Products:  productrepo.NewPostgres(pool, logger),
		Customers: customerrepo.NewPostgres(pool, logger),
	}
	if err := seed.Apply(ctx, repos, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.String("store_id", seed.DemoStoreID))
}
