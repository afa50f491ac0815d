package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"cartbuilder/internal/config"
	"cartbuilder/internal/db"
	"cartbuilder/internal/domain"
	"cartbuilder/internal/importer"
	applogger "cartbuilder/internal/logger"
	productrepo "cartbuilder/internal/repository/product"
	storerepo "cartbuilder/internal/repository/store"
	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		storeID  string
	)
	flag.StringVar(&filePath, "file", "", "Path to a product CSV (sku,name,price,currency[,id])")
	flag.StringVar(&storeID, "store", "", "Store id to import into")
	flag.Parse()

	if filePath == "" || storeID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := applogger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.Named("importer")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if _, err := storerepo.NewPostgres(pool, logger).GetByID(ctx, storeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Fatal("store does not exist; run the seed or create it first", zap.String("store_id", storeID))
		}
		logger.Fatal("load store", zap.String("store_id", storeID), zap.Error(err))
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), storeID, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}

	logger.Info("import finished",
		zap.Int("imported", count),
		zap.String("store_id", storeID),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
