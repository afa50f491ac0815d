package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cartbuilder/internal/cartlock"
	"cartbuilder/internal/config"
	"cartbuilder/internal/db"
	"cartbuilder/internal/httpserver"
	applogger "cartbuilder/internal/logger"
	cartrepo "cartbuilder/internal/repository/cart"
	customerrepo "cartbuilder/internal/repository/customer"
	productrepo "cartbuilder/internal/repository/product"
	storerepo "cartbuilder/internal/repository/store"
	cartsvc "cartbuilder/internal/service/cart"
	productsvc "cartbuilder/internal/service/product"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := applogger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.Named("api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var locker cartlock.Locker
	if cfg.RedisAddr != "" {
		rdb, err := cartlock.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal("connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		locker = cartlock.NewRedis(rdb, cfg.CartLockTTL, logger.Named("cartlock"))
		logger.Info("using redis cart locks", zap.String("addr", cfg.RedisAddr))
	} else {
		locker = cartlock.NewLocal()
		logger.Info("using in-process cart locks")
	}

	repoLogger := logger.Named("repo")
	cartRepo := cartrepo.NewPostgres(dbpool, repoLogger)
	storeRepo := storerepo.NewPostgres(dbpool, repoLogger)
	customerRepo := customerrepo.NewPostgres(dbpool, repoLogger)
	productRepo := productrepo.NewPostgres(dbpool, repoLogger)
	cartService := cartsvc.New(cartRepo, storeRepo, customerRepo, productRepo, locker, logger.Named("cart"))

	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), dbpool, httpserver.Deps{
		Stores:     storeRepo,
		CartSvc:    cartService,
		ProductSvc: productsvc.New(productRepo),
	}, httpserver.Options{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
