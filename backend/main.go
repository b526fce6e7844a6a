package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"counterpos/m/internal/api"
	"counterpos/m/internal/config"
	"counterpos/m/internal/database"
	"counterpos/m/internal/migrations"
	"counterpos/m/internal/seed"
	"counterpos/m/internal/store"
	"counterpos/m/internal/terminal"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.WithError(err).Fatal("unable to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.WithError(err).Fatal("unable to run migrations")
	}
	if n, err := seed.LoadProducts(db, cfg.SeedCatalog, logger); err != nil {
		logger.WithError(err).Warn("catalog seed skipped")
	} else if n > 0 {
		logger.WithField("products", n).Info("catalog seeded")
	}

	var terminals terminal.Store = terminal.NewMemoryStore()
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := terminal.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("unable to connect to redis")
		}
		defer client.Close()
		terminals = terminal.NewRedisStore(client, cfg.SessionTTL)
		logger.Info("terminal state kept in redis")
	}

	handler := api.New(cfg, store.New(db), terminals, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.HTTPPort).Infof("%s POS server starting", cfg.Profile.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	logger.Info("server stopped")
}
