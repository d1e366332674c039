package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"performa/api/cron"
	routes "performa/api/http"
	"performa/api/http/store"
	"performa/internal/config"
	"performa/internal/logger"

	"github.com/go-redis/redis/v8"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithField("error", err).Warn("redis unavailable, query facade will run without a response cache")
		rdb = nil
	}
	cancelPing()
	if rdb != nil {
		defer rdb.Close()
	}

	dealStore := store.New(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)

	var cronManager *cron.Manager
	if cfg.Cron.Enabled {
		cronManager = cron.NewManager(dealStore)
		if err := cronManager.Start(cfg.Cron.Schedule); err != nil {
			logger.Fatalf("failed to start scheduled re-analysis job: %v", err)
		}
	}

	router := routes.SetupRoutes(cfg, dealStore)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("query facade starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("failed to start query facade: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cronManager != nil {
		cronManager.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("query facade forced to shutdown: %v", err)
	}
	logger.Info("shutdown complete")
}
