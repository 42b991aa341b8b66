package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/api"
	"github.com/yourname/smartcoach/internal/auth"
	"github.com/yourname/smartcoach/internal/config"
	"github.com/yourname/smartcoach/internal/storage"
)

const (
	devUserID = "u1"
	devToken  = "MOCK-TOKEN"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("failed to close storage: %v", err)
		}
	}()

	if !cfg.IsProduction() {
		seedDevUser(ctx, store, logger)
	}

	var limiter *api.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		limiter.StartCleanup(time.Minute, 10*time.Minute, ctx.Done())
	}

	app := api.NewServer(logger, store)
	router := api.NewRouter(app, auth.NewProvider(cfg, store, logger), limiter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("Server running on %s (env=%s, storage=%s)", cfg.HTTPAddr, cfg.Env, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// seedDevUser makes the demo token usable against a fresh data store.
func seedDevUser(ctx context.Context, store storage.Store, logger internal.Logger) {
	if _, err := store.GetUserByToken(ctx, devToken); err == nil {
		return
	} else if !errors.Is(err, internal.ErrNotFound) {
		logger.Warnf("could not check for demo user: %v", err)
		return
	}
	user := &internal.User{ID: devUserID, Token: devToken, Name: "Demo User"}
	if err := store.SaveUser(ctx, user); err != nil {
		logger.Warnf("could not create demo user: %v", err)
		return
	}
	logger.Infof("created demo user %s with token %s", devUserID, devToken)
}
