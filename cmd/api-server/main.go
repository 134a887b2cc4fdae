package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Varun5711/expense-tracker/internal/auth"
	"github.com/Varun5711/expense-tracker/internal/config"
	"github.com/Varun5711/expense-tracker/internal/handlers"
	"github.com/Varun5711/expense-tracker/internal/logger"
	"github.com/Varun5711/expense-tracker/internal/middleware"
	"github.com/Varun5711/expense-tracker/internal/redis"
	"github.com/Varun5711/expense-tracker/internal/service"
	"github.com/Varun5711/expense-tracker/internal/storage"
)

func main() {
	log := logger.New("api-server")
	log.SetStdLog()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to open %s store: %v", cfg.Database.Driver, err)
	}
	defer store.Close()
	log.Info("Using %s store", cfg.Database.Driver)

	if cfg.Auth.UsingInsecureSecret() {
		log.Warn("JWT_SECRET not set, using default (insecure for production)")
	}

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal("Invalid password hashing config: %v", err)
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	clientIP, err := middleware.NewClientIP(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatal("Invalid TRUSTED_PROXIES: %v", err)
	}

	routerCfg := handlers.RouterConfig{
		Identity: service.NewIdentityService(store, hasher, jwtManager, log.WithFields(logger.Fields{"component": "identity"})),
		Expenses: service.NewExpenseService(store, store, log.WithFields(logger.Fields{"component": "ledger"})),
		Verifier: service.NewSessionVerifier(store, jwtManager),
		Health:   store,
		ClientIP: clientIP,
		Log:      log,
	}

	if cfg.RateLimit.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		routerCfg.RateLimiter = middleware.NewRateLimiter(redisClient.GetClient(), cfg.RateLimit.Requests, cfg.RateLimit.Window, clientIP, log)
		log.Info("Rate limiting auth routes: %d requests per %s", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Expense tracker API listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed: %v", err)
	}
	log.Info("Api server stopped")
}
