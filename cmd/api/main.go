package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mercafacil/config"
	httpHandler "mercafacil/internal/adapter/http/handler"
	pgStorage "mercafacil/internal/adapter/storage/postgres"
	redisStorage "mercafacil/internal/adapter/storage/redis"
	"mercafacil/internal/core/ports"
	"mercafacil/internal/service"
	"mercafacil/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Mercafácil settlement service")

	// Split rates are validated once at startup; a bad rate table is a
	// deployment error, not something to discover mid-settlement.
	rates, err := cfg.Settlement.SplitRates()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid settlement rates")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	movementRepo := pgStorage.NewMovementRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	payoutRepo := pgStorage.NewPayoutRepo(pool)
	revenueRepo := pgStorage.NewPlatformRevenueRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	payoutCache := redisStorage.NewPayoutCache(rdb)

	// Initialize services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	transactionSvc := service.NewTransactionService(txRepo, log)
	ledgerSvc := service.NewLedgerService(walletRepo, movementRepo, transactor, log)
	extractSvc := service.NewExtractService(walletRepo, movementRepo)
	settlementSvc := service.NewSettlementService(
		payoutRepo,
		revenueRepo,
		txRepo,
		walletRepo,
		movementRepo,
		payoutCache,
		transactor,
		rates,
		cfg.Settlement.Timeout,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SettlementSvc:  settlementSvc,
		TransactionSvc: transactionSvc,
		ExtractSvc:     extractSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		ServiceKey:     cfg.Service.Key,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
