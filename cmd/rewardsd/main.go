package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/decker-labs/decker-backend/internal/allowlist"
	"github.com/decker-labs/decker-backend/internal/api"
	"github.com/decker-labs/decker-backend/internal/config"
	"github.com/decker-labs/decker-backend/internal/eligibility"
	"github.com/decker-labs/decker-backend/internal/fetcher"
	"github.com/decker-labs/decker-backend/internal/helius"
	"github.com/decker-labs/decker-backend/internal/models"
	"github.com/decker-labs/decker-backend/internal/observer"
	"github.com/decker-labs/decker-backend/internal/referral"
	"github.com/decker-labs/decker-backend/internal/solana"
	"github.com/decker-labs/decker-backend/internal/txcache"
	"github.com/decker-labs/decker-backend/internal/utils"
)

func main() {
	logger := utils.GetLogger()

	if err := godotenv.Load(); err != nil {
		logger.Println("No .env file found, using process environment")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database connection
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Set up database connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Migrate the schema
	if err := db.AutoMigrate(&models.Referral{}, &models.Claim{}); err != nil {
		logger.Fatalf("Failed to migrate database schema: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := txcache.New(cfg.RedisAddr, cfg.RedisPass, cfg.CacheTTL)

	sources := allowlist.Sources{
		DegenBonusCSV: cfg.DegenBonusCSV,
		OGListCSV:     cfg.OGListCSV,
		RoleHolderCSV: cfg.RoleHolderCSV,
	}
	lists := allowlist.NewHolder(allowlist.Load(ctx, sources, logger))

	verifier := solana.NewVerifier(cfg.RPCURL)
	ledger := referral.NewLedger(db, verifier, logger)

	heliusClient := helius.NewClient(cfg.HeliusBaseURL, cfg.HeliusAPIKey)
	policy := fetcher.DefaultPolicy()
	policy.MaxPages = cfg.MaxPages
	policy.MaxAttempts = cfg.MaxAttempts
	historyFetcher := fetcher.New(heliusClient, policy, logger)

	service := eligibility.NewService(cache, historyFetcher, ledger, lists, logger)
	server := api.NewServer(service, ledger, verifier, logger)

	// Channel to listen for termination signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// SIGHUP swaps in freshly loaded allow-lists
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			logger.Println("Reloading allow-lists...")
			lists.Swap(allowlist.Load(ctx, sources, logger))
			logger.Println("Allow-lists reloaded")
		}
	}()

	// Start the transfer observer in a separate goroutine
	if cfg.RPCWSURL != "" {
		go func() {
			obs, err := observer.NewTransferObserver(cfg.RPCWSURL, cache)
			if err != nil {
				logger.Printf("Transfer observer disabled: %v", err)
				return
			}
			logger.Println("Connected to WebSocket, watching transfers...")
			obs.Watch(ctx, logger)
		}()
	}

	// Start the API server in a separate goroutine
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Printf("Starting API server on port %d", cfg.Port)
		if err := server.Router().Run(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to run API server: %v", err)
		}
	}()

	// Block until a signal is received
	<-stop

	logger.Println("Shutting down...")
	cancel()

	// Close database connection
	sqlDB.Close()
}
