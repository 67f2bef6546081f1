package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"pocketpilot/internal/config"
	"pocketpilot/internal/extraction"
	"pocketpilot/internal/extractor/providers"
	"pocketpilot/internal/handler"
	"pocketpilot/internal/repository/postgres"
	"pocketpilot/internal/router"
	"pocketpilot/internal/service"
	s3storage "pocketpilot/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if os.Getenv("POCKETPILOT_SERVER_ENVIRONMENT") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	txnRepo := postgres.NewTransactionRepo(db)
	receiptRepo := postgres.NewReceiptRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	store, err := s3storage.NewReceiptStore(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction
	rules, err := cfg.Extraction.Rules()
	if err != nil {
		return fmt.Errorf("failed to load extraction rules: %w", err)
	}
	pipeline, err := extraction.NewPipeline(rules)
	if err != nil {
		return fmt.Errorf("failed to build extraction pipeline: %w", err)
	}
	providers.RegisterAll()
	receiptExtractor, err := providers.Build(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}
	log.Printf("Extraction provider: %s (secondary: %q)", cfg.Extractor.Primary.Provider, cfg.Extractor.Secondary.Provider)

	// Initialize services
	tokenSvc := service.NewTokenService(cfg.JWT)
	receiptSvc := service.NewReceiptService(receiptExtractor, pipeline, store, receiptRepo, &cfg.S3)
	txnSvc := service.NewTransactionService(txnRepo)
	statsSvc := service.NewStatsService(statsRepo)

	// Initialize handlers
	receiptH := handler.NewReceiptHandler(receiptSvc, cfg.S3.MaxFileSizeMB*1024*1024)
	txnH := handler.NewTransactionHandler(txnSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(tokenSvc, cfg.CORS.AllowedOrigins, receiptH, txnH, statsH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
