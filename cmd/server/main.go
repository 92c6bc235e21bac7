// Package main is the entry point for the dukapos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dukapos/internal/ai"
	"dukapos/internal/config"
	"dukapos/internal/domain/auth"
	"dukapos/internal/domain/matching"
	"dukapos/internal/imagestore"
	"dukapos/internal/importer"
	v1 "dukapos/internal/infrastructure/http/v1"
	"dukapos/internal/infrastructure/storage/postgres"
	"dukapos/internal/infrastructure/storage/postgres/auth_repo"
	"dukapos/internal/infrastructure/storage/postgres/catalog_repo"
	"dukapos/internal/infrastructure/storage/postgres/document_repo"
	"dukapos/internal/invoice"
	"dukapos/internal/ocr"
	"dukapos/pkg/logger"
	"dukapos/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting dukapos server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- JWT and Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Document numbering ---
	numberingService := numerator.New(pool)

	// --- Receipt import pipeline ---
	images, err := imagestore.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalw("failed to initialize image store", "dir", cfg.UploadDir, "error", err)
	}

	// No cloud OCR engine ships yet; imports degrade to placeholder
	// drafts when extraction is unavailable.
	ocrEngine := ocr.NewDisabled(cfg.OCRProvider)
	if cfg.EnableOCR {
		log.Warnw("OCR enabled but no engine is available, imports will run degraded",
			"provider", cfg.OCRProvider)
	}

	parser, err := ai.NewParser(cfg.AIProvider, cfg.AIAPIKey)
	if err != nil {
		log.Fatalw("failed to initialize AI parser", "provider", cfg.AIProvider, "error", err)
	}

	productRepo := catalog_repo.NewProductRepo(txManager)
	pendingRepo := catalog_repo.NewPendingProductRepo(txManager)
	draftRepo := document_repo.NewDraftRepo(txManager)
	matcher := matching.NewMatcher(productRepo, cfg.MatchConfidenceThreshold)
	pipeline := importer.NewPipeline(images, ocrEngine, parser, matcher, pendingRepo, draftRepo)

	log.Infow("import pipeline initialized",
		"ai_provider", cfg.AIProvider,
		"ocr_enabled", cfg.EnableOCR,
		"match_threshold", cfg.MatchConfidenceThreshold,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		TxManager:       txManager,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		Numbering:       numberingService,
		ImportPipeline:  pipeline,
		Audit:           auditService,
		Images:          images,
		InvoiceRenderer: invoice.NewText(cfg.ShopName, cfg.InvoiceFooter),
		ShopName:        cfg.ShopName,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
