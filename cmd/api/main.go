package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkedtrust/claim-extract/internal/api"
	"github.com/linkedtrust/claim-extract/internal/api/middleware"
	"github.com/linkedtrust/claim-extract/internal/config"
	"github.com/linkedtrust/claim-extract/internal/extraction"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/prompts"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/service"
	"github.com/linkedtrust/claim-extract/internal/storage"
	"github.com/linkedtrust/claim-extract/internal/trustapi"
)

const version = "0.3.0"

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		File:        cfg.Log.File,
		ServiceName: "claim-extract",
	})
	logger.SetDefault(appLogger)

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			appLogger.WithError(err).Fatal("Failed to migrate database")
		}
	}

	// Initialize repositories
	docRepo := repository.NewDocumentRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize storage
	objectStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if s3Store, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3Store.EnsureBucket(context.Background()); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	// Resolve the extraction prompt once at startup so a bad prompt file
	// fails fast instead of failing every job.
	prompt, err := prompts.Load(cfg.Extraction.PromptFile, cfg.Extraction.PromptDir)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load extraction prompt")
	}

	// Initialize collaborator clients
	extractor := extraction.NewClient(&extraction.Config{
		Model:   cfg.Extraction.Model,
		APIKey:  cfg.Extraction.APIKey,
		BaseURL: cfg.Extraction.BaseURL,
		Timeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
	})
	trustClient := trustapi.NewClient(&trustapi.Config{
		BaseURL:  cfg.TrustAPI.BaseURL,
		Email:    cfg.TrustAPI.Email,
		Password: cfg.TrustAPI.Password,
		IssuerID: cfg.TrustAPI.IssuerID,
		Timeout:  time.Duration(cfg.TrustAPI.TimeoutSeconds) * time.Second,
	})

	// Initialize services
	documentService := service.NewDocumentService(docRepo, claimRepo, objectStorage, appLogger, &service.DocumentConfig{
		MaxSizeMB:         cfg.Upload.MaxSizeMB,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
	})
	claimService := service.NewClaimService(claimRepo, docRepo, appLogger)
	publishService := service.NewPublishService(claimRepo, docRepo, trustClient, appLogger,
		service.CleanupPolicy(cfg.Publish.Cleanup))

	orchestrator := service.NewOrchestrator(db, docRepo, claimRepo, jobRepo, objectStorage, extractor, appLogger,
		service.OrchestratorConfig{
			Workers:        cfg.Extraction.Workers,
			QueueSize:      cfg.Extraction.QueueSize,
			ExtractTimeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
			MinPageChars:   cfg.Extraction.MinPageChars,
			MaxPages:       cfg.Extraction.MaxPages,
			Prompt:         prompt,
		})
	orchestrator.Start()

	// Serve uploaded files directly when using local storage
	localFilesDir := ""
	if localStore, ok := objectStorage.(*storage.LocalStorage); ok {
		localFilesDir = localStore.Dir()
	}

	// Setup router
	router := api.SetupRouter(&api.RouterDeps{
		Documents:     documentService,
		Claims:        claimService,
		Publisher:     publishService,
		Orchestrator:  orchestrator,
		JobRepo:       jobRepo,
		Trust:         trustClient,
		Logger:        appLogger,
		LocalFilesDir: localFilesDir,
		Version:       version,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	}, cfg.Server.Mode)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	// Let in-flight extraction jobs record their outcome before exit.
	orchestrator.Stop()

	appLogger.Info("Server exited")
}
