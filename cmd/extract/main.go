package main

import (
	"context"
	"flag"
	"time"

	"github.com/linkedtrust/claim-extract/internal/config"
	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/extraction"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/prompts"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/service"
	"github.com/linkedtrust/claim-extract/internal/storage"
)

// Command-line extraction runner. Processes one already-uploaded document
// synchronously, which is handy for debugging prompts and for backfilling
// documents whose extraction failed.
func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "claim-extract-cli",
	})
	logger.SetDefault(appLogger)

	// Parse command line flags
	documentID := flag.String("document", "", "Document ID to process")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *documentID == "" {
		appLogger.Fatal("A document ID is required: -document <id>")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

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

	prompt, err := prompts.Load(cfg.Extraction.PromptFile, cfg.Extraction.PromptDir)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load extraction prompt")
	}

	extractor := extraction.NewClient(&extraction.Config{
		Model:   cfg.Extraction.Model,
		APIKey:  cfg.Extraction.APIKey,
		BaseURL: cfg.Extraction.BaseURL,
		Timeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
	})

	orchestrator := service.NewOrchestrator(db, docRepo, claimRepo, jobRepo, objectStorage, extractor, appLogger,
		service.OrchestratorConfig{
			Workers:        1,
			ExtractTimeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
			MinPageChars:   cfg.Extraction.MinPageChars,
			MaxPages:       cfg.Extraction.MaxPages,
			Prompt:         prompt,
		})

	appLogger.WithField(logger.FieldDocumentID, *documentID).Info("Starting extraction")

	job, err := orchestrator.RunSync(context.Background(), *documentID)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to schedule extraction")
	}

	fields := logger.Fields{
		logger.FieldJobID:  job.ID,
		logger.FieldStatus: job.Status,
	}
	if job.Status == domain.JobStatusSuccess {
		fields[logger.FieldCount] = job.ClaimsFound
		appLogger.WithFields(fields).Info("Extraction completed")
	} else {
		appLogger.WithFields(fields).WithField("error", job.ErrorMessage).Error("Extraction failed")
	}
}
