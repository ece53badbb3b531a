package api

import (
	"github.com/gin-gonic/gin"
	"github.com/linkedtrust/claim-extract/internal/api/handler"
	"github.com/linkedtrust/claim-extract/internal/api/middleware"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/service"
	"github.com/linkedtrust/claim-extract/internal/trustapi"
)

// RouterDeps bundles the services the HTTP surface needs.
type RouterDeps struct {
	Documents    *service.DocumentService
	Claims       *service.ClaimService
	Publisher    *service.PublishService
	Orchestrator *service.Orchestrator
	JobRepo      *repository.JobRepository
	Trust        *trustapi.Client
	Logger       *logger.Logger

	// LocalFilesDir, when set, is served under /files so locally stored
	// documents have a reachable public URL.
	LocalFilesDir string

	Version string
	CORS    middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps *RouterDeps, mode string) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Logger))
	r.Use(middleware.CORS(deps.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler(deps.Version)
	documentHandler := handler.NewDocumentHandler(deps.Documents, deps.Orchestrator)
	claimHandler := handler.NewClaimHandler(deps.Claims, deps.Publisher, deps.Trust)
	jobHandler := handler.NewJobHandler(deps.JobRepo)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Locally stored documents
	if deps.LocalFilesDir != "" {
		r.Static("/files", deps.LocalFilesDir)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Documents
		v1.POST("/documents", documentHandler.Upload)
		v1.GET("/documents", documentHandler.List)
		v1.GET("/documents/:id", documentHandler.Get)
		v1.DELETE("/documents/:id", documentHandler.Delete)
		v1.POST("/documents/:id/process", documentHandler.Process)
		v1.POST("/documents/:id/reprocess", documentHandler.Process)

		// Claims
		v1.GET("/documents/:id/claims", claimHandler.ListByDocument)
		v1.POST("/documents/:id/publish", claimHandler.PublishAll)
		v1.GET("/claims/:id", claimHandler.Get)
		v1.PATCH("/claims/:id", claimHandler.Update)
		v1.POST("/claims/:id/reject", claimHandler.Reject)
		v1.POST("/claims/:id/publish", claimHandler.Publish)
		v1.GET("/claims/:id/validations", claimHandler.Validations)

		// Jobs
		v1.GET("/jobs", jobHandler.List)
		v1.GET("/jobs/:id", jobHandler.Get)
	}

	return r
}
