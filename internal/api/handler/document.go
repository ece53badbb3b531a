package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linkedtrust/claim-extract/internal/service"
)

// DocumentHandler handles document upload and lifecycle endpoints.
type DocumentHandler struct {
	documents    *service.DocumentService
	orchestrator *service.Orchestrator
}

// NewDocumentHandler creates a new document handler.
// Parameters:
//   - documents: document service instance.
//   - orchestrator: extraction job orchestrator.
// Returns:
//   - *DocumentHandler: initialized handler.
func NewDocumentHandler(documents *service.DocumentService, orchestrator *service.Orchestrator) *DocumentHandler {
	return &DocumentHandler{
		documents:    documents,
		orchestrator: orchestrator,
	}
}

// Upload handles POST /api/v1/documents.
// Accepts a multipart form with the PDF under "file" plus optional
// effective_date (YYYY-MM-DD) and subject_url fields.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A file is required under the \"file\" form field",
		})
		return
	}

	effectiveDate := time.Now().UTC()
	if raw := c.PostForm("effective_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "effective_date must be formatted as YYYY-MM-DD",
			})
			return
		}
		effectiveDate = parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), &service.DocumentUpload{
		OriginalFilename: fileHeader.Filename,
		Size:             fileHeader.Size,
		Reader:           file,
		EffectiveDate:    effectiveDate,
		SubjectURL:       c.PostForm("subject_url"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	// Uploads auto-process unless the client opts out.
	if c.DefaultPostForm("process", "true") != "false" {
		jobID, err := h.orchestrator.Enqueue(c.Request.Context(), doc.ID)
		if err != nil {
			// The document exists even though scheduling failed. Surface the
			// cause so the client knows to retry via the process endpoint.
			c.JSON(http.StatusCreated, gin.H{"document": doc, "process_error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"document": doc, "job_id": jobID})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// List handles GET /api/v1/documents.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.documents.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"count":     len(docs),
		"limit":     limit,
		"offset":    offset,
	})
}

// Get handles GET /api/v1/documents/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DocumentHandler) Get(c *gin.Context) {
	detail, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /api/v1/documents/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Process handles POST /api/v1/documents/:id/process and
// POST /api/v1/documents/:id/reprocess. Both schedule an extraction job; an
// active job yields 409.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DocumentHandler) Process(c *gin.Context) {
	jobID, err := h.orchestrator.Enqueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "pending",
	})
}
