package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkedtrust/claim-extract/internal/service"
	"github.com/linkedtrust/claim-extract/internal/trustapi"
)

// ClaimHandler handles draft claim review and publication endpoints.
type ClaimHandler struct {
	claims    *service.ClaimService
	publisher *service.PublishService
	trust     *trustapi.Client
}

// NewClaimHandler creates a new claim handler.
// Parameters:
//   - claims: claim review service.
//   - publisher: publish service.
//   - trust: trust API client, used for validation lookups.
// Returns:
//   - *ClaimHandler: initialized handler.
func NewClaimHandler(claims *service.ClaimService, publisher *service.PublishService, trust *trustapi.Client) *ClaimHandler {
	return &ClaimHandler{
		claims:    claims,
		publisher: publisher,
		trust:     trust,
	}
}

// ListByDocument handles GET /api/v1/documents/:id/claims.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) ListByDocument(c *gin.Context) {
	claims, err := h.claims.ListByDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"claims": claims,
		"count":  len(claims),
	})
}

// Get handles GET /api/v1/claims/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.claims.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// Update handles PATCH /api/v1/claims/:id. Only the fields present in the
// body change; editing a published claim yields 409.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) Update(c *gin.Context) {
	var upd service.ClaimUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	claim, err := h.claims.Update(c.Request.Context(), c.Param("id"), &upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// Reject handles POST /api/v1/claims/:id/reject.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) Reject(c *gin.Context) {
	claim, err := h.claims.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// Publish handles POST /api/v1/claims/:id/publish.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) Publish(c *gin.Context) {
	result, err := h.publisher.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PublishAll handles POST /api/v1/documents/:id/publish. The response always
// carries both outcome lists; partial failure is a 200, not an error.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) PublishAll(c *gin.Context) {
	report, err := h.publisher.PublishAll(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Validations handles GET /api/v1/claims/:id/validations. It resolves the
// claim's remote URL and queries the trust graph for claims about it.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ClaimHandler) Validations(c *gin.Context) {
	claim, err := h.claims.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if claim.RemoteURL == "" {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Claim has not been published yet",
		})
		return
	}

	validations, err := h.trust.GetValidations(c.Request.Context(), claim.RemoteURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"claim_url":   claim.RemoteURL,
		"validations": validations,
		"count":       len(validations),
	})
}
