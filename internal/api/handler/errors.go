package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkedtrust/claim-extract/internal/domain"
)

// writeError maps domain errors to HTTP status codes and writes the JSON
// error body. Unrecognized errors become a 500.
func writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var publishErr *domain.PublishError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyProcessing), errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &publishErr):
		// Remote rejections keep their message verbatim. 4xx from the trust
		// API means our payload was refused; everything else is a gateway
		// failure.
		status := http.StatusBadGateway
		if publishErr.StatusCode >= 400 && publishErr.StatusCode < 500 {
			status = publishErr.StatusCode
		}
		c.JSON(status, gin.H{"error": publishErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
