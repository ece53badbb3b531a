package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/linkedtrust/claim-extract/internal/domain"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        domain.NewValidationError("unsupported file type %q", ".exe"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("document abc: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "already processing",
			err:        fmt.Errorf("job xyz still active: %w", domain.ErrAlreadyProcessing),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid state",
			err:        fmt.Errorf("claim abc is published: %w", domain.ErrInvalidState),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "remote 4xx passes through",
			err:        &domain.PublishError{StatusCode: 422, Message: "statement too vague"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "remote 5xx becomes bad gateway",
			err:        &domain.PublishError{StatusCode: 503, Message: "upstream down"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown error",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.Len() == 0 {
				t.Error("expected an error body")
			}
		})
	}
}
