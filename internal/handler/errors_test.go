package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paeslab/ensayos-backend/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestFailFromService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{service.ErrWrongMode, http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrOutsideWindow, http.StatusForbidden},
		{service.ErrNotEnrolled, http.StatusForbidden},
		{service.ErrNotCohortTeacher, http.StatusForbidden},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrAlreadyAttempted, http.StatusConflict},
		{service.ErrQuotaExceeded, http.StatusConflict},
		{service.ErrOverlappingWindow, http.StatusConflict},
		{service.ErrWindowInUse, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
		// Wrapped errors map the same as bare ones.
		{fmt.Errorf("window abc: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("input: %w", service.ErrValidation), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			failFromService(c, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}
