package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paeslab/ensayos-backend/internal/response"
	"github.com/paeslab/ensayos-backend/internal/service"
)

// failFromService maps a service error onto the HTTP status and error code
// it corresponds to. Eligibility rejections are 403 (the caller may not do
// this now), state conflicts are 409 (the resource already rules it out).
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrWrongMode):
		response.Fail(c, http.StatusBadRequest, response.ErrWrongMode)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrOutsideWindow):
		response.Fail(c, http.StatusForbidden, response.ErrOutsideWindow)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrNotCohortTeacher):
		response.Fail(c, http.StatusForbidden, response.ErrNotCohortTeacher)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAlreadyAttempted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
	case errors.Is(err, service.ErrQuotaExceeded):
		response.Fail(c, http.StatusConflict, response.ErrQuotaExceeded)
	case errors.Is(err, service.ErrOverlappingWindow):
		response.Fail(c, http.StatusConflict, response.ErrOverlappingWindow)
	case errors.Is(err, service.ErrWindowInUse):
		response.Fail(c, http.StatusConflict, response.ErrWindowInUse)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
