package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paeslab/ensayos-backend/internal/middleware"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/response"
	"github.com/paeslab/ensayos-backend/internal/service"
	"github.com/paeslab/ensayos-backend/internal/validator"
)

// WindowHandler handles rendition window scheduling.
type WindowHandler struct {
	windowService *service.WindowService
}

// NewWindowHandler creates a new WindowHandler.
func NewWindowHandler(windowService *service.WindowService) *WindowHandler {
	return &WindowHandler{windowService: windowService}
}

// Create godoc
// POST /api/v1/exams/:exam_id/windows
// Schedules a window for a windowed exam.
func (h *WindowHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateWindowRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	window, err := h.windowService.Create(c.Request.Context(), claims.UserID, claims.Role, examID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"window": window})
}

// List godoc
// GET /api/v1/exams/:exam_id/windows
// Returns all windows of an exam, earliest first.
func (h *WindowHandler) List(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	windows, err := h.windowService.ListByExam(c.Request.Context(), examID)
	if err != nil {
		failFromService(c, err)
		return
	}

	if windows == nil {
		windows = []model.Window{}
	}

	response.Success(c, http.StatusOK, gin.H{"windows": windows})
}

// Update godoc
// PUT /api/v1/windows/:window_id
// Reschedules a window.
func (h *WindowHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	windowID, err := uuid.Parse(c.Param("window_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateWindowRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	window, err := h.windowService.Update(c.Request.Context(), claims.UserID, claims.Role, windowID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"window": window})
}

// Delete godoc
// DELETE /api/v1/windows/:window_id
// Removes a window that has not admitted any attempts.
func (h *WindowHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	windowID, err := uuid.Parse(c.Param("window_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.windowService.Delete(c.Request.Context(), claims.UserID, claims.Role, windowID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
