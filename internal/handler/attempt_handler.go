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

// AttemptHandler handles the student-facing attempt lifecycle: lobby,
// admission, answer submission, finalization and review.
type AttemptHandler struct {
	admissionService *service.AdmissionService
	sessionService   *service.SessionService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(
	admissionService *service.AdmissionService,
	sessionService *service.SessionService,
) *AttemptHandler {
	return &AttemptHandler{
		admissionService: admissionService,
		sessionService:   sessionService,
	}
}

// GetLobby godoc
// GET /api/v1/lobby
// Returns the exams the student could start right now.
func (h *AttemptHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lobby, err := h.sessionService.GetLobby(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	if lobby == nil {
		lobby = []model.LobbyEntry{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": lobby})
}

// StartAttempt godoc
// POST /api/v1/attempts
// Runs the admission sequence and creates the attempt when eligible. The
// body carries exactly one of exam_id (permanent) or window_id (windowed).
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.admissionService.StartAttempt(c.Request.Context(), claims.UserID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// GetPaper godoc
// GET /api/v1/attempts/:attempt_id/paper
// Returns the exam questions (without answer keys) plus the answers the
// student has already recorded, so an interrupted attempt can resume.
func (h *AttemptHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.sessionService.GetPaper(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// SubmitAnswer godoc
// PUT /api/v1/attempts/:attempt_id/answers
// Records or overwrites the answer to one question of the attempt.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.sessionService.SubmitAnswer(c.Request.Context(), claims.UserID, attemptID, req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// Finalize godoc
// POST /api/v1/attempts/:attempt_id/finalize
// Scores the attempt from its recorded answers. Safe to call again.
func (h *AttemptHandler) Finalize(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.sessionService.Finalize(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// ListMyAttempts godoc
// GET /api/v1/attempts
// Returns the student's attempts, most recent first.
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.sessionService.ListMyAttempts(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	if attempts == nil {
		attempts = []model.AttemptSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// GetReview godoc
// GET /api/v1/attempts/:attempt_id/review
// Returns the per-question breakdown with answer keys. The owning student
// and staff with result access may see it.
func (h *AttemptHandler) GetReview(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	review, err := h.sessionService.GetReview(c.Request.Context(), claims.UserID, claims.Role, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}
