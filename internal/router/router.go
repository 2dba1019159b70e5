package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/paeslab/ensayos-backend/internal/config"
	"github.com/paeslab/ensayos-backend/internal/handler"
	"github.com/paeslab/ensayos-backend/internal/middleware"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/response"
	"github.com/paeslab/ensayos-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	Window  *handler.WindowHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the admission route. Starting an attempt is the one
	// write with a quota behind it, so it gets its own bucket.
	startLimiter := middleware.NewRateLimiter(30, time.Minute)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))

	// ─── Student routes ────────────────────────────────────────────────
	student := api.Group("")
	student.Use(middleware.RequireCapability(model.CapabilityTakeExams))
	{
		student.GET("/lobby", handlers.Attempt.GetLobby)
		student.POST("/attempts", startLimiter.Middleware(), handlers.Attempt.StartAttempt)
		student.GET("/attempts", handlers.Attempt.ListMyAttempts)
		student.GET("/attempts/:attempt_id/paper", handlers.Attempt.GetPaper)
		student.PUT("/attempts/:attempt_id/answers", handlers.Attempt.SubmitAnswer)
		student.POST("/attempts/:attempt_id/finalize", handlers.Attempt.Finalize)
	}

	// Review is shared: the owning student and result-viewing staff.
	api.GET("/attempts/:attempt_id/review", handlers.Attempt.GetReview)

	// ─── Window scheduling (teachers and admins) ───────────────────────
	windows := api.Group("")
	windows.Use(middleware.RequireCapability(model.CapabilityManageWindows))
	{
		windows.POST("/exams/:exam_id/windows", handlers.Window.Create)
		windows.GET("/exams/:exam_id/windows", handlers.Window.List)
		windows.PUT("/windows/:window_id", handlers.Window.Update)
		windows.DELETE("/windows/:window_id", handlers.Window.Delete)
	}

	return router
}
