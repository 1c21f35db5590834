// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/playertrack-api/internal/config"
	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/handlers"
	"github.com/Shimizu-Technology/playertrack-api/internal/metrics"
	"github.com/Shimizu-Technology/playertrack-api/internal/middleware"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/worker"
)

// Setup creates and configures the Gin router with all routes.
func Setup(db *database.DB, wp *worker.Pool, m *metrics.Manager, cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(m))

	h := handlers.NewHandler(db, wp, cfg.MaxUploadBytes())
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRateLimit)

	// --- Public Routes ---
	r.GET("/api/v1/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	api := r.Group("/api/v1")
	{
		// Ingestion
		api.POST("/reports", uploadLimiter.RateLimit(), h.UploadReports)
		api.GET("/jobs", h.ListJobs)
		api.GET("/jobs/:id", h.GetJob)

		// Dashboard queries
		api.GET("/performances", h.ListPerformances)
		api.GET("/players", h.ListPlayers)
	}

	// --- Admin Routes (X-Admin-Key or admin JWT) ---
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AdminAuth(cfg.AdminKeyHash, cfg.JWTSecret))
	{
		admin.POST("/reset", h.ResetStore)
	}

	return r
}
