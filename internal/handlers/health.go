// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides request
// data and response methods. We group handlers into a struct (Handler) that
// holds shared dependencies.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/models"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/worker"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Tests build a Handler
// over a temp SQLite store and a worker with a stub ingester.
type Handler struct {
	DB             *database.DB
	Worker         *worker.Pool
	MaxUploadBytes int64 // per file
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(db *database.DB, wp *worker.Pool, maxUploadBytes int64) *Handler {
	return &Handler{
		DB:             db,
		Worker:         wp,
		MaxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	// Check database connectivity
	dbStatus := "healthy"
	count := 0
	if err := h.DB.HealthCheck(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	} else if n, err := h.DB.CountPerformances(ctx); err == nil {
		count = n
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:       "ok",
		Version:      Version,
		Database:     dbStatus,
		QueueSize:    h.Worker.QueueSize(),
		Performances: count,
	})
}

// writeError sends the standard error body.
func writeError(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, models.ErrorResponse{
		Error:   errCode,
		Message: message,
		Code:    code,
	})
}
