// jobs.go exposes the ingestion job log.
//
// GET /api/v1/jobs      - most recent jobs first (?limit=, max 100)
// GET /api/v1/jobs/:id  - one job with its outcome counters
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/playertrack-api/internal/database"
	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// GetJob returns one ingestion job.
// GET /api/v1/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.DB.GetJob(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrJobNotFound) {
		writeError(c, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if err != nil {
		log.Printf("❌ Failed to get job: %v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to get job")
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobs returns recent ingestion jobs.
// GET /api/v1/jobs
func (h *Handler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.DB.ListJobs(c.Request.Context(), limit)
	if err != nil {
		log.Printf("❌ Failed to list jobs: %v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []models.IngestJob{}
	}
	c.JSON(http.StatusOK, jobs)
}
