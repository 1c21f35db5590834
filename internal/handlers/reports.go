// reports.go handles report upload and the read-only query endpoints.
//
// POST /api/v1/reports       - upload one or more report PDFs (field "files")
// GET  /api/v1/performances  - every stored record with its player's name
// GET  /api/v1/players       - the player registry
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/ingest"
	"github.com/Shimizu-Technology/playertrack-api/internal/services/worker"
)

// maxFilesPerUpload caps one upload request.
const maxFilesPerUpload = 20

// UploadReports queues the uploaded files as one ingestion job.
// POST /api/v1/reports[?async=true]
//
// By default the request waits for the worker and returns every file's
// outcome. Failed and duplicate files do not fail the request. With
// async=true it returns 202 and the job id to poll at GET /api/v1/jobs/:id.
func (h *Handler) UploadReports(c *gin.Context) {
	// Limit the whole body to what the largest allowed upload can be
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes*maxFilesPerUpload)

	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request",
			"Upload report PDFs as multipart/form-data with the field name 'files'.")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		writeError(c, http.StatusBadRequest, "invalid_request", "No files provided. Use the field name 'files'.")
		return
	}
	if len(headers) > maxFilesPerUpload {
		writeError(c, http.StatusBadRequest, "too_many_files",
			fmt.Sprintf("Maximum %d files per upload", maxFilesPerUpload))
		return
	}

	// Validate every file before queuing any of them.
	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.MaxUploadBytes {
			writeError(c, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("%s exceeds the %d MB per-file limit", fh.Filename, h.MaxUploadBytes>>20))
			return
		}
		data, err := readUpload(fh)
		if err != nil {
			writeError(c, http.StatusBadRequest, "read_error", "Failed to read "+fh.Filename)
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	job, err := h.Worker.Submit(c.Request.Context(), "upload", files)
	if err != nil {
		if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrStopped) {
			writeError(c, http.StatusServiceUnavailable, "queue_unavailable", err.Error())
			return
		}
		log.Printf("❌ Failed to queue upload: %v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to queue upload")
		return
	}

	if c.Query("async") == "true" {
		c.JSON(http.StatusAccepted, models.UploadResponse{JobID: job.ID, Status: models.JobPending})
		return
	}

	results, err := job.Wait(c.Request.Context())
	if err != nil {
		// Client went away; the job still completes in the background.
		log.Printf("⚠️  Upload request ended before job %s finished: %v", job.ID, err)
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		JobID:   job.ID,
		Status:  models.FinishedStatus(results),
		Results: results,
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ListPerformances returns every stored record in insertion order.
// GET /api/v1/performances
func (h *Handler) ListPerformances(c *gin.Context) {
	rows, err := h.DB.QueryAll(c.Request.Context())
	if err != nil {
		log.Printf("❌ Failed to query performances: %v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to query performances")
		return
	}
	if rows == nil {
		rows = []models.PerformanceRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// ListPlayers returns the player registry.
// GET /api/v1/players
func (h *Handler) ListPlayers(c *gin.Context) {
	players, err := h.DB.ListPlayers(c.Request.Context())
	if err != nil {
		log.Printf("❌ Failed to list players: %v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to list players")
		return
	}
	if players == nil {
		players = []models.Player{}
	}
	c.JSON(http.StatusOK, players)
}
