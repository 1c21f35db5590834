package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/playertrack-api/internal/middleware"
	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// ResetStore deletes every player and performance record.
// POST /api/v1/admin/reset (admin auth required)
//
// This replaces the old start-up reset switch: it only ever runs when an
// administrator asks for it.
func (h *Handler) ResetStore(c *gin.Context) {
	if err := h.DB.ResetAll(c.Request.Context()); err != nil {
		log.Printf("❌ Reset failed: %v", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "Failed to reset the record store")
		return
	}
	log.Printf("🧹 Record store reset by %s", middleware.AdminSubject(c))
	c.JSON(http.StatusOK, models.ResetResponse{Status: "reset"})
}
