package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/service"
)

// ControlHandler handles per-page comment control
type ControlHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewControlHandler creates a new ControlHandler
func NewControlHandler(services *service.Services, log zerolog.Logger) *ControlHandler {
	return &ControlHandler{
		services: services,
		log:      log.With().Str("handler", "control").Logger(),
	}
}

type controlRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetStatus handles GET /v1/pages/:page_id/control
func (h *ControlHandler) GetStatus(c *gin.Context) {
	pageID, ok := pageIDParam(c)
	if !ok {
		return
	}

	status, err := h.services.Control.Status(c.Request.Context(), pageID)
	if err != nil {
		h.log.Error().Err(err).Int64("page_id", pageID).Msg("Failed to get control status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get control status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page_id":        pageID,
		"status":         status.Key(),
		"accepts_new":    status.AllowsSubmission(),
		"thread_visible": status.ThreadVisible(),
	})
}

// SetStatus handles PUT /v1/pages/:page_id/control
func (h *ControlHandler) SetStatus(c *gin.Context) {
	pageID, ok := pageIDParam(c)
	if !ok {
		return
	}

	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	status, err := models.ControlStatusFromKey(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	performer, _ := currentAuthor(c)
	if err := h.services.Control.SetStatus(c.Request.Context(), pageID, status, performer); err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
			return
		}
		h.log.Error().Err(err).Int64("page_id", pageID).Msg("Failed to set control status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set control status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page_id": pageID, "status": status.Key()})
}

// ListOverrides handles GET /v1/control
func (h *ControlHandler) ListOverrides(c *gin.Context) {
	overrides, err := h.services.Control.ListOverrides(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list control overrides")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list overrides"})
		return
	}
	if overrides == nil {
		overrides = []models.ControlOverride{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(overrides), "overrides": overrides})
}

func pageIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("page_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_id must be a positive integer"})
		return 0, false
	}
	return id, true
}
