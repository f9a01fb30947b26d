package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?include_deleted=...
// Streams the export document directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	includeDeleted := true
	if v := c.Query("include_deleted"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "include_deleted must be a boolean"})
			return
		}
		includeDeleted = parsed
	}

	h.log.Info().Bool("include_deleted", includeDeleted).Msg("Starting streaming export")

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="comments-export.json"`)
	c.Status(http.StatusOK)

	stats, err := h.services.Export.Export(ctx, c.Writer, includeDeleted)
	if err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}

	h.log.Info().
		Int("pages", stats.Pages).
		Int("comments", stats.Comments).
		Msg("Export completed")
}
