package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/service"
)

// CommentHandler handles comment submission
type CommentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// Submit handles POST /v1/comments
func (h *CommentHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	author, ok := currentAuthor(c)
	if !ok {
		if !h.cfg.Comments.AnonymousByAddress {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		author = models.Author{Name: c.ClientIP()}
	}

	comment, err := h.services.Comment.Submit(c.Request.Context(), author, &req)
	if err != nil {
		if se, ok := service.AsSubmitError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": se.Reason, "message": se.Detail})
			return
		}
		if errors.Is(err, service.ErrSpamRejected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "spam"})
			return
		}
		h.log.Error().Err(err).Msg("Comment submission failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": models.NewCommentResponse(comment, author.Name)})
}
