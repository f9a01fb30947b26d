package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/repository"
)

// ErrPageNotFound is returned when an operation names a page that does not exist
var ErrPageNotFound = errors.New("page not found")

// controlService is the concrete implementation of ControlService
type controlService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newControlService(repos *repository.Repositories, log zerolog.Logger) *controlService {
	return &controlService{
		repos: repos,
		log:   log.With().Str("service", "control").Logger(),
	}
}

// Status returns the override for a page, or ControlEnabled when there is none
func (s *controlService) Status(ctx context.Context, pageID int64) (models.ControlStatus, error) {
	override, err := s.repos.Control.Get(ctx, pageID)
	if err != nil {
		return models.ControlEnabled, err
	}
	if override == nil {
		return models.ControlEnabled, nil
	}
	return override.Status, nil
}

// SetStatus stores a page's status. Enabled is the default and is stored as no row at all.
func (s *controlService) SetStatus(ctx context.Context, pageID int64, status models.ControlStatus, performer models.Author) error {
	page, err := s.repos.Page.GetByID(ctx, pageID)
	if err != nil {
		return err
	}
	if page == nil {
		return ErrPageNotFound
	}

	if status == models.ControlEnabled {
		err = s.repos.Control.Delete(ctx, pageID)
	} else {
		err = s.repos.Control.Upsert(ctx, pageID, status)
	}
	if err != nil {
		return err
	}

	entry := &models.AuditEntry{
		Type:        "comments",
		Action:      "control",
		PerformerID: performer.ID,
		PageID:      pageID,
		Params:      map[string]any{"status": status.Key()},
	}
	if err := s.repos.Audit.Insert(ctx, entry); err != nil {
		s.log.Warn().Err(err).Int64("page_id", pageID).Msg("Failed to write control audit entry")
	}

	s.log.Info().
		Int64("page_id", pageID).
		Str("status", status.Key()).
		Int64("performer", performer.ID).
		Msg("Comment control updated")

	return nil
}

// ListOverrides returns all pages with a non-default status
func (s *controlService) ListOverrides(ctx context.Context) ([]models.ControlOverride, error) {
	return s.repos.Control.List(ctx)
}
