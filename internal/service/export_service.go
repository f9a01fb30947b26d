package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/jsonstream"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/repository"
)

const defaultExportFlushEvery = 100

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos      *repository.Repositories
	flushEvery int
	log        zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, flushEvery int, log zerolog.Logger) *exportService {
	if flushEvery <= 0 {
		flushEvery = defaultExportFlushEvery
	}
	return &exportService{
		repos:      repos,
		flushEvery: flushEvery,
		log:        log.With().Str("service", "export").Logger(),
	}
}

// Export writes every comment as a JSON array of page-groups. Rows arrive ordered by
// page id, so a group is opened on the first row of a page and closed when the page changes.
func (s *exportService) Export(ctx context.Context, w io.Writer, includeDeleted bool) (*models.ExportStats, error) {
	s.log.Info().Bool("include_deleted", includeDeleted).Msg("Starting comments export")

	jw := jsonstream.NewWriter(w)
	stats := &models.ExportStats{}
	var current int64
	open := false

	if err := jw.BeginArray(); err != nil {
		return stats, err
	}

	err := s.repos.Comment.StreamForExport(ctx, includeDeleted, func(row *models.ExportRow) error {
		if !open || row.Page.ID != current {
			if open {
				if err := closeGroup(jw); err != nil {
					return err
				}
			}
			if err := openGroup(jw, &row.Page); err != nil {
				return err
			}
			current = row.Page.ID
			open = true
			stats.Pages++
		}

		if err := jw.Value(exportComment(row)); err != nil {
			return err
		}
		stats.Comments++

		if stats.Comments%s.flushEvery == 0 {
			return jw.Flush()
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("comments", stats.Comments).Msg("Comments export aborted")
		return stats, fmt.Errorf("export failed: %w", err)
	}

	if open {
		if err := closeGroup(jw); err != nil {
			return stats, err
		}
	}
	if err := jw.EndArray(); err != nil {
		return stats, err
	}
	if err := jw.Close(); err != nil {
		return stats, err
	}

	s.log.Info().Int("pages", stats.Pages).Int("comments", stats.Comments).Msg("Comments export completed")
	return stats, nil
}

func openGroup(jw *jsonstream.Writer, page *models.Page) error {
	if err := jw.BeginObject(); err != nil {
		return err
	}
	if err := jw.Member("page", models.ExportPage{Title: page.Title, NS: page.Namespace, ID: page.ID}); err != nil {
		return err
	}
	if err := jw.Key("comments"); err != nil {
		return err
	}
	return jw.BeginArray()
}

func closeGroup(jw *jsonstream.Writer) error {
	if err := jw.EndArray(); err != nil {
		return err
	}
	return jw.EndObject()
}

// exportComment builds the exported form of a row. Account authors are named by their
// current display name, anonymous ones by the stored free-text name.
func exportComment(row *models.ExportRow) models.ExportComment {
	c := &row.Comment
	username := c.Username
	if c.ActorID != 0 && row.ActorName != "" {
		username = row.ActorName
	}

	out := models.ExportComment{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Timestamp: models.FormatTimestamp(c.CreatedAt),
		Wikitext:  c.Wikitext,
		Username:  username,
	}
	if c.EditedAt != nil {
		edited := models.FormatTimestamp(*c.EditedAt)
		out.EditedTimestamp = &edited
	}
	return out
}

// GetCounts returns row counts for the metrics endpoint
func (s *exportService) GetCounts(ctx context.Context) (map[string]int, error) {
	comments, err := s.repos.Comment.Count(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := s.repos.Page.Count(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := s.repos.Control.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"comments":          comments,
		"pages":             pages,
		"control_overrides": len(overrides),
	}, nil
}
