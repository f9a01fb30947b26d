package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/namespace"
	"github.com/page-comments-api/internal/render"
	"github.com/page-comments-api/internal/repository"
	"github.com/page-comments-api/internal/spam"
	"github.com/page-comments-api/internal/validation"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	repos      *repository.Repositories
	control    ControlService
	ns         *namespace.Registry
	renderer   render.Renderer
	spam       spam.Checker
	resolver   *RecipientResolver
	dispatcher *Dispatcher
	log        zerolog.Logger
}

func newCommentService(repos *repository.Repositories, control ControlService, deps Dependencies, resolver *RecipientResolver, dispatcher *Dispatcher, log zerolog.Logger) *commentService {
	return &commentService{
		repos:      repos,
		control:    control,
		ns:         deps.Namespaces,
		renderer:   deps.Renderer,
		spam:       deps.Spam,
		resolver:   resolver,
		dispatcher: dispatcher,
		log:        log.With().Str("service", "comment").Logger(),
	}
}

// Submit validates, stores and announces a new comment.
// Rejections are returned as *SubmitError or ErrSpamRejected; nothing is stored in that case.
func (s *commentService) Submit(ctx context.Context, author models.Author, req *models.SubmitRequest) (*models.Comment, error) {
	if reason := validation.CheckSubmission(req); reason != validation.ReasonNone {
		return nil, newSubmitError(reason)
	}

	var parent *models.Comment
	pageID := req.PageID
	if req.ParentID != 0 {
		p, err := s.repos.Comment.GetByID(ctx, req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent comment: %w", err)
		}
		if reason := validation.CheckParent(p); reason != validation.ReasonNone {
			return nil, newSubmitError(reason)
		}
		parent = p
		pageID = p.PageID
	}

	page, err := s.repos.Page.GetByID(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	status := models.ControlEnabled
	enabled := false
	if page != nil {
		if status, err = s.control.Status(ctx, page.ID); err != nil {
			return nil, fmt.Errorf("failed to load comment control: %w", err)
		}
		enabled = s.ns.CommentsEnabled(page)
	}
	if reason := validation.CheckTarget(page, status, enabled); reason != validation.ReasonNone {
		return nil, newSubmitError(reason)
	}

	comment := &models.Comment{
		PageID:    page.ID,
		CreatedAt: time.Now().UTC(),
	}
	if parent != nil {
		id := parent.ID
		comment.ParentID = &id
	}
	comment.SetAuthor(author)

	result, err := s.prepareContent(ctx, comment, req, page)
	if err != nil {
		return nil, err
	}

	isSpam, err := s.spam.Check(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("spam check failed: %w", err)
	}
	if isSpam {
		s.log.Info().Int64("page_id", page.ID).Str("author", author.Name).Msg("Comment rejected as spam")
		return nil, ErrSpamRejected
	}

	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	s.log.Info().
		Int64("comment_id", comment.ID).
		Int64("page_id", page.ID).
		Bool("reply", parent != nil).
		Msg("Comment submitted")

	recipients := s.resolver.Resolve(ctx, author, parent, page, result.UserLinks())
	if len(recipients) > 0 {
		sent := s.dispatcher.Dispatch(ctx, comment, page, author, recipients)
		s.log.Debug().Int64("comment_id", comment.ID).Int("recipients", len(recipients)).Int("sent", sent).Msg("Notifications dispatched")
	}

	return comment, nil
}

// prepareContent fills the comment's wikitext and HTML from the request. Wikitext input
// is rendered; HTML input is sanitized, stored as is, and converted to wikitext.
func (s *commentService) prepareContent(ctx context.Context, c *models.Comment, req *models.SubmitRequest, page *models.Page) (*render.Result, error) {
	if req.Wikitext != "" {
		result, err := s.renderer.Render(ctx, req.Wikitext, page)
		if err != nil {
			return nil, fmt.Errorf("failed to render comment: %w", err)
		}
		c.Wikitext = req.Wikitext
		c.HTML = result.HTML
		return result, nil
	}

	clean := s.renderer.Sanitize(req.HTML)
	wikitext, err := s.renderer.HTMLToWikitext(ctx, clean, page)
	if err != nil {
		return nil, fmt.Errorf("failed to convert comment html: %w", err)
	}
	result, err := s.renderer.Render(ctx, wikitext, page)
	if err != nil {
		return nil, fmt.Errorf("failed to render comment: %w", err)
	}
	c.Wikitext = wikitext
	c.HTML = clean
	return result, nil
}
