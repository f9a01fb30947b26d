package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/namespace"
	"github.com/page-comments-api/internal/render"
	"github.com/page-comments-api/internal/repository"
	"github.com/page-comments-api/internal/validation"
)

// ImportOptions control how an import document is applied
type ImportOptions struct {
	SkipExisting bool
	AttachUsers  bool
	PerformerID  int64
}

// importService is the concrete implementation of ImportService
type importService struct {
	repos    *repository.Repositories
	ns       *namespace.Registry
	renderer render.Renderer
	cfg      *config.Config
	log      zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, deps Dependencies, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		repos:    repos,
		ns:       deps.Namespaces,
		renderer: deps.Renderer,
		cfg:      cfg,
		log:      log.With().Str("service", "import").Logger(),
	}
}

// CreateImportJob creates a new import job
func (s *importService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
	job := &models.Job{
		ID:             uuid.New().String(),
		Type:           models.JobTypeImport,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		SkipExisting:   req.SkipExisting,
		AttachUsers:    req.AttachUsers,
		PerformerID:    req.PerformerID,
		FilePath:       filePath,
		CreatedAt:      time.Now(),
	}

	if err := s.repos.Job.Create(ctx, job); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID).
		Bool("skip_existing", job.SkipExisting).
		Bool("attach_users", job.AttachUsers).
		Str("file", filePath).
		Msg("Import job created")

	return job, nil
}

// ProcessImport runs an import job against its uploaded file
func (s *importService) ProcessImport(ctx context.Context, job *models.Job) error {
	// Job bookkeeping must still be written when the processor is stopped mid-import
	storeCtx := context.WithoutCancel(ctx)

	startTime := time.Now()
	now := startTime
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	if err := s.repos.Job.Update(storeCtx, job); err != nil {
		s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to mark job as processing")
	}

	s.log.Info().Str("job_id", job.ID).Msg("Starting import processing")

	sink := newJobNoticeSink(storeCtx, job.ID, s.repos.Job, s.cfg.Import.NoticeFlushSize, s.log)
	summary, err := s.importFile(ctx, job, sink)
	sink.Flush()

	if summary != nil {
		job.ApplySummary(*summary)
	}
	job.DurationMs = time.Since(startTime).Milliseconds()
	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = err.Error()
		if errors.Is(err, context.Canceled) {
			job.ErrorMessage = "import interrupted by shutdown"
		}
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import failed")
	} else {
		job.Status = models.JobStatusCompleted
		s.log.Info().
			Str("job_id", job.ID).
			Int("pages", job.PageCount).
			Int("imported", job.ImportedCount).
			Int("skipped", job.SkippedCount).
			Int("failed", job.FailedCount).
			Int64("duration_ms", job.DurationMs).
			Msg("Import completed")
	}

	if uerr := s.repos.Job.Update(storeCtx, job); uerr != nil {
		s.log.Error().Err(uerr).Str("job_id", job.ID).Msg("Failed to store job result")
	}

	return err
}

func (s *importService) importFile(ctx context.Context, job *models.Job, sink NoticeSink) (*models.ImportSummary, error) {
	file, err := os.Open(job.FilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	opts := ImportOptions{
		SkipExisting: job.SkipExisting,
		AttachUsers:  job.AttachUsers,
		PerformerID:  job.PerformerID,
	}
	return s.ImportDocument(ctx, file, opts, sink)
}

// pageGroup is the state of one page-group while it is being read
type pageGroup struct {
	label        string
	pageSeen     bool
	page         *models.Page
	reject       string
	commentsSeen bool
	count        int
	buffered     []json.RawMessage
	idMap        map[int64]int64
	existing     map[string]struct{}
	summary      models.ImportSummary
}

// ImportDocument applies an export document. Comments are read and stored one at a time;
// failures are counted per comment and never abort the rest of the document. A document
// that is not a JSON array of page-groups returns ErrInvalidDocument with the counts so far.
func (s *importService) ImportDocument(ctx context.Context, r io.Reader, opts ImportOptions, sink NoticeSink) (*models.ImportSummary, error) {
	if sink == nil {
		sink = discardNotices{}
	}
	total := &models.ImportSummary{}
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return total, invalidDocument(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return total, fmt.Errorf("%w: document must be an array of page groups", ErrInvalidDocument)
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		g, err := s.readGroup(ctx, dec, opts, sink)
		if g != nil {
			total.Add(g.summary)
		}
		if err != nil {
			return total, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return total, invalidDocument(err)
	}

	sink.Notice("", fmt.Sprintf("Import finished: %d imported, %d skipped, %d failed", total.Imported, total.Skipped, total.Failed))
	s.log.Info().
		Int("pages", total.Pages).
		Int("imported", total.Imported).
		Int("skipped", total.Skipped).
		Int("failed", total.Failed).
		Msg("Import document processed")

	return total, nil
}

// readGroup reads one element of the top-level array
func (s *importService) readGroup(ctx context.Context, dec *json.Decoder, opts ImportOptions, sink NoticeSink) (*pageGroup, error) {
	g := &pageGroup{}

	tok, err := dec.Token()
	if err != nil {
		return g, invalidDocument(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		if err := skipValue(dec, tok); err != nil {
			return g, invalidDocument(err)
		}
		g.summary.Failed++
		sink.Notice("", "Skipped an entry that is not a page group")
		return g, nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return g, invalidDocument(err)
		}
		key, _ := keyTok.(string)

		switch key {
		case "page":
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return g, invalidDocument(err)
			}
			if err := s.resolvePage(ctx, g, raw, opts); err != nil {
				return g, err
			}
			if g.page != nil {
				for _, c := range g.buffered {
					s.importComment(ctx, g, c, opts, sink)
				}
			}
			g.buffered = nil

		case "comments":
			tok, err := dec.Token()
			if err != nil {
				return g, invalidDocument(err)
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				if err := skipValue(dec, tok); err != nil {
					return g, invalidDocument(err)
				}
				continue
			}
			g.commentsSeen = true
			for dec.More() {
				var raw json.RawMessage
				if err := dec.Decode(&raw); err != nil {
					return g, invalidDocument(err)
				}
				g.count++
				switch {
				case !g.pageSeen:
					g.buffered = append(g.buffered, raw)
				case g.page != nil:
					s.importComment(ctx, g, raw, opts, sink)
				}
			}
			if _, err := dec.Token(); err != nil {
				return g, invalidDocument(err)
			}

		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return g, invalidDocument(err)
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return g, invalidDocument(err)
	}

	s.finishGroup(ctx, g, opts, sink)
	return g, nil
}

// resolvePage validates the page header and looks the page up locally
func (s *importService) resolvePage(ctx context.Context, g *pageGroup, raw json.RawMessage, opts ImportOptions) error {
	g.pageSeen = true

	var ip models.ImportPage
	if err := json.Unmarshal(raw, &ip); err != nil || string(raw) == "null" {
		g.reject = "invalid page"
		return nil
	}
	if errs := validation.ValidateImportPage(&ip); len(errs) > 0 {
		g.reject = errs[0].Message
		return nil
	}

	title := strings.TrimSpace(*ip.Title)
	g.label = title
	ns := namespace.Main
	if ip.NS != nil {
		ns = *ip.NS
	}

	page, err := s.repos.Page.GetByTitle(ctx, ns, title)
	if err != nil {
		return fmt.Errorf("failed to look up page %q: %w", title, err)
	}
	if page == nil && ip.NS == nil {
		if pns, ptitle := s.ns.Parse(title); pns != namespace.Main {
			if page, err = s.repos.Page.GetByTitle(ctx, pns, ptitle); err != nil {
				return fmt.Errorf("failed to look up page %q: %w", title, err)
			}
		}
	}
	if page == nil {
		g.reject = "page does not exist"
		return nil
	}

	g.page = page
	g.label = s.ns.PrefixedText(page)
	g.idMap = make(map[int64]int64)
	g.summary.Pages = 1

	if opts.SkipExisting {
		existing, err := s.repos.Comment.ExistingTimestamps(ctx, page.ID)
		if err != nil {
			return fmt.Errorf("failed to load existing comments for %q: %w", g.label, err)
		}
		g.existing = existing
	}
	return nil
}

// importComment stores one comment of a resolved page
func (s *importService) importComment(ctx context.Context, g *pageGroup, raw json.RawMessage, opts ImportOptions, sink NoticeSink) {
	var ic models.ImportComment
	if err := json.Unmarshal(raw, &ic); err != nil {
		g.summary.Failed++
		sink.Notice(g.label, fmt.Sprintf("Unreadable comment: %v", err))
		return
	}
	if ic.ID == nil || *ic.ID == 0 {
		g.summary.Failed++
		return
	}
	oldID := *ic.ID

	if g.existing != nil {
		if _, ok := g.existing[ic.Timestamp]; ok {
			g.summary.Skipped++
			return
		}
	}

	if errs := validation.ValidateImportComment(&ic); len(errs) > 0 {
		g.summary.Failed++
		sink.Notice(g.label, fmt.Sprintf("Comment %d: %s %s", oldID, errs[0].Field, errs[0].Message))
		return
	}

	comment := &models.Comment{PageID: g.page.ID}
	if ic.ParentID != nil {
		if newID, ok := g.idMap[*ic.ParentID]; ok {
			comment.ParentID = &newID
		}
	}

	result, err := s.renderer.Render(ctx, ic.Wikitext, g.page)
	if err != nil {
		g.summary.Failed++
		sink.Notice(g.label, fmt.Sprintf("Comment %d could not be rendered: %v", oldID, err))
		return
	}
	comment.Wikitext = ic.Wikitext
	comment.HTML = result.HTML

	author := models.Author{}
	if ic.Username != nil {
		author.Name = *ic.Username
	}
	if opts.AttachUsers && author.Name != "" {
		u, err := s.repos.User.GetByName(ctx, author.Name)
		if err != nil {
			s.log.Warn().Err(err).Str("user", author.Name).Msg("User lookup failed, keeping name")
		} else if u != nil {
			author = u.Author()
		}
	}
	comment.SetAuthor(author)

	comment.CreatedAt = time.Now().UTC()
	if ic.Timestamp != "" {
		comment.CreatedAt, _ = models.ParseTimestamp(ic.Timestamp)
	}
	if ic.EditedTimestamp != nil && *ic.EditedTimestamp != "" {
		edited, _ := models.ParseTimestamp(*ic.EditedTimestamp)
		comment.EditedAt = &edited
	}

	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		g.summary.Failed++
		sink.Notice(g.label, fmt.Sprintf("Comment %d could not be stored: %v", oldID, err))
		s.log.Error().Err(err).Int64("page_id", g.page.ID).Int64("source_id", oldID).Msg("Failed to store imported comment")
		return
	}

	g.idMap[oldID] = comment.ID
	g.summary.Imported++
}

// finishGroup applies group-level rejection, writes the audit entry and emits the page notices
func (s *importService) finishGroup(ctx context.Context, g *pageGroup, opts ImportOptions, sink NoticeSink) {
	switch {
	case !g.pageSeen:
		g.reject = "page is missing"
	case !g.commentsSeen && g.reject == "":
		g.reject = "comments are missing"
	}

	if g.reject != "" {
		failed := g.count
		if failed == 0 {
			failed = 1
		}
		g.summary = models.ImportSummary{Failed: failed}
		sink.Notice(g.label, fmt.Sprintf("Page group rejected (%s): %d comments not imported", g.reject, g.count))
		s.log.Warn().Str("page", g.label).Str("reason", g.reject).Int("comments", g.count).Msg("Import page group rejected")
		return
	}

	if g.summary.Imported > 0 {
		entry := &models.AuditEntry{
			Type:        "comments",
			Action:      "import",
			PerformerID: opts.PerformerID,
			PageID:      g.page.ID,
			Params:      map[string]any{"count": g.summary.Imported},
		}
		if err := s.repos.Audit.Insert(ctx, entry); err != nil {
			s.log.Warn().Err(err).Int64("page_id", g.page.ID).Msg("Failed to write import audit entry")
		}
		sink.Notice(g.label, fmt.Sprintf("%d comments imported", g.summary.Imported))
	}
	if g.summary.Skipped > 0 {
		sink.Notice(g.label, fmt.Sprintf("%d comments skipped, already present", g.summary.Skipped))
	}
	if g.summary.Failed > 0 {
		sink.Notice(g.label, fmt.Sprintf("%d comments failed", g.summary.Failed))
	}
	if g.count == 0 {
		sink.Notice(g.label, "No comments to import")
	}
}

// skipValue consumes the rest of a value whose first token has already been read
func skipValue(dec *json.Decoder, first json.Token) error {
	d, ok := first.(json.Delim)
	if !ok || d == ']' || d == '}' {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}

func invalidDocument(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
}
