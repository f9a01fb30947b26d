package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/namespace"
	"github.com/page-comments-api/internal/notify"
	"github.com/page-comments-api/internal/render"
	"github.com/page-comments-api/internal/repository"
	"github.com/page-comments-api/internal/spam"
)

// ControlService defines the interface for per-page comment control
type ControlService interface {
	Status(ctx context.Context, pageID int64) (models.ControlStatus, error)
	SetStatus(ctx context.Context, pageID int64, status models.ControlStatus, performer models.Author) error
	ListOverrides(ctx context.Context) ([]models.ControlOverride, error)
}

// CommentService defines the interface for comment submission
type CommentService interface {
	Submit(ctx context.Context, author models.Author, req *models.SubmitRequest) (*models.Comment, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	Export(ctx context.Context, w io.Writer, includeDeleted bool) (*models.ExportStats, error)
	GetCounts(ctx context.Context) (map[string]int, error)
}

// ImportService defines the interface for import operations
type ImportService interface {
	ImportDocument(ctx context.Context, r io.Reader, opts ImportOptions, sink NoticeSink) (*models.ImportSummary, error)
	CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error)
	ProcessImport(ctx context.Context, job *models.Job) error
}

// JobService defines the interface for job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	ProcessPending(ctx context.Context) int
	GetJob(ctx context.Context, id string) (*models.JobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error)
	GetJobNotices(ctx context.Context, id string) ([]models.JobNotice, error)
	SetImportService(importService ImportService)
}

// Dependencies are the external collaborators of the services.
// Nil fields are replaced with the built-in defaults.
type Dependencies struct {
	Namespaces *namespace.Registry
	Renderer   render.Renderer
	Spam       spam.Checker
	Notifier   notify.Notifier
}

// Services holds all service interfaces
type Services struct {
	Control    ControlService
	Comment    CommentService
	Export     ExportService
	Import     ImportService
	Job        JobService
	Namespaces *namespace.Registry
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, deps Dependencies, cfg *config.Config, log zerolog.Logger) *Services {
	if deps.Namespaces == nil {
		deps.Namespaces = namespace.New(cfg.Comments)
	}
	if deps.Renderer == nil {
		deps.Renderer = render.NewWikitextRenderer(deps.Namespaces)
	}
	if deps.Spam == nil {
		deps.Spam = spam.Chain{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLogNotifier(log)
	}

	controlSvc := newControlService(repos, log)
	resolver := NewRecipientResolver(repos.User, cfg.Comments.MaxMentions, log)
	dispatcher := NewDispatcher(deps.Notifier, deps.Namespaces, log)
	commentSvc := newCommentService(repos, controlSvc, deps, resolver, dispatcher, log)

	jobSvc := newJobService(repos.Job, cfg.Import, log)
	importSvc := newImportService(repos, deps, cfg, log)
	exportSvc := newExportService(repos, cfg.Import.ExportFlushEvery, log)

	// Wire up job processor to import service
	jobSvc.SetImportService(importSvc)

	return &Services{
		Control:    controlSvc,
		Comment:    commentSvc,
		Export:     exportSvc,
		Import:     importSvc,
		Job:        jobSvc,
		Namespaces: deps.Namespaces,
	}
}
