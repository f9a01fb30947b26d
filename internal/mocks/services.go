package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/repository"
	"github.com/page-comments-api/internal/service"
)

// MockRepositories bundles the repository mocks behind a *repository.Repositories
type MockRepositories struct {
	Comment *MockCommentRepository
	Page    *MockPageRepository
	User    *MockUserRepository
	Control *MockControlRepository
	Audit   *MockAuditRepository
	Job     *MockJobRepository
}

// NewMockRepositories creates mocks seeded with the given pages and users.
// The comment mock joins against them for exports.
func NewMockRepositories(pages []*models.Page, users []*models.User) *MockRepositories {
	m := &MockRepositories{
		Comment: NewMockCommentRepository(),
		Page:    NewMockPageRepository(pages...),
		User:    NewMockUserRepository(users...),
		Control: NewMockControlRepository(),
		Audit:   NewMockAuditRepository(),
		Job:     NewMockJobRepository(),
	}
	m.Comment.Pages = m.Page
	m.Comment.Users = m.User
	return m
}

// Repositories returns the mocks as a *repository.Repositories
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Comment: m.Comment,
		Page:    m.Page,
		User:    m.User,
		Control: m.Control,
		Audit:   m.Audit,
		Job:     m.Job,
	}
}

// MockNotifier records notifications
type MockNotifier struct {
	mu   sync.Mutex
	Sent []models.Notification
	// FailFor makes delivery to these recipients fail
	FailFor map[int64]error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{FailFor: make(map[int64]error)}
}

func (m *MockNotifier) Notify(ctx context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[n.RecipientID]; ok {
		return err
	}
	m.Sent = append(m.Sent, n)
	return nil
}

// Notifications returns a copy of the delivered notifications
func (m *MockNotifier) Notifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	SubmitFunc func(ctx context.Context, author models.Author, req *models.SubmitRequest) (*models.Comment, error)
	Authors    []models.Author
}

// Verify interface compliance
var _ service.CommentService = (*MockCommentService)(nil)

func (m *MockCommentService) Submit(ctx context.Context, author models.Author, req *models.SubmitRequest) (*models.Comment, error) {
	m.Authors = append(m.Authors, author)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, author, req)
	}
	c := &models.Comment{ID: 1, PageID: req.PageID, Wikitext: req.Wikitext}
	c.SetAuthor(author)
	return c, nil
}

// MockControlService is a mock implementation of ControlService
type MockControlService struct {
	Statuses map[int64]models.ControlStatus
	SetError error
	SetCalls int
}

// Verify interface compliance
var _ service.ControlService = (*MockControlService)(nil)

func NewMockControlService() *MockControlService {
	return &MockControlService{Statuses: make(map[int64]models.ControlStatus)}
}

func (m *MockControlService) Status(ctx context.Context, pageID int64) (models.ControlStatus, error) {
	return m.Statuses[pageID], nil
}

func (m *MockControlService) SetStatus(ctx context.Context, pageID int64, status models.ControlStatus, performer models.Author) error {
	m.SetCalls++
	if m.SetError != nil {
		return m.SetError
	}
	if status == models.ControlEnabled {
		delete(m.Statuses, pageID)
		return nil
	}
	m.Statuses[pageID] = status
	return nil
}

func (m *MockControlService) ListOverrides(ctx context.Context) ([]models.ControlOverride, error) {
	var out []models.ControlOverride
	for id, status := range m.Statuses {
		out = append(out, models.ControlOverride{PageID: id, Status: status, Key: status.Key()})
	}
	return out, nil
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	CreateJobFunc func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error)
	ProcessFunc   func(ctx context.Context, job *models.Job) error
	DocumentFunc  func(ctx context.Context, r io.Reader, opts service.ImportOptions, sink service.NoticeSink) (*models.ImportSummary, error)
	ProcessedJobs []*models.Job
	CreatedJobs   []*models.Job
	CreatedFiles  []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{
		ProcessedJobs: make([]*models.Job, 0),
		CreatedJobs:   make([]*models.Job, 0),
	}
}

func (m *MockImportService) ImportDocument(ctx context.Context, r io.Reader, opts service.ImportOptions, sink service.NoticeSink) (*models.ImportSummary, error) {
	if m.DocumentFunc != nil {
		return m.DocumentFunc(ctx, r, opts, sink)
	}
	return &models.ImportSummary{}, nil
}

func (m *MockImportService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.Job, error) {
	m.CreatedFiles = append(m.CreatedFiles, filePath)
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, req, filePath)
	}
	job := &models.Job{
		ID:             "test-job-id",
		Type:           models.JobTypeImport,
		Status:         models.JobStatusPending,
		SkipExisting:   req.SkipExisting,
		AttachUsers:    req.AttachUsers,
		PerformerID:    req.PerformerID,
		IdempotencyKey: req.IdempotencyKey,
	}
	m.CreatedJobs = append(m.CreatedJobs, job)
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.Job) error {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	job.Status = models.JobStatusCompleted
	return nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	ExportFunc func(ctx context.Context, w io.Writer, includeDeleted bool) (*models.ExportStats, error)
	Counts     map[string]int
	// IncludeDeleted records the flag of each Export call
	IncludeDeleted []bool
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"comments":          0,
			"pages":             0,
			"control_overrides": 0,
		},
	}
}

func (m *MockExportService) Export(ctx context.Context, w io.Writer, includeDeleted bool) (*models.ExportStats, error) {
	m.IncludeDeleted = append(m.IncludeDeleted, includeDeleted)
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, w, includeDeleted)
	}
	_, err := io.WriteString(w, "[]")
	return &models.ExportStats{}, err
}

func (m *MockExportService) GetCounts(ctx context.Context) (map[string]int, error) {
	return m.Counts, nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs          map[string]*models.JobResponse
	Notices       map[string][]models.JobNotice
	ImportService service.ImportService
}

// Verify interface compliance
var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:    make(map[string]*models.JobResponse),
		Notices: make(map[string][]models.JobNotice),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) {}

func (m *MockJobService) StopProcessor() {}

func (m *MockJobService) ProcessPending(ctx context.Context) int { return 0 }

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	return m.Jobs[id], nil
}

func (m *MockJobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			return &job.Job, nil
		}
	}
	return nil, nil
}

func (m *MockJobService) GetJobNotices(ctx context.Context, id string) ([]models.JobNotice, error) {
	return m.Notices[id], nil
}

func (m *MockJobService) SetImportService(importService service.ImportService) {
	m.ImportService = importService
}
