package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/page-comments-api/internal/models"
)

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[int64]*models.Comment
	NextID      int64
	CreateError error
	GetError    error
	CreateCalls int

	// Optional join sources for StreamForExport
	Pages *MockPageRepository
	Users *MockUserRepository
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[int64]*models.Comment),
		NextID:   1,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	comment.ID = m.NextID
	m.NextID++
	stored := *comment
	m.Comments[comment.ID] = &stored
	return nil
}

// Add stores a comment with a fixed id, for test setup
func (m *MockCommentRepository) Add(comment *models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments[comment.ID] = comment
	if comment.ID >= m.NextID {
		m.NextID = comment.ID + 1
	}
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *MockCommentRepository) ExistingTimestamps(ctx context.Context, pageID int64) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := make(map[string]struct{})
	for _, c := range m.Comments {
		if c.PageID == pageID {
			set[models.FormatTimestamp(c.CreatedAt)] = struct{}{}
		}
	}
	return set, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

// ByPage returns the comments of a page ordered by id
func (m *MockCommentRepository) ByPage(pageID int64) []*models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Comment
	for _, c := range m.Comments {
		if c.PageID == pageID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StreamForExport joins Pages and Users when set, the way the SQL query does
func (m *MockCommentRepository) StreamForExport(ctx context.Context, includeDeleted bool, callback func(*models.ExportRow) error) error {
	return m.streamJoined(includeDeleted, m.Pages, m.Users, callback)
}

func (m *MockCommentRepository) streamJoined(includeDeleted bool, pages *MockPageRepository, users *MockUserRepository, callback func(*models.ExportRow) error) error {
	m.mu.Lock()
	rows := make([]*models.Comment, 0, len(m.Comments))
	for _, c := range m.Comments {
		if !includeDeleted && c.IsDeleted() {
			continue
		}
		rows = append(rows, c)
	}
	m.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PageID != rows[j].PageID {
			return rows[i].PageID < rows[j].PageID
		}
		return rows[i].ID < rows[j].ID
	})

	for _, c := range rows {
		row := &models.ExportRow{Comment: *c, Page: models.Page{ID: c.PageID}}
		if pages != nil {
			p, ok := pages.Pages[c.PageID]
			if !ok {
				continue // inner join
			}
			row.Page = *p
		}
		if users != nil && c.ActorID != 0 {
			if u, ok := users.Users[c.ActorID]; ok {
				row.ActorName = u.Name
			}
		}
		if err := callback(row); err != nil {
			return err
		}
	}
	return nil
}

// MockPageRepository is a mock implementation of PageRepository
type MockPageRepository struct {
	Pages    map[int64]*models.Page
	GetError error
}

func NewMockPageRepository(pages ...*models.Page) *MockPageRepository {
	m := &MockPageRepository{Pages: make(map[int64]*models.Page)}
	for _, p := range pages {
		m.Pages[p.ID] = p
	}
	return m
}

func (m *MockPageRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Pages[id], nil
}

func (m *MockPageRepository) GetByTitle(ctx context.Context, ns int, title string) (*models.Page, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, p := range m.Pages {
		if p.Namespace == ns && p.Title == title {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockPageRepository) Count(ctx context.Context) (int, error) {
	return len(m.Pages), nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[int64]*models.User
	LookupError error
	LookupCalls int
}

func NewMockUserRepository(users ...*models.User) *MockUserRepository {
	m := &MockUserRepository{Users: make(map[int64]*models.User)}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.LookupCalls++
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	m.LookupCalls++
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	for _, u := range m.Users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, nil
}

// MockControlRepository is a mock implementation of ControlRepository
type MockControlRepository struct {
	mu        sync.Mutex
	Overrides map[int64]models.ControlStatus
	Error     error
}

func NewMockControlRepository() *MockControlRepository {
	return &MockControlRepository{Overrides: make(map[int64]models.ControlStatus)}
}

func (m *MockControlRepository) Get(ctx context.Context, pageID int64) (*models.ControlOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return nil, m.Error
	}
	status, ok := m.Overrides[pageID]
	if !ok {
		return nil, nil
	}
	return &models.ControlOverride{PageID: pageID, Status: status, Key: status.Key()}, nil
}

func (m *MockControlRepository) Upsert(ctx context.Context, pageID int64, status models.ControlStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Overrides[pageID] = status
	return nil
}

func (m *MockControlRepository) Delete(ctx context.Context, pageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	delete(m.Overrides, pageID)
	return nil
}

func (m *MockControlRepository) List(ctx context.Context) ([]models.ControlOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return nil, m.Error
	}
	out := make([]models.ControlOverride, 0, len(m.Overrides))
	for id, status := range m.Overrides {
		out = append(out, models.ControlOverride{PageID: id, Status: status, Key: status.Key()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageID < out[j].PageID })
	return out, nil
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mu      sync.Mutex
	Entries []models.AuditEntry
	Error   error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	entry.ID = int64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, *entry)
	return nil
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mu              sync.Mutex
	Jobs            map[string]*models.Job
	IdempotencyJobs map[string]*models.Job
	Notices         map[string][]models.JobNotice
	CreateError     error
	UpdateError     error
	AddNoticesCalls int
	// RejectCancelled makes writes fail on a cancelled context, as the SQL driver does
	RejectCancelled bool
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:            make(map[string]*models.Job),
		IdempotencyJobs: make(map[string]*models.Job),
		Notices:         make(map[string][]models.JobNotice),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	stored := *job
	m.Jobs[job.ID] = &stored
	if job.IdempotencyKey != "" {
		m.IdempotencyJobs[job.IdempotencyKey] = &stored
	}
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if m.RejectCancelled && ctx.Err() != nil {
		return ctx.Err()
	}
	stored := *job
	m.Jobs[job.ID] = &stored
	if job.IdempotencyKey != "" {
		m.IdempotencyJobs[job.IdempotencyKey] = &stored
	}
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyJob(m.Jobs[id]), nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyJob(m.IdempotencyJobs[key]), nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.Job
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, copyJob(job))
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, exists := m.Jobs[jobID]
	if !exists || job.Status != models.JobStatusPending {
		return false, nil
	}
	now := time.Now()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	return true, nil
}

func (m *MockJobRepository) AddNotices(ctx context.Context, jobID string, notices []models.JobNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RejectCancelled && ctx.Err() != nil {
		return ctx.Err()
	}
	m.AddNoticesCalls++
	m.Notices[jobID] = append(m.Notices[jobID], notices...)
	return nil
}

func (m *MockJobRepository) GetNotices(ctx context.Context, jobID string, limit int) ([]models.JobNotice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notices := m.Notices[jobID]
	if limit > 0 && len(notices) > limit {
		return notices[:limit], nil
	}
	return notices, nil
}

func (m *MockJobRepository) CountNotices(ctx context.Context, jobID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notices[jobID]), nil
}

func copyJob(job *models.Job) *models.Job {
	if job == nil {
		return nil
	}
	copied := *job
	return &copied
}

// JobStatus reads a job's status under the lock, for polling tests
func (m *MockJobRepository) JobStatus(id string) models.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.Jobs[id]; ok {
		return job.Status
	}
	return ""
}
