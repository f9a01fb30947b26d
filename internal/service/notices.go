package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/repository"
)

const defaultNoticeFlushSize = 1000

// NoticeSink receives human-readable import progress notices.
// page is the page label the notice refers to, empty for document-level notices.
type NoticeSink interface {
	Notice(page, message string)
}

// NoticeFunc adapts a function to the NoticeSink interface
type NoticeFunc func(page, message string)

// Notice calls f
func (f NoticeFunc) Notice(page, message string) {
	f(page, message)
}

type discardNotices struct{}

func (discardNotices) Notice(string, string) {}

// jobNoticeSink stores notices for a job, writing them in batches
type jobNoticeSink struct {
	ctx       context.Context
	jobID     string
	repo      repository.JobRepository
	flushSize int
	seq       int
	pending   []models.JobNotice
	log       zerolog.Logger
}

func newJobNoticeSink(ctx context.Context, jobID string, repo repository.JobRepository, flushSize int, log zerolog.Logger) *jobNoticeSink {
	if flushSize <= 0 {
		flushSize = defaultNoticeFlushSize
	}
	return &jobNoticeSink{
		ctx:       ctx,
		jobID:     jobID,
		repo:      repo,
		flushSize: flushSize,
		log:       log,
	}
}

func (s *jobNoticeSink) Notice(page, message string) {
	s.seq++
	s.pending = append(s.pending, models.JobNotice{Seq: s.seq, Page: page, Message: message})
	if len(s.pending) >= s.flushSize {
		s.Flush()
	}
}

// Flush writes pending notices. A failed write is logged and the batch dropped.
func (s *jobNoticeSink) Flush() {
	if len(s.pending) == 0 {
		return
	}
	if err := s.repo.AddNotices(s.ctx, s.jobID, s.pending); err != nil {
		s.log.Error().Err(err).Str("job_id", s.jobID).Int("count", len(s.pending)).Msg("Failed to store import notices")
	}
	s.pending = nil
}
