package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/models"
	"github.com/page-comments-api/internal/repository"
)

const jobNoticePreview = 100

// jobService is the concrete implementation of JobService
type jobService struct {
	jobRepo       repository.JobRepository
	importService ImportService
	pollInterval  time.Duration
	log           zerolog.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
	// sem bounds the number of imports running at once
	sem chan struct{}
}

// newJobService creates a new JobService
func newJobService(jobRepo repository.JobRepository, cfg config.ImportConfig, log zerolog.Logger) *jobService {
	workers := cfg.WorkerConcurrency
	if workers <= 0 {
		workers = 1
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	log.Info().Int("max_workers", workers).Dur("poll_interval", interval).Msg("Initializing import job worker pool")

	return &jobService{
		jobRepo:      jobRepo,
		pollInterval: interval,
		log:          log.With().Str("service", "job").Logger(),
		sem:          make(chan struct{}, workers),
	}
}

// SetImportService sets the import service for job processing
func (s *jobService) SetImportService(importService ImportService) {
	s.importService = importService
}

// StartProcessor polls for pending jobs until ctx is cancelled or StopProcessor is called.
// It blocks; run it in its own goroutine.
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.dispatchPending(ctx)
		}
	}
}

// StopProcessor stops the background job processor and waits for running jobs
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// ProcessPending runs every pending job and waits for them to finish.
// It returns the number of jobs started.
func (s *jobService) ProcessPending(ctx context.Context) int {
	n := s.dispatchPending(ctx)
	s.wg.Wait()
	return n
}

// dispatchPending claims pending jobs and runs each in a worker goroutine
func (s *jobService) dispatchPending(ctx context.Context) int {
	jobs, err := s.jobRepo.GetPendingJobs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return 0
	}

	started := 0
	for _, job := range jobs {
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			return started
		}

		marked, err := s.jobRepo.MarkJobAsProcessing(ctx, job.ID)
		if err != nil || !marked {
			<-s.sem
			continue // Another worker already picked it up
		}

		started++
		s.wg.Add(1)
		go func(j *models.Job) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					j.Status = models.JobStatusFailed
					j.ErrorMessage = "internal error"
					if err := s.jobRepo.Update(context.Background(), j); err != nil {
						s.log.Error().Err(err).Str("job_id", j.ID).Msg("Failed to mark job as failed")
					}
				}
			}()
			s.processJob(ctx, j)
		}(job)
	}
	return started
}

// processJob processes a single job
func (s *jobService) processJob(ctx context.Context, job *models.Job) {
	if ctx.Err() != nil {
		// Claimed but not started: hand it back to the queue
		job.Status = models.JobStatusPending
		job.StartedAt = nil
		if err := s.jobRepo.Update(context.WithoutCancel(ctx), job); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to release job")
		}
		s.log.Warn().Str("job_id", job.ID).Msg("Job processing cancelled due to shutdown")
		return
	}

	s.log.Info().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("Processing job")

	switch job.Type {
	case models.JobTypeImport:
		if s.importService == nil {
			s.log.Error().Str("job_id", job.ID).Msg("No import service configured")
			s.failJob(ctx, job, "no import service configured")
			return
		}
		if err := s.importService.ProcessImport(ctx, job); err != nil {
			s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import processing failed")
		}
	default:
		s.log.Warn().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("Unknown job type")
		s.failJob(ctx, job, "unknown job type")
	}
}

func (s *jobService) failJob(ctx context.Context, job *models.Job, message string) {
	job.Status = models.JobStatusFailed
	job.ErrorMessage = message
	if err := s.jobRepo.Update(context.WithoutCancel(ctx), job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job as failed")
	}
}

// GetJob retrieves a job by ID with its first notices
func (s *jobService) GetJob(ctx context.Context, id string) (*models.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	notices, err := s.jobRepo.GetNotices(ctx, id, jobNoticePreview)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job notices")
	}
	count, err := s.jobRepo.CountNotices(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to count job notices")
		count = len(notices)
	}

	response := &models.JobResponse{
		Job:         *job,
		Notices:     notices,
		NoticeCount: count,
	}
	if count > 0 {
		response.NoticesURL = "/v1/imports/" + job.ID + "/notices"
	}

	return response, nil
}

// GetJobByIdempotencyKey retrieves a job by idempotency key
func (s *jobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.Job, error) {
	return s.jobRepo.GetByIdempotencyKey(ctx, key)
}

// GetJobNotices retrieves all notices of a job
func (s *jobService) GetJobNotices(ctx context.Context, id string) ([]models.JobNotice, error) {
	return s.jobRepo.GetNotices(ctx, id, 0)
}
