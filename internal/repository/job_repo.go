package repository

import (
	"context"
	"errors"

	"github.com/linkedtrust/claim-extract/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles processing job data operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *JobRepository) WithTx(tx *gorm.DB) *JobRepository {
	return &JobRepository{db: tx}
}

// Create inserts a new processing job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.ProcessingJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ProcessingJob, error) {
	var job domain.ProcessingJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetActiveByDocument returns the pending or started job for a document, or
// domain.ErrNotFound when none is active.
func (r *JobRepository) GetActiveByDocument(ctx context.Context, documentID string) (*domain.ProcessingJob, error) {
	var job domain.ProcessingJob
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND status IN ?", documentID,
			[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusStarted}).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// Update persists all fields of the job record.
func (r *JobRepository) Update(ctx context.Context, job *domain.ProcessingJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// ListRecent retrieves the most recently created jobs.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]domain.ProcessingJob, error) {
	var jobs []domain.ProcessingJob
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
