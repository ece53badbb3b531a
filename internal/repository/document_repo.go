package repository

import (
	"context"
	"errors"
	"time"

	"github.com/linkedtrust/claim-extract/internal/domain"
	"gorm.io/gorm"
)

// DocumentRepository handles document data operations.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *DocumentRepository: repository instance bound to db.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

// Create inserts a new document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByID retrieves a document by its ID.
// Returns domain.ErrNotFound when no row exists.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// List retrieves documents ordered by upload time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Document: matching document records.
//   - error: non-nil if the query fails.
func (r *DocumentRepository) List(ctx context.Context, limit, offset int) ([]domain.Document, error) {
	var docs []domain.Document
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("upload_time DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Update persists all fields of the document record.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// SetStatus updates the document status and error message in one write.
func (r *DocumentRepository) SetStatus(ctx context.Context, id string, status domain.DocumentStatus, errorMessage string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
		}).Error
}

// MarkProcessing flips the document to processing if and only if it is not
// already processing. Returns domain.ErrAlreadyProcessing otherwise and
// domain.ErrNotFound when the document does not exist. The guarded update is
// the single-flight gate for the per-document extraction job.
func (r *DocumentRepository) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ? AND status <> ?", id, domain.DocumentStatusProcessing).
		Updates(map[string]interface{}{
			"status":                domain.DocumentStatusProcessing,
			"error_message":         "",
			"processing_started_at": startedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Document{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrAlreadyProcessing
	}
	return nil
}

// Delete removes a document and, through FK constraints, its claims and jobs.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SQLite may run without enforced FKs, so cascade explicitly.
		if err := tx.Delete(&domain.DraftClaim{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.ProcessingJob{}, "document_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Document{}, "id = ?", id).Error
	})
}

// CountByStatus counts documents by status.
func (r *DocumentRepository) CountByStatus(ctx context.Context, status domain.DocumentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Document{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
