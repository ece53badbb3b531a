package repository

import (
	"context"
	"errors"

	"github.com/linkedtrust/claim-extract/internal/domain"
	"gorm.io/gorm"
)

// ClaimRepository handles draft claim data operations.
type ClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new ClaimRepository.
func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *ClaimRepository) WithTx(tx *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: tx}
}

// CreateBatch inserts a set of draft claims in one statement.
func (r *ClaimRepository) CreateBatch(ctx context.Context, claims []domain.DraftClaim) error {
	if len(claims) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&claims).Error
}

// GetByID retrieves a claim by its ID.
// Returns domain.ErrNotFound when no row exists.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*domain.DraftClaim, error) {
	var claim domain.DraftClaim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &claim, nil
}

// ListByDocument retrieves all claims for a document in creation order. The
// secondary id sort keeps the order stable when timestamps collide, so review
// always sees the same sequence.
func (r *ClaimRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.DraftClaim, error) {
	var claims []domain.DraftClaim
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC, id ASC").
		Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

// Update persists all fields of the claim record.
func (r *ClaimRepository) Update(ctx context.Context, claim *domain.DraftClaim) error {
	return r.db.WithContext(ctx).Save(claim).Error
}

// Delete removes a claim by ID.
func (r *ClaimRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.DraftClaim{}, "id = ?", id).Error
}

// DeleteDraftsByDocument removes a document's unreviewed draft claims. Used
// when a reprocess replaces the previous attempt's output; edited, rejected,
// and published rows carry review state or a remote URL and must survive.
func (r *ClaimRepository) DeleteDraftsByDocument(ctx context.Context, documentID string) error {
	return r.db.WithContext(ctx).
		Delete(&domain.DraftClaim{}, "document_id = ? AND status = ?", documentID, domain.ClaimStatusDraft).Error
}

// CountByDocument counts claims belonging to a document.
func (r *ClaimRepository) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.DraftClaim{}).
		Where("document_id = ?", documentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
