package service

import (
	"context"
	"fmt"

	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/repository"
)

// ClaimService exposes review operations over draft claims.
type ClaimService struct {
	claimRepo *repository.ClaimRepository
	docRepo   *repository.DocumentRepository
	logger    *logger.Logger
}

// ClaimUpdate carries the editable claim fields. Nil pointers leave the
// stored value untouched; Attributes entries are merged over the existing map.
type ClaimUpdate struct {
	Subject    *string                `json:"subject,omitempty"`
	ClaimType  *string                `json:"claim_type,omitempty"`
	Object     *string                `json:"object,omitempty"`
	Statement  *string                `json:"statement,omitempty"`
	Attributes domain.ClaimAttributes `json:"attributes,omitempty"`
}

// NewClaimService creates a new claim service.
func NewClaimService(claimRepo *repository.ClaimRepository, docRepo *repository.DocumentRepository, log *logger.Logger) *ClaimService {
	return &ClaimService{claimRepo: claimRepo, docRepo: docRepo, logger: log}
}

// ListByDocument returns a document's claims in creation order.
func (s *ClaimService) ListByDocument(ctx context.Context, documentID string) ([]domain.DraftClaim, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.claimRepo.ListByDocument(ctx, documentID)
}

// Get retrieves one claim.
func (s *ClaimService) Get(ctx context.Context, id string) (*domain.DraftClaim, error) {
	return s.claimRepo.GetByID(ctx, id)
}

// Update applies field edits to a claim and marks it edited. A published
// claim is immutable: the update is rejected and the stored row unchanged.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: claim ID.
//   - upd: fields to change.
// Returns:
//   - *domain.DraftClaim: updated claim.
//   - error: wraps domain.ErrInvalidState when the claim is published.
func (s *ClaimService) Update(ctx context.Context, id string, upd *ClaimUpdate) (*domain.DraftClaim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status == domain.ClaimStatusPublished {
		return nil, fmt.Errorf("claim %s is published: %w", id, domain.ErrInvalidState)
	}

	if upd.Subject != nil {
		claim.Subject = *upd.Subject
	}
	if upd.ClaimType != nil {
		claim.ClaimType = *upd.ClaimType
	}
	if upd.Object != nil {
		claim.Object = *upd.Object
	}
	if upd.Statement != nil {
		claim.Statement = *upd.Statement
	}
	if len(upd.Attributes) > 0 {
		if claim.Attributes == nil {
			claim.Attributes = domain.ClaimAttributes{}
		}
		for k, v := range upd.Attributes {
			claim.Attributes[k] = v
		}
	}
	claim.Status = domain.ClaimStatusEdited

	if err := s.claimRepo.Update(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Reject marks a claim rejected so publishing skips it. Published claims
// cannot be rejected.
func (s *ClaimService) Reject(ctx context.Context, id string) (*domain.DraftClaim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.Status == domain.ClaimStatusPublished {
		return nil, fmt.Errorf("claim %s is published: %w", id, domain.ErrInvalidState)
	}

	claim.Status = domain.ClaimStatusRejected
	if err := s.claimRepo.Update(ctx, claim); err != nil {
		return nil, err
	}

	s.logger.WithField(logger.FieldClaimID, id).Info("Claim rejected")
	return claim, nil
}
