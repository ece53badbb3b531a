package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/trustapi"
)

// TrustPublisher is the trust-graph collaborator. The production
// implementation is trustapi.Client; tests substitute fakes.
type TrustPublisher interface {
	CreateClaim(ctx context.Context, payload *trustapi.ClaimPayload) (*trustapi.PublishedClaim, error)
}

// CleanupPolicy controls what happens to a local draft after its claim is
// accepted by the trust API.
type CleanupPolicy string

const (
	// CleanupArchive keeps the local row, marked published with the remote URL.
	CleanupArchive CleanupPolicy = "archive"
	// CleanupDelete removes the local row once the remote copy exists.
	CleanupDelete CleanupPolicy = "delete"
)

// PublishService pushes reviewed draft claims to the trust API. Each claim is
// an independent publish; one failure never blocks the rest of a batch.
type PublishService struct {
	claimRepo *repository.ClaimRepository
	docRepo   *repository.DocumentRepository
	trust     TrustPublisher
	logger    *logger.Logger
	cleanup   CleanupPolicy
}

// NewPublishService creates a publish service with the given cleanup policy.
func NewPublishService(
	claimRepo *repository.ClaimRepository,
	docRepo *repository.DocumentRepository,
	trust TrustPublisher,
	log *logger.Logger,
	cleanup CleanupPolicy,
) *PublishService {
	if cleanup == "" {
		cleanup = CleanupArchive
	}
	return &PublishService{
		claimRepo: claimRepo,
		docRepo:   docRepo,
		trust:     trust,
		logger:    log,
		cleanup:   cleanup,
	}
}

// PublishResult describes one successfully published claim.
type PublishResult struct {
	ClaimID   string `json:"claim_id"`
	RemoteURL string `json:"remote_url"`
}

// PublishFailure describes one claim that could not be published.
type PublishFailure struct {
	ClaimID string `json:"claim_id"`
	Error   string `json:"error"`
}

// PublishReport aggregates the outcome of a batch publish.
type PublishReport struct {
	Succeeded []PublishResult  `json:"succeeded"`
	Failed    []PublishFailure `json:"failed"`
}

// Publish pushes a single draft or edited claim to the trust API. Claims that
// are already published or were rejected fail with domain.ErrInvalidState.
// On success the local row is archived or deleted per the cleanup policy.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - claimID: local claim to publish.
// Returns:
//   - *PublishResult: claim ID and the remote claim URL.
//   - error: domain.ErrNotFound, domain.ErrInvalidState, or a
//     *domain.PublishError carrying the remote response verbatim.
func (s *PublishService) Publish(ctx context.Context, claimID string) (*PublishResult, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.Publishable() {
		return nil, fmt.Errorf("claim %s is %s: %w", claimID, claim.Status, domain.ErrInvalidState)
	}

	doc, err := s.docRepo.GetByID(ctx, claim.DocumentID)
	if err != nil {
		return nil, err
	}

	payload := BuildPayload(claim, doc)
	published, err := s.trust.CreateClaim(ctx, payload)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Published claim %s as %s", claimID, published.URL)

	if s.cleanup == CleanupDelete {
		if err := s.claimRepo.Delete(ctx, claimID); err != nil {
			logger.CtxWarn(ctx, "Published claim %s but failed to delete local row: %v", claimID, err)
		}
	} else {
		now := time.Now().UTC()
		claim.Status = domain.ClaimStatusPublished
		claim.PublishedAt = &now
		claim.RemoteURL = published.URL
		if err := s.claimRepo.Update(ctx, claim); err != nil {
			logger.CtxWarn(ctx, "Published claim %s but failed to archive local row: %v", claimID, err)
		}
	}

	return &PublishResult{ClaimID: claimID, RemoteURL: published.URL}, nil
}

// PublishAll publishes every publishable claim of a document. Published and
// rejected claims are skipped; each remaining claim is attempted
// independently, and the report carries both outcome lists.
func (s *PublishService) PublishAll(ctx context.Context, documentID string) (*PublishReport, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	claims, err := s.claimRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	report := &PublishReport{
		Succeeded: []PublishResult{},
		Failed:    []PublishFailure{},
	}
	for i := range claims {
		if !claims[i].Publishable() {
			continue
		}
		result, err := s.Publish(ctx, claims[i].ID)
		if err != nil {
			report.Failed = append(report.Failed, PublishFailure{
				ClaimID: claims[i].ID,
				Error:   err.Error(),
			})
			continue
		}
		report.Succeeded = append(report.Succeeded, *result)
	}

	logger.CtxInfo(ctx, "Batch publish for document %s: %d succeeded, %d failed",
		documentID, len(report.Succeeded), len(report.Failed))
	return report, nil
}

// BuildPayload maps a local draft onto the trust API wire format. Source
// attribution comes from the owning document; optional numeric and rating
// attributes pass through from the extraction attributes when present.
func BuildPayload(claim *domain.DraftClaim, doc *domain.Document) *trustapi.ClaimPayload {
	payload := &trustapi.ClaimPayload{
		Subject:   claim.Subject,
		Claim:     claim.ClaimType,
		Object:    claim.Object,
		Statement: claim.Statement,
		SourceURI: doc.PublicURL,
		HowKnown:  "DOCUMENT",
	}
	if !doc.EffectiveDate.IsZero() {
		payload.EffectiveDate = doc.EffectiveDate.Format("2006-01-02")
	}

	attrs := claim.Attributes
	if v, ok := attrs["howKnown"].(string); ok && v != "" {
		payload.HowKnown = v
	}
	if v, ok := attrFloat(attrs, "confidence"); ok {
		payload.Confidence = &v
	}
	if v, ok := attrs["aspect"].(string); ok && v != "" {
		payload.Aspect = v
	}
	if v, ok := attrFloat(attrs, "score"); ok {
		payload.Score = &v
	}
	if v, ok := attrFloat(attrs, "stars"); ok {
		stars := int(v)
		payload.Stars = &stars
	}
	if v, ok := attrFloat(attrs, "amt"); ok {
		payload.Amt = &v
	}
	if v, ok := attrs["unit"].(string); ok && v != "" {
		payload.Unit = v
	}
	if v, ok := attrs["howMeasured"].(string); ok && v != "" {
		payload.HowMeasured = v
	}
	return payload
}

// attrFloat reads a numeric attribute. JSON round-trips store numbers as
// float64, but values set in code may still be ints.
func attrFloat(attrs domain.ClaimAttributes, key string) (float64, bool) {
	switch v := attrs[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
