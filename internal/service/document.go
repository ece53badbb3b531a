package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/storage"
)

// DocumentService handles document upload, lookup, and deletion.
type DocumentService struct {
	docRepo   *repository.DocumentRepository
	claimRepo *repository.ClaimRepository
	store     storage.ObjectStorage
	logger    *logger.Logger

	maxSize     int64
	allowedExts map[string]bool
}

// DocumentConfig holds upload validation settings.
type DocumentConfig struct {
	MaxSizeMB         int
	AllowedExtensions []string
}

// DocumentUpload is the validated input of one upload request.
type DocumentUpload struct {
	OriginalFilename string
	Size             int64
	Reader           io.Reader
	EffectiveDate    time.Time
	SubjectURL       string
}

// DocumentDetail is a document together with its current claim count.
type DocumentDetail struct {
	domain.Document
	ClaimCount int64 `json:"claim_count"`
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docRepo *repository.DocumentRepository,
	claimRepo *repository.ClaimRepository,
	store storage.ObjectStorage,
	log *logger.Logger,
	cfg *DocumentConfig,
) *DocumentService {
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		exts[strings.ToLower(ext)] = true
	}
	return &DocumentService{
		docRepo:     docRepo,
		claimRepo:   claimRepo,
		store:       store,
		logger:      log,
		maxSize:     int64(cfg.MaxSizeMB) * 1024 * 1024,
		allowedExts: exts,
	}
}

// Upload validates the incoming file, stores it, and creates the Document
// row in status uploaded. Validation failures happen before any state exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - up: upload content and metadata.
// Returns:
//   - *domain.Document: created document.
//   - error: *domain.ValidationError for rejected uploads.
func (s *DocumentService) Upload(ctx context.Context, up *DocumentUpload) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(up.OriginalFilename))
	if !s.allowedExts[ext] {
		return nil, domain.NewValidationError("unsupported file type %q", ext)
	}
	if up.Size <= 0 {
		return nil, domain.NewValidationError("empty file")
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return nil, domain.NewValidationError("file exceeds %d MB limit", s.maxSize/(1024*1024))
	}

	id := uuid.New().String()
	filename := id + ext
	storageKey := "documents/" + filename

	if err := s.store.Upload(ctx, storageKey, up.Reader, up.Size, "application/pdf"); err != nil {
		return nil, err
	}

	effectiveDate := up.EffectiveDate
	if effectiveDate.IsZero() {
		effectiveDate = time.Now().UTC()
	}

	doc := &domain.Document{
		ID:               id,
		Filename:         filename,
		OriginalFilename: up.OriginalFilename,
		StorageKey:       storageKey,
		PublicURL:        s.store.GetURL(storageKey),
		SubjectURL:       up.SubjectURL,
		EffectiveDate:    effectiveDate,
		UploadTime:       time.Now().UTC(),
		Status:           domain.DocumentStatusUploaded,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// The row is the source of truth; remove the orphaned object.
		if derr := s.store.Delete(ctx, storageKey); derr != nil {
			s.logger.WithError(derr).WithField(logger.FieldDocumentID, id).
				Warn("Failed to clean up stored file after create failure")
		}
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		logger.FieldDocumentID: doc.ID,
		logger.FieldSize:       up.Size,
	}).Info("Document uploaded")

	return doc, nil
}

// Get retrieves a document with its claim count.
func (s *DocumentService) Get(ctx context.Context, id string) (*DocumentDetail, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.claimRepo.CountByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{Document: *doc, ClaimCount: count}, nil
}

// List retrieves documents, newest first.
func (s *DocumentService) List(ctx context.Context, limit, offset int) ([]domain.Document, error) {
	return s.docRepo.List(ctx, limit, offset)
}

// Delete removes a document, its stored file, and all dependent rows.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		// Keep going: the rows matter more than the orphaned object.
		s.logger.WithError(err).WithField(logger.FieldDocumentID, id).
			Warn("Failed to delete stored file")
	}

	return s.docRepo.Delete(ctx, id)
}
