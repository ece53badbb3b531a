package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/extraction"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/pdftext"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/storage"
	"gorm.io/gorm"
)

// ClaimExtractor is the extraction collaborator. The production
// implementation is extraction.Client; tests substitute fakes.
type ClaimExtractor interface {
	ExtractPage(ctx context.Context, req *extraction.Request) ([]extraction.Claim, error)
}

// OrchestratorConfig holds worker-pool and extraction-run settings.
type OrchestratorConfig struct {
	Workers        int
	QueueSize      int
	ExtractTimeout time.Duration
	MinPageChars   int
	MaxPages       int

	// Prompt is the resolved user prompt passed explicitly with every
	// extraction call.
	Prompt string
}

// Orchestrator drives documents through the extraction state machine:
// uploaded -> processing -> ready|failed, with failed -> processing on manual
// retry. It guarantees at most one active job per document and commits each
// attempt's outcome atomically.
type Orchestrator struct {
	db        *gorm.DB
	docRepo   *repository.DocumentRepository
	claimRepo *repository.ClaimRepository
	jobRepo   *repository.JobRepository
	store     storage.ObjectStorage
	extractor ClaimExtractor
	logger    *logger.Logger
	cfg       OrchestratorConfig

	jobs chan jobItem
	wg   sync.WaitGroup
}

type jobItem struct {
	jobID      string
	documentID string
}

// NewOrchestrator creates a new orchestrator. Call Start before Enqueue.
func NewOrchestrator(
	db *gorm.DB,
	docRepo *repository.DocumentRepository,
	claimRepo *repository.ClaimRepository,
	jobRepo *repository.JobRepository,
	store storage.ObjectStorage,
	extractor ClaimExtractor,
	log *logger.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	return &Orchestrator{
		db:        db,
		docRepo:   docRepo,
		claimRepo: claimRepo,
		jobRepo:   jobRepo,
		store:     store,
		extractor: extractor,
		logger:    log,
		cfg:       cfg,
		jobs:      make(chan jobItem, cfg.QueueSize),
	}
}

// Start launches the worker pool. Workers take jobs off the queue until Stop
// closes it; a running job always finishes and records its outcome.
func (o *Orchestrator) Start() {
	for i := 0; i < o.cfg.Workers; i++ {
		o.wg.Add(1)
		go func(workerID int) {
			defer o.wg.Done()
			for job := range o.jobs {
				o.runJob(job)
			}
		}(i)
	}
	o.logger.WithField(logger.FieldCount, o.cfg.Workers).Info("Extraction workers started")
}

// Stop closes intake and waits for in-flight jobs to drain.
func (o *Orchestrator) Stop() {
	close(o.jobs)
	o.wg.Wait()
}

// Enqueue schedules one extraction job for a document. It fails with
// domain.ErrAlreadyProcessing when an active job exists, otherwise flips the
// document to processing, records a pending job, and hands it to the pool.
// A failed document may be re-enqueued; its previous claims are replaced on
// the next success.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - documentID: document to process.
// Returns:
//   - string: scheduled job ID.
//   - error: domain.ErrAlreadyProcessing, domain.ErrNotFound, or a storage
//     failure.
func (o *Orchestrator) Enqueue(ctx context.Context, documentID string) (string, error) {
	job, err := o.schedule(ctx, documentID)
	if err != nil {
		return "", err
	}

	select {
	case o.jobs <- jobItem{jobID: job.ID, documentID: documentID}:
		return job.ID, nil
	case <-ctx.Done():
		// Undo the schedule so the document is not stuck in processing.
		o.finishFailure(job, documentID, fmt.Errorf("job was never queued: %w", ctx.Err()))
		return "", ctx.Err()
	}
}

// RunSync processes one document on the calling goroutine. Used by the
// extract CLI; the single-flight guarantee still applies.
func (o *Orchestrator) RunSync(ctx context.Context, documentID string) (*domain.ProcessingJob, error) {
	job, err := o.schedule(ctx, documentID)
	if err != nil {
		return nil, err
	}
	o.runJob(jobItem{jobID: job.ID, documentID: documentID})
	return o.jobRepo.GetByID(ctx, job.ID)
}

// schedule atomically moves the document to processing and creates the
// pending job row.
func (o *Orchestrator) schedule(ctx context.Context, documentID string) (*domain.ProcessingJob, error) {
	if active, err := o.jobRepo.GetActiveByDocument(ctx, documentID); err == nil && active != nil {
		return nil, fmt.Errorf("job %s still active: %w", active.ID, domain.ErrAlreadyProcessing)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	job := &domain.ProcessingJob{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		JobType:    domain.JobTypeExtractClaims,
		Status:     domain.JobStatusPending,
	}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := o.docRepo.WithTx(tx).MarkProcessing(ctx, documentID, time.Now().UTC()); err != nil {
			return err
		}
		return o.jobRepo.WithTx(tx).Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// runJob executes one extraction attempt. The job context is detached from
// the request that enqueued it; only the configured timeout bounds the run.
func (o *Orchestrator) runJob(item jobItem) {
	ctx := context.Background()
	if o.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.ExtractTimeout)
		defer cancel()
	}
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldJobID:      item.jobID,
		logger.FieldDocumentID: item.documentID,
		logger.FieldComponent:  "orchestrator",
	})

	job, err := o.jobRepo.GetByID(ctx, item.jobID)
	if err != nil {
		logger.CtxError(ctx, "Failed to load job: %v", err)
		return
	}

	now := time.Now().UTC()
	job.Status = domain.JobStatusStarted
	job.StartedAt = &now
	if err := o.jobRepo.Update(ctx, job); err != nil {
		logger.CtxError(ctx, "Failed to mark job started: %v", err)
		return
	}

	claims, err := o.extract(ctx, item.documentID)
	if err != nil {
		logger.CtxError(ctx, "Extraction failed: %v", err)
		o.finishFailure(job, item.documentID, err)
		return
	}

	if err := o.finishSuccess(job, item.documentID, claims); err != nil {
		logger.CtxError(ctx, "Failed to commit extraction result: %v", err)
		o.finishFailure(job, item.documentID, err)
		return
	}

	logger.CtxInfo(ctx, "Extraction completed: %d claims", len(claims))
}

// extract downloads the document, splits it into pages, and runs the
// extraction collaborator over each page. Any failure aborts the whole
// attempt; partial claim sets are never returned.
func (o *Orchestrator) extract(ctx context.Context, documentID string) ([]domain.DraftClaim, error) {
	doc, err := o.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	rc, err := o.store.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document file: %w", err)
	}
	defer rc.Close()

	total, pages, err := pdftext.ExtractPages(rc, o.cfg.MinPageChars, o.cfg.MaxPages)
	if err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "Extracted text from %d of %d pages", len(pages), total)

	var claims []domain.DraftClaim
	for _, page := range pages {
		extracted, err := o.extractor.ExtractPage(ctx, &extraction.Request{
			PageText: page.Text,
			Prompt:   o.cfg.Prompt,
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.Number, err)
		}
		for i := range extracted {
			claims = append(claims, draftFromExtracted(doc, &page, &extracted[i]))
		}
	}
	return claims, nil
}

// finishSuccess commits the attempt's outcome in one transaction: the
// previous attempt's unreviewed drafts are replaced, the document flips to
// ready, and the job is closed. Claims the user already edited, rejected, or
// published are left untouched; a reprocess must never undo review work.
func (o *Orchestrator) finishSuccess(job *domain.ProcessingJob, documentID string, claims []domain.DraftClaim) error {
	now := time.Now().UTC()
	return o.db.Transaction(func(tx *gorm.DB) error {
		ctx := context.Background()
		claimRepo := o.claimRepo.WithTx(tx)
		if err := claimRepo.DeleteDraftsByDocument(ctx, documentID); err != nil {
			return err
		}
		if err := claimRepo.CreateBatch(ctx, claims); err != nil {
			return err
		}

		if err := tx.Model(&domain.Document{}).Where("id = ?", documentID).Updates(map[string]interface{}{
			"status":                  domain.DocumentStatusReady,
			"error_message":           "",
			"processing_completed_at": now,
		}).Error; err != nil {
			return err
		}

		job.Status = domain.JobStatusSuccess
		job.FinishedAt = &now
		job.ClaimsFound = len(claims)
		return o.jobRepo.WithTx(tx).Update(ctx, job)
	})
}

// finishFailure records a failed attempt. No claims from this attempt are
// visible; the failure is terminal until an explicit re-enqueue.
func (o *Orchestrator) finishFailure(job *domain.ProcessingJob, documentID string, cause error) {
	now := time.Now().UTC()
	err := o.db.Transaction(func(tx *gorm.DB) error {
		ctx := context.Background()
		if err := o.docRepo.WithTx(tx).SetStatus(ctx, documentID, domain.DocumentStatusFailed, cause.Error()); err != nil {
			return err
		}
		job.Status = domain.JobStatusFailure
		job.FinishedAt = &now
		job.ErrorMessage = cause.Error()
		return o.jobRepo.WithTx(tx).Update(ctx, job)
	})
	if err != nil {
		o.logger.WithError(err).WithFields(logger.Fields{
			logger.FieldJobID:      job.ID,
			logger.FieldDocumentID: documentID,
		}).Error("Failed to record job failure")
	}
}

// draftFromExtracted maps one extractor record onto a DraftClaim row,
// inheriting source attribution from the document and falling back to
// document-based URIs when the extractor returned plain entity names.
func draftFromExtracted(doc *domain.Document, page *pdftext.PageText, ext *extraction.Claim) domain.DraftClaim {
	subject := uriOrFallback(ext.Subject, doc, "subject")
	object := ""
	if ext.Object != "" {
		object = uriOrFallback(ext.Object, doc, "object")
	}

	attrs := domain.ClaimAttributes{"howKnown": ext.HowKnown}
	if ext.Confidence != nil {
		attrs["confidence"] = *ext.Confidence
	}
	if ext.Aspect != "" {
		attrs["aspect"] = ext.Aspect
	}
	if ext.Score != nil {
		attrs["score"] = *ext.Score
	}
	if ext.Stars != nil {
		attrs["stars"] = *ext.Stars
	}
	if ext.Amt != nil {
		attrs["amt"] = *ext.Amt
	}
	if ext.Unit != "" {
		attrs["unit"] = ext.Unit
	}
	if ext.HowMeasured != "" {
		attrs["howMeasured"] = ext.HowMeasured
	}

	return domain.DraftClaim{
		ID:          uuid.New().String(),
		DocumentID:  doc.ID,
		Subject:     subject,
		ClaimType:   ext.Claim,
		Object:      object,
		Statement:   ext.Statement,
		SourceURI:   doc.PublicURL,
		PageNumber:  page.Number,
		PageSnippet: truncate(page.Text, 500),
		Attributes:  attrs,
		Status:      domain.ClaimStatusDraft,
	}
}

// uriOrFallback keeps URIs as-is. Plain entity names fall back to the
// document's subject URL when one was provided, otherwise to a fragment of
// the document's own URL so the claim still resolves somewhere.
func uriOrFallback(value string, doc *domain.Document, role string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if role == "subject" && doc.SubjectURL != "" {
		return doc.SubjectURL
	}
	name := truncate(value, 50)
	return fmt.Sprintf("%s#%s-%s", doc.PublicURL, role, strings.ReplaceAll(name, " ", "-"))
}

// truncate shortens s to at most limit bytes, backing up to the nearest rune
// boundary so multi-byte text is never cut mid-rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
