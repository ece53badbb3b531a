package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/extraction"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// memStore keeps uploaded objects in memory.
type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) GetURL(key string) string {
	return "http://localhost:8080/files/" + key
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

type nullExtractor struct{}

func (nullExtractor) ExtractPage(ctx context.Context, req *extraction.Request) ([]extraction.Claim, error) {
	return nil, nil
}

// newUploadFixture wires a document handler onto a temp-file database. The
// orchestrator is never started, so queued jobs stay in the channel.
func newUploadFixture(t *testing.T, queueSize int) (*DocumentHandler, *gorm.DB, *service.Orchestrator) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	log := logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
	docRepo := repository.NewDocumentRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	jobRepo := repository.NewJobRepository(db)
	store := &memStore{objects: map[string][]byte{}}

	docs := service.NewDocumentService(docRepo, claimRepo, store, log, &service.DocumentConfig{
		MaxSizeMB:         1,
		AllowedExtensions: []string{".pdf"},
	})
	orch := service.NewOrchestrator(db, docRepo, claimRepo, jobRepo, store, nullExtractor{}, log,
		service.OrchestratorConfig{Workers: 1, QueueSize: queueSize})

	return NewDocumentHandler(docs, orch), db, orch
}

func doUpload(t *testing.T, h *DocumentHandler, ctx context.Context, fields map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "impact-report.pdf")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	fw.Write([]byte("%PDF-1.4 test"))
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest("POST", "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.Request = req.WithContext(ctx)

	h.Upload(c)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestUploadSchedulesExtraction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := newUploadFixture(t, 4)

	rec, body := doUpload(t, h, context.Background(), nil)
	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if body["document"] == nil {
		t.Error("response missing document")
	}
	if id, _ := body["job_id"].(string); id == "" {
		t.Error("response missing job_id")
	}
	if _, ok := body["process_error"]; ok {
		t.Errorf("unexpected process_error: %v", body["process_error"])
	}
}

func TestUploadSkipsProcessingOnOptOut(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, _ := newUploadFixture(t, 4)

	rec, body := doUpload(t, h, context.Background(), map[string]string{"process": "false"})
	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if _, ok := body["job_id"]; ok {
		t.Error("opt-out upload still scheduled a job")
	}
	if _, ok := body["process_error"]; ok {
		t.Errorf("unexpected process_error: %v", body["process_error"])
	}
}

func TestUploadReportsSchedulingFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, db, orch := newUploadFixture(t, 1)

	// Fill the only queue slot with a job for another document so the
	// upload's enqueue can never complete before its deadline.
	filler := &domain.Document{
		ID:               uuid.New().String(),
		Filename:         "filler.pdf",
		OriginalFilename: "filler.pdf",
		StorageKey:       "documents/filler.pdf",
		PublicURL:        "http://localhost:8080/files/documents/filler.pdf",
		Status:           domain.DocumentStatusUploaded,
	}
	if err := db.Create(filler).Error; err != nil {
		t.Fatalf("failed to create filler document: %v", err)
	}
	if _, err := orch.Enqueue(context.Background(), filler.ID); err != nil {
		t.Fatalf("failed to fill queue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec, body := doUpload(t, h, ctx, nil)
	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201 with the document despite scheduling failure", rec.Code)
	}
	if body["document"] == nil {
		t.Error("response missing document")
	}
	if _, ok := body["job_id"]; ok {
		t.Error("response carries a job_id although scheduling failed")
	}
	if msg, _ := body["process_error"].(string); msg == "" {
		t.Error("response missing process_error for the failed schedule")
	}
}
