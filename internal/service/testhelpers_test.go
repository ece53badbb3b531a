package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/linkedtrust/claim-extract/internal/domain"
	"github.com/linkedtrust/claim-extract/internal/extraction"
	"github.com/linkedtrust/claim-extract/internal/logger"
	"github.com/linkedtrust/claim-extract/internal/repository"
	"github.com/linkedtrust/claim-extract/internal/trustapi"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "text", Output: io.Discard})
}

func createTestDocument(t *testing.T, db *gorm.DB, status domain.DocumentStatus) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:               uuid.New().String(),
		Filename:         "report.pdf",
		OriginalFilename: "impact-report.pdf",
		StorageKey:       "documents/report.pdf",
		PublicURL:        "http://localhost:8080/files/documents/report.pdf",
		Status:           status,
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("failed to create test document: %v", err)
	}
	return doc
}

func createTestClaim(t *testing.T, db *gorm.DB, documentID string, status domain.ClaimStatus) *domain.DraftClaim {
	t.Helper()
	claim := &domain.DraftClaim{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Subject:    "https://example.org",
		ClaimType:  "impact",
		Statement:  "Provided clean water to 5000 households",
		SourceURI:  "http://localhost:8080/files/documents/report.pdf",
		Status:     status,
	}
	if err := db.Create(claim).Error; err != nil {
		t.Fatalf("failed to create test claim: %v", err)
	}
	return claim
}

// fakeStorage keeps objects in memory. With blockUntilCancel set, Download
// stalls until the caller's context expires.
type fakeStorage struct {
	objects          map[string][]byte
	downloadErr      error
	uploadErr        error
	blockUntilCancel bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.blockUntilCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) GetURL(key string) string {
	return "http://localhost:8080/files/" + key
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

// fakeExtractor returns canned claims or an error.
type fakeExtractor struct {
	claims []extraction.Claim
	err    error
	calls  int
}

func (f *fakeExtractor) ExtractPage(ctx context.Context, req *extraction.Request) ([]extraction.Claim, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

// fakeTrust records published payloads and fails on listed subjects.
type fakeTrust struct {
	published   []*trustapi.ClaimPayload
	failSubject map[string]error
	nextID      int
}

func newFakeTrust() *fakeTrust {
	return &fakeTrust{failSubject: map[string]error{}}
}

func (f *fakeTrust) CreateClaim(ctx context.Context, payload *trustapi.ClaimPayload) (*trustapi.PublishedClaim, error) {
	if err, ok := f.failSubject[payload.Subject]; ok {
		return nil, err
	}
	f.nextID++
	f.published = append(f.published, payload)
	return &trustapi.PublishedClaim{
		ID:  f.nextID,
		URL: "https://dev.linkedtrust.us/claim/" + uuid.New().String(),
	}, nil
}
