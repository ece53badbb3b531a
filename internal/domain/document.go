package domain

import "time"

// DocumentStatus represents the processing status of an uploaded document.
// Values include DocumentStatusUploaded, DocumentStatusProcessing,
// DocumentStatusReady, and DocumentStatusFailed.
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document represents one uploaded PDF and its progress through claim
// extraction. Status moves uploaded -> processing -> ready|failed; a failed
// document may be re-enqueued, which resets it to processing.
type Document struct {
	ID               string         `gorm:"type:text;primaryKey" json:"id"`
	Filename         string         `gorm:"type:text;not null" json:"filename"`
	OriginalFilename string         `gorm:"type:text;not null" json:"original_filename"`
	StorageKey       string         `gorm:"type:text;not null" json:"storage_key"`

	// PublicURL is the externally reachable URL of the stored file. It becomes
	// the sourceURI of every claim extracted from this document.
	PublicURL string `gorm:"type:text;not null" json:"public_url"`

	// SubjectURL is the organization/subject URL used as the default claim
	// subject when the extractor returns a non-URI subject.
	SubjectURL string `gorm:"type:text" json:"subject_url,omitempty"`

	EffectiveDate time.Time      `json:"effective_date"`
	UploadTime    time.Time      `json:"upload_time"`
	Status        DocumentStatus `gorm:"type:text;index:idx_documents_status;default:uploaded" json:"status"`
	ErrorMessage  string         `gorm:"type:text" json:"error_message,omitempty"`

	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Claims []DraftClaim    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Jobs   []ProcessingJob `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string {
	return "documents"
}
