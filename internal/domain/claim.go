package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ClaimStatus represents the review status of a draft claim.
// Values include ClaimStatusDraft, ClaimStatusEdited, ClaimStatusPublished,
// and ClaimStatusRejected.
type ClaimStatus string

const (
	ClaimStatusDraft     ClaimStatus = "draft"
	ClaimStatusEdited    ClaimStatus = "edited"
	ClaimStatusPublished ClaimStatus = "published"
	ClaimStatusRejected  ClaimStatus = "rejected"
)

// ClaimAttributes is a custom type for storing optional claim fields
// (howKnown, confidence, aspect, score, stars, amt, unit, howMeasured) as
// JSON in the database.
type ClaimAttributes map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded representation of the map.
//   - error: non-nil if marshaling fails.
func (a ClaimAttributes) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *ClaimAttributes) Scan(value interface{}) error {
	if value == nil {
		*a = ClaimAttributes{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan ClaimAttributes")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// DraftClaim represents one locally held, editable claim extracted from a
// document. A claim in status published must not be mutated further.
type DraftClaim struct {
	ID         string `gorm:"type:text;primaryKey" json:"id"`
	DocumentID string `gorm:"type:text;not null;index:idx_draft_claims_document" json:"document_id"`

	// Core linked-claim triple. Subject and Object are URIs; ClaimType is the
	// predicate (impact, rated, same_as, ...).
	Subject   string `gorm:"type:text;not null" json:"subject"`
	ClaimType string `gorm:"type:text" json:"claim_type,omitempty"`
	Object    string `gorm:"type:text" json:"object,omitempty"`
	Statement string `gorm:"type:text;not null" json:"statement"`

	// Source attribution inherited from the owning document.
	SourceURI   string `gorm:"type:text" json:"source_uri"`
	PageNumber  int    `json:"page_number,omitempty"`
	PageSnippet string `gorm:"type:text" json:"page_snippet,omitempty"`

	Attributes ClaimAttributes `gorm:"type:text" json:"attributes,omitempty"`

	Status      ClaimStatus `gorm:"type:text;index:idx_draft_claims_status;default:draft" json:"status"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`

	// RemoteURL is the claim's URI on the trust graph after publication.
	RemoteURL string `gorm:"type:text" json:"remote_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for DraftClaim.
func (DraftClaim) TableName() string {
	return "draft_claims"
}

// Publishable reports whether the claim may still be sent to the trust graph.
func (c *DraftClaim) Publishable() bool {
	return c.Status == ClaimStatusDraft || c.Status == ClaimStatusEdited
}
