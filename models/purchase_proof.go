package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProofStatus represents the review status of a submitted artifact
type ProofStatus string

const (
	ProofStatusPending          ProofStatus = "pending"
	ProofStatusUnderReview      ProofStatus = "under_review"
	ProofStatusApproved         ProofStatus = "approved"
	ProofStatusChangesRequested ProofStatus = "changes_requested"
	ProofStatusRejected         ProofStatus = "rejected"
)

// String returns the string representation of the status
func (s ProofStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ProofStatus) Valid() bool {
	switch s {
	case ProofStatusPending, ProofStatusUnderReview, ProofStatusApproved,
		ProofStatusChangesRequested, ProofStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ProofStatus
func (s *ProofStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ProofStatus(v)
	case []byte:
		*s = ProofStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ProofStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ProofStatus
func (s ProofStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ProofStatus: %s", s)
	}
	return string(s), nil
}

// IsResubmittable reports whether the influencer may replace the artifact
func (s ProofStatus) IsResubmittable() bool {
	return s == ProofStatusChangesRequested || s == ProofStatusRejected
}

// StringList is a jsonb-backed string slice
type StringList []string

// Value implements the driver.Valuer interface for StringList
func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for StringList
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(bytes, l)
}

// PurchaseProof is the influencer's evidence of purchase for an assignment.
// At most one proof row exists per assignment; a rejected proof is replaced
// in place on resubmission.
type PurchaseProof struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uk_purchase_proofs_uuid" json:"uuid"`
	AssignmentID   uint        `gorm:"not null;uniqueIndex:uk_purchase_proofs_assignment_id" json:"assignment_id"`
	InfluencerID   uint        `gorm:"not null;index:idx_purchase_proofs_influencer_id" json:"influencer_id"`
	OrderID        string      `gorm:"size:255;not null" json:"order_id"`
	OrderDate      *time.Time  `json:"order_date,omitempty"`
	Price          float64     `gorm:"type:numeric(12,2);not null" json:"price"`
	ScreenshotURLs StringList  `gorm:"type:jsonb;not null" json:"screenshot_urls"`
	ASIN           *string     `gorm:"size:20" json:"asin,omitempty"`
	Status         ProofStatus `gorm:"size:20;not null;default:'pending';index:idx_purchase_proofs_status" json:"status"`
	ReviewNotes    *string     `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy     *uint       `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt      *time.Time  `json:"updated_at,omitempty"`

	// Relations
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
}

// TableName returns the table name for the model
func (PurchaseProof) TableName() string {
	return "purchase_proofs"
}

// BeforeCreate is called before creating a new record
func (p *PurchaseProof) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProofStatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *PurchaseProof) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// MaskedOrderID returns the order identifier safe for cross-party reads
func (p *PurchaseProof) MaskedOrderID() string {
	return utils.MaskOrderID(p.OrderID)
}

// PurchaseProofFilter represents filter criteria for purchase proofs
type PurchaseProofFilter struct {
	ID           *uint        `json:"id,omitempty"`
	UUID         *uuid.UUID   `json:"uuid,omitempty"`
	AssignmentID *uint        `json:"assignment_id,omitempty"`
	InfluencerID *uint        `json:"influencer_id,omitempty"`
	Status       *ProofStatus `json:"status,omitempty"`
}
