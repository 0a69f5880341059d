package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayoutType classifies what a payout compensates.
// An assignment carries at most one payout of each type, enforced by the
// composite unique index on (assignment_id, type).
type PayoutType string

const (
	PayoutTypeReimbursement PayoutType = "reimbursement"
	PayoutTypeCommission    PayoutType = "commission"
	PayoutTypeReviewBonus   PayoutType = "review_bonus"
)

// String returns the string representation of the type
func (t PayoutType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t PayoutType) Valid() bool {
	switch t {
	case PayoutTypeReimbursement, PayoutTypeCommission, PayoutTypeReviewBonus:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PayoutType
func (t *PayoutType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = PayoutType(v)
	case []byte:
		*t = PayoutType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PayoutType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PayoutType
func (t PayoutType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid PayoutType: %s", t)
	}
	return string(t), nil
}

// PayoutStatus represents the settlement state of a payout
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusPaid       PayoutStatus = "paid"
	PayoutStatusFailed     PayoutStatus = "failed"
	PayoutStatusCancelled  PayoutStatus = "cancelled"
)

// String returns the string representation of the status
func (s PayoutStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusProcessing, PayoutStatusPaid,
		PayoutStatusFailed, PayoutStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PayoutStatus
func (s *PayoutStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PayoutStatus(v)
	case []byte:
		*s = PayoutStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PayoutStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PayoutStatus
func (s PayoutStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PayoutStatus: %s", s)
	}
	return string(s), nil
}

// IsTerminal reports whether the status permits no further transitions
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusPaid || s == PayoutStatusCancelled
}

// CanTransitionTo checks if the payout status can move to the given status.
// A failed payout may be retried back through pending.
func (s PayoutStatus) CanTransitionTo(newStatus PayoutStatus) bool {
	switch s {
	case PayoutStatusPending:
		return newStatus == PayoutStatusProcessing ||
			newStatus == PayoutStatusPaid ||
			newStatus == PayoutStatusFailed ||
			newStatus == PayoutStatusCancelled
	case PayoutStatusProcessing:
		return newStatus == PayoutStatusPaid ||
			newStatus == PayoutStatusFailed
	case PayoutStatusFailed:
		return newStatus == PayoutStatusPending ||
			newStatus == PayoutStatusCancelled
	default:
		return false
	}
}

// Payout is a single ledger entry owed to an influencer for an assignment
type Payout struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_payouts_uuid" json:"uuid"`
	AssignmentID uint         `gorm:"not null;uniqueIndex:uk_payouts_assignment_type;index:idx_payouts_assignment_id" json:"assignment_id"`
	Type         PayoutType   `gorm:"size:20;not null;uniqueIndex:uk_payouts_assignment_type" json:"type"`
	InfluencerID uint         `gorm:"not null;index:idx_payouts_influencer_id" json:"influencer_id"`
	BrandID      uint         `gorm:"not null;index:idx_payouts_brand_id" json:"brand_id"`
	CampaignID   uint         `gorm:"not null;index:idx_payouts_campaign_id" json:"campaign_id"`
	Amount       float64      `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency     string       `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status       PayoutStatus `gorm:"size:20;not null;default:'pending';index:idx_payouts_status" json:"status"`
	Notes        *string      `gorm:"type:text" json:"notes,omitempty"`
	PaidAt       *time.Time   `json:"paid_at,omitempty"`
	PaidBy       *uint        `json:"paid_by,omitempty"`
	CreatedAt    time.Time    `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_payouts_created_at" json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`

	// Relations
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
}

// TableName returns the table name for the model
func (Payout) TableName() string {
	return "payouts"
}

// BeforeCreate is called before creating a new record
func (p *Payout) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PayoutStatusPending
	}
	if p.Currency == "" {
		p.Currency = utils.USDCurrency
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (p *Payout) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// PayoutFilter represents filter criteria for payouts
type PayoutFilter struct {
	ID            *uint         `json:"id,omitempty"`
	UUID          *uuid.UUID    `json:"uuid,omitempty"`
	AssignmentID  *uint         `json:"assignment_id,omitempty"`
	InfluencerID  *uint         `json:"influencer_id,omitempty"`
	BrandID       *uint         `json:"brand_id,omitempty"`
	CampaignID    *uint         `json:"campaign_id,omitempty"`
	Type          *PayoutType   `json:"type,omitempty"`
	Status        *PayoutStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty"`
	CreatedBefore *time.Time    `json:"created_before,omitempty"`
}

// PayoutSummary aggregates ledger totals for an influencer
type PayoutSummary struct {
	PendingTotal   float64            `json:"pending_total"`
	PaidTotal      float64            `json:"paid_total"`
	PendingByType  map[string]float64 `json:"pending_by_type"`
	PendingPayouts int64              `json:"pending_payouts"`
	PaidPayouts    int64              `json:"paid_payouts"`
}
