package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentStatus represents the primary lifecycle state of an assignment.
// The machine moves strictly forward except for the two reopen edges taken
// when a brand rejects a submission.
type AssignmentStatus string

const (
	AssignmentStatusPurchaseRequired AssignmentStatus = "purchase_required"
	AssignmentStatusPurchaseReview   AssignmentStatus = "purchase_review"
	AssignmentStatusPurchaseApproved AssignmentStatus = "purchase_approved"
	AssignmentStatusPosting          AssignmentStatus = "posting"
	AssignmentStatusPostReview       AssignmentStatus = "post_review"
	AssignmentStatusCompleted        AssignmentStatus = "completed"
)

// String returns the string representation of the status
func (s AssignmentStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusPurchaseRequired, AssignmentStatusPurchaseReview,
		AssignmentStatusPurchaseApproved, AssignmentStatusPosting,
		AssignmentStatusPostReview, AssignmentStatusCompleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AssignmentStatus
func (s *AssignmentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AssignmentStatus(v)
	case []byte:
		*s = AssignmentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AssignmentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AssignmentStatus
func (s AssignmentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AssignmentStatus: %s", s)
	}
	return string(s), nil
}

// CanTransitionTo checks if the assignment status can move to the given status
func (s AssignmentStatus) CanTransitionTo(newStatus AssignmentStatus) bool {
	switch s {
	case AssignmentStatusPurchaseRequired:
		return newStatus == AssignmentStatusPurchaseReview
	case AssignmentStatusPurchaseReview:
		return newStatus == AssignmentStatusPurchaseApproved ||
			newStatus == AssignmentStatusPurchaseRequired
	case AssignmentStatusPurchaseApproved:
		return newStatus == AssignmentStatusPosting ||
			newStatus == AssignmentStatusPostReview
	case AssignmentStatusPosting:
		return newStatus == AssignmentStatusPostReview
	case AssignmentStatusPostReview:
		return newStatus == AssignmentStatusCompleted ||
			newStatus == AssignmentStatusPosting
	default:
		return false
	}
}

// ReviewStatus represents the secondary product review machine that runs
// independently of the primary lifecycle once the assignment is completed.
type ReviewStatus string

const (
	ReviewStatusNone     ReviewStatus = "none"
	ReviewStatusReview   ReviewStatus = "review"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// String returns the string representation of the status
func (s ReviewStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusNone, ReviewStatusReview, ReviewStatusApproved, ReviewStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ReviewStatus
func (s *ReviewStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ReviewStatus(v)
	case []byte:
		*s = ReviewStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ReviewStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ReviewStatus
func (s ReviewStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ReviewStatus: %s", s)
	}
	return string(s), nil
}

// CanTransitionTo checks if the review status can move to the given status.
// A rejected review may be resubmitted, which puts it back under review.
func (s ReviewStatus) CanTransitionTo(newStatus ReviewStatus) bool {
	switch s {
	case ReviewStatusNone:
		return newStatus == ReviewStatusReview
	case ReviewStatusReview:
		return newStatus == ReviewStatusApproved || newStatus == ReviewStatusRejected
	case ReviewStatusRejected:
		return newStatus == ReviewStatusReview
	default:
		return false
	}
}

// Assignment binds an accepted influencer to a campaign and tracks their
// progress through purchase, posting and review. Exactly one assignment
// exists per accepted application.
type Assignment struct {
	ID                   uint             `gorm:"primaryKey" json:"id"`
	UUID                 uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_assignments_uuid" json:"uuid"`
	CampaignID           uint             `gorm:"not null;index:idx_assignments_campaign_id" json:"campaign_id"`
	InfluencerID         uint             `gorm:"not null;index:idx_assignments_influencer_id" json:"influencer_id"`
	ApplicationID        uint             `gorm:"not null;uniqueIndex:uk_assignments_application_id" json:"application_id"`
	Status               AssignmentStatus `gorm:"size:30;not null;default:'purchase_required';index:idx_assignments_status" json:"status"`
	ReviewStatus         ReviewStatus     `gorm:"size:20;not null;default:'none'" json:"review_status"`
	RedirectToken        string           `gorm:"size:32;not null;uniqueIndex:uk_assignments_redirect_token" json:"redirect_token"`
	AffiliateURLOverride *string          `gorm:"size:1024" json:"affiliate_url_override,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	CreatedAt            time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt            *time.Time       `json:"updated_at,omitempty"`

	// Relations
	Campaign    *Campaign    `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Influencer  *Influencer  `gorm:"foreignKey:InfluencerID;references:ID" json:"influencer,omitempty"`
	Application *Application `gorm:"foreignKey:ApplicationID;references:ID" json:"application,omitempty"`
}

// TableName returns the table name for the model
func (Assignment) TableName() string {
	return "assignments"
}

// BeforeCreate is called before creating a new record.
// The redirect token is minted once here and never rotated afterwards.
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AssignmentStatusPurchaseRequired
	}
	if a.ReviewStatus == "" {
		a.ReviewStatus = ReviewStatusNone
	}
	if a.RedirectToken == "" {
		a.RedirectToken = utils.NewRedirectToken()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *Assignment) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	a.UpdatedAt = &now
	return nil
}

// DestinationURL returns the link a click on the redirect token resolves to
func (a *Assignment) DestinationURL(campaign *Campaign) string {
	if a.AffiliateURLOverride != nil && *a.AffiliateURLOverride != "" {
		return *a.AffiliateURLOverride
	}
	if campaign != nil {
		return campaign.AffiliateURL
	}
	return ""
}

// AssignmentFilter represents filter criteria for assignments
type AssignmentFilter struct {
	ID            *uint             `json:"id,omitempty"`
	UUID          *uuid.UUID        `json:"uuid,omitempty"`
	CampaignID    *uint             `json:"campaign_id,omitempty"`
	CampaignIDs   []uint            `json:"campaign_ids,omitempty"`
	InfluencerID  *uint             `json:"influencer_id,omitempty"`
	ApplicationID *uint             `json:"application_id,omitempty"`
	Status        *AssignmentStatus `json:"status,omitempty"`
	ReviewStatus  *ReviewStatus     `json:"review_status,omitempty"`
	RedirectToken *string           `json:"redirect_token,omitempty"`
	CreatedAfter  *time.Time        `json:"created_after,omitempty"`
	CreatedBefore *time.Time        `json:"created_before,omitempty"`
}
