package models

import (
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductReview is the store review an influencer leaves after completing
// an assignment. One row per assignment, replaced in place on resubmission.
type ProductReview struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uk_product_reviews_uuid" json:"uuid"`
	AssignmentID  uint        `gorm:"not null;uniqueIndex:uk_product_reviews_assignment_id" json:"assignment_id"`
	InfluencerID  uint        `gorm:"not null;index:idx_product_reviews_influencer_id" json:"influencer_id"`
	ReviewText    string      `gorm:"type:text;not null" json:"review_text"`
	Rating        int         `gorm:"not null" json:"rating"`
	ScreenshotURL *string     `gorm:"size:1024" json:"screenshot_url,omitempty"`
	Status        ProofStatus `gorm:"size:20;not null;default:'pending';index:idx_product_reviews_status" json:"status"`
	ReviewNotes   *string     `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy    *uint       `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     *time.Time  `json:"updated_at,omitempty"`

	// Relations
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
}

// TableName returns the table name for the model
func (ProductReview) TableName() string {
	return "product_reviews"
}

// BeforeCreate is called before creating a new record
func (r *ProductReview) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ProofStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (r *ProductReview) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	r.UpdatedAt = &now
	return nil
}

// RatingValid checks the rating bounds
func (r *ProductReview) RatingValid() bool {
	return r.Rating >= utils.MinReviewRating && r.Rating <= utils.MaxReviewRating
}

// ProductReviewFilter represents filter criteria for product reviews
type ProductReviewFilter struct {
	ID           *uint        `json:"id,omitempty"`
	UUID         *uuid.UUID   `json:"uuid,omitempty"`
	AssignmentID *uint        `json:"assignment_id,omitempty"`
	InfluencerID *uint        `json:"influencer_id,omitempty"`
	Status       *ProofStatus `json:"status,omitempty"`
}
