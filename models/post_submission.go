package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostPlatform represents the social platform a content piece was published on
type PostPlatform string

const (
	PostPlatformInstagram PostPlatform = "instagram"
	PostPlatformYoutube   PostPlatform = "youtube"
	PostPlatformTiktok    PostPlatform = "tiktok"
	PostPlatformTwitter   PostPlatform = "twitter"
)

// Valid checks if the platform is valid
func (p PostPlatform) Valid() bool {
	switch p {
	case PostPlatformInstagram, PostPlatformYoutube, PostPlatformTiktok, PostPlatformTwitter:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PostPlatform
func (p *PostPlatform) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = PostPlatform(v)
	case []byte:
		*p = PostPlatform(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PostPlatform", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PostPlatform
func (p PostPlatform) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid PostPlatform: %s", p)
	}
	return string(p), nil
}

// PostType represents the content format of a submission
type PostType string

const (
	PostTypePost  PostType = "post"
	PostTypeStory PostType = "story"
	PostTypeReel  PostType = "reel"
	PostTypeVideo PostType = "video"
)

// Valid checks if the post type is valid
func (t PostType) Valid() bool {
	switch t {
	case PostTypePost, PostTypeStory, PostTypeReel, PostTypeVideo:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PostType
func (t *PostType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = PostType(v)
	case []byte:
		*t = PostType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PostType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PostType
func (t PostType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid PostType: %s", t)
	}
	return string(t), nil
}

// PostSubmission is the influencer's published content for an assignment.
// One active submission per assignment; rejections are resubmitted in place.
type PostSubmission struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_post_submissions_uuid" json:"uuid"`
	AssignmentID  uint         `gorm:"not null;uniqueIndex:uk_post_submissions_assignment_id" json:"assignment_id"`
	InfluencerID  uint         `gorm:"not null;index:idx_post_submissions_influencer_id" json:"influencer_id"`
	CampaignID    uint         `gorm:"not null;index:idx_post_submissions_campaign_id" json:"campaign_id"`
	PostURL       string       `gorm:"size:1024;not null" json:"post_url"`
	Platform      PostPlatform `gorm:"size:20;not null" json:"platform"`
	PostType      PostType     `gorm:"size:20;not null" json:"post_type"`
	Caption       *string      `gorm:"type:text" json:"caption,omitempty"`
	ScreenshotURL *string      `gorm:"size:1024" json:"screenshot_url,omitempty"`
	Status        ProofStatus  `gorm:"size:20;not null;default:'pending';index:idx_post_submissions_status" json:"status"`
	ReviewNotes   *string      `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedBy    *uint        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     *time.Time   `json:"updated_at,omitempty"`

	// Relations
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
}

// TableName returns the table name for the model
func (PostSubmission) TableName() string {
	return "post_submissions"
}

// BeforeCreate is called before creating a new record
func (p *PostSubmission) BeforeCreate(tx *gorm.DB) error {
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
func (p *PostSubmission) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	p.UpdatedAt = &now
	return nil
}

// PostSubmissionFilter represents filter criteria for post submissions
type PostSubmissionFilter struct {
	ID           *uint        `json:"id,omitempty"`
	UUID         *uuid.UUID   `json:"uuid,omitempty"`
	AssignmentID *uint        `json:"assignment_id,omitempty"`
	InfluencerID *uint        `json:"influencer_id,omitempty"`
	CampaignID   *uint        `json:"campaign_id,omitempty"`
	Status       *ProofStatus `json:"status,omitempty"`
}
