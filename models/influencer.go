package models

import (
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Influencer represents an influencer profile in the database
type Influencer struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uk_influencers_uuid" json:"uuid"`
	UserID         uint          `gorm:"not null;uniqueIndex:uk_influencers_user_id" json:"user_id"`
	Name           string        `gorm:"size:255;not null" json:"name"`
	Bio            *string       `gorm:"type:text" json:"bio,omitempty"`
	InstagramURL   *string       `gorm:"size:512" json:"instagram_url,omitempty"`
	YoutubeURL     *string       `gorm:"size:512" json:"youtube_url,omitempty"`
	TiktokURL      *string       `gorm:"size:512" json:"tiktok_url,omitempty"`
	FollowersCount *int64        `json:"followers_count,omitempty"`
	Status         ProfileStatus `gorm:"size:20;not null;default:'pending';index:idx_influencers_status" json:"status"`
	CreatedAt      time.Time     `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt      *time.Time    `json:"updated_at,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// TableName returns the table name for the model
func (Influencer) TableName() string {
	return "influencers"
}

// BeforeCreate is called before creating a new record
func (i *Influencer) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == uuid.Nil {
		i.UUID = uuid.New()
	}
	if i.Status == "" {
		i.Status = ProfileStatusPending
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (i *Influencer) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	i.UpdatedAt = &now
	return nil
}

// InfluencerFilter represents filter criteria for influencers
type InfluencerFilter struct {
	ID     *uint          `json:"id,omitempty"`
	UUID   *uuid.UUID     `json:"uuid,omitempty"`
	UserID *uint          `json:"user_id,omitempty"`
	Status *ProfileStatus `json:"status,omitempty"`
}
