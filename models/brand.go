package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileStatus represents the approval status of a brand or influencer profile
type ProfileStatus string

const (
	ProfileStatusPending  ProfileStatus = "pending"
	ProfileStatusApproved ProfileStatus = "approved"
	ProfileStatusRejected ProfileStatus = "rejected"
)

// String returns the string representation of the status
func (s ProfileStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ProfileStatus) Valid() bool {
	switch s {
	case ProfileStatusPending, ProfileStatusApproved, ProfileStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ProfileStatus
func (s *ProfileStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ProfileStatus(v)
	case []byte:
		*s = ProfileStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ProfileStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ProfileStatus
func (s ProfileStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ProfileStatus: %s", s)
	}
	return string(s), nil
}

// Brand represents a brand profile in the database
type Brand struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uk_brands_uuid" json:"uuid"`
	UserID      uint          `gorm:"not null;uniqueIndex:uk_brands_user_id" json:"user_id"`
	CompanyName string        `gorm:"size:255;not null" json:"company_name"`
	Website     *string       `gorm:"size:512" json:"website,omitempty"`
	Description *string       `gorm:"type:text" json:"description,omitempty"`
	Status      ProfileStatus `gorm:"size:20;not null;default:'pending';index:idx_brands_status" json:"status"`
	CreatedAt   time.Time     `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// TableName returns the table name for the model
func (Brand) TableName() string {
	return "brands"
}

// BeforeCreate is called before creating a new record
func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.Status == "" {
		b.Status = ProfileStatusPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (b *Brand) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	b.UpdatedAt = &now
	return nil
}

// BrandFilter represents filter criteria for brands
type BrandFilter struct {
	ID     *uint          `json:"id,omitempty"`
	UUID   *uuid.UUID     `json:"uuid,omitempty"`
	UserID *uint          `json:"user_id,omitempty"`
	Status *ProfileStatus `json:"status,omitempty"`
}
