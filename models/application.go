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

// ApplicationStatus represents the status of a campaign application
type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "applied"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
	ApplicationStatusDeclined    ApplicationStatus = "declined"
)

// String returns the string representation of the status
func (s ApplicationStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusShortlisted,
		ApplicationStatusAccepted, ApplicationStatusDeclined:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ApplicationStatus
func (s *ApplicationStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ApplicationStatus(v)
	case []byte:
		*s = ApplicationStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ApplicationStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ApplicationStatus
func (s ApplicationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ApplicationStatus: %s", s)
	}
	return string(s), nil
}

// IsTerminal reports whether the status permits no further transitions
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusDeclined
}

// Application represents an influencer's application to a campaign.
// A given influencer may hold at most one application per campaign,
// enforced by the composite unique index.
type Application struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uk_applications_uuid" json:"uuid"`
	CampaignID   uint              `gorm:"not null;uniqueIndex:uk_applications_campaign_influencer;index:idx_applications_campaign_id" json:"campaign_id"`
	InfluencerID uint              `gorm:"not null;uniqueIndex:uk_applications_campaign_influencer;index:idx_applications_influencer_id" json:"influencer_id"`
	Answers      json.RawMessage   `gorm:"type:jsonb" json:"answers,omitempty"`
	Message      *string           `gorm:"type:text" json:"message,omitempty"`
	Status       ApplicationStatus `gorm:"size:20;not null;default:'applied';index:idx_applications_status" json:"status"`
	CreatedAt    time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`

	// Relations
	Campaign   *Campaign   `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Influencer *Influencer `gorm:"foreignKey:InfluencerID;references:ID" json:"influencer,omitempty"`
}

// TableName returns the table name for the model
func (Application) TableName() string {
	return "applications"
}

// BeforeCreate is called before creating a new record
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusApplied
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (a *Application) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	a.UpdatedAt = &now
	return nil
}

// CanTransitionTo checks if the application can transition to the given status
func (a *Application) CanTransitionTo(newStatus ApplicationStatus) bool {
	switch a.Status {
	case ApplicationStatusApplied:
		return newStatus == ApplicationStatusShortlisted ||
			newStatus == ApplicationStatusAccepted ||
			newStatus == ApplicationStatusDeclined
	case ApplicationStatusShortlisted:
		return newStatus == ApplicationStatusAccepted ||
			newStatus == ApplicationStatusDeclined
	default:
		return false
	}
}

// ApplicationFilter represents filter criteria for applications
type ApplicationFilter struct {
	ID            *uint              `json:"id,omitempty"`
	UUID          *uuid.UUID         `json:"uuid,omitempty"`
	CampaignID    *uint              `json:"campaign_id,omitempty"`
	InfluencerID  *uint              `json:"influencer_id,omitempty"`
	Status        *ApplicationStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}
