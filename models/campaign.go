package models

import (
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignStatus represents the status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusPublished CampaignStatus = "published"
	CampaignStatusLive      CampaignStatus = "live"
	CampaignStatusClosed    CampaignStatus = "closed"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusPublished,
		CampaignStatusLive, CampaignStatusClosed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Campaign represents a marketplace campaign in the database
type Campaign struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UUID                uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	BrandID             uint           `gorm:"not null;index:idx_campaigns_brand_id" json:"brand_id"`
	Title               string         `gorm:"size:255;not null" json:"title"`
	Description         *string        `gorm:"type:text" json:"description,omitempty"`
	ProductName         *string        `gorm:"size:255" json:"product_name,omitempty"`
	AffiliateURL        string         `gorm:"size:1024;not null" json:"affiliate_url"`
	PurchaseWindowStart time.Time      `gorm:"not null" json:"purchase_window_start"`
	PurchaseWindowEnd   time.Time      `gorm:"not null" json:"purchase_window_end"`
	PostWindowStart     time.Time      `gorm:"not null" json:"post_window_start"`
	PostWindowEnd       time.Time      `gorm:"not null" json:"post_window_end"`
	CommissionAmount    float64        `gorm:"type:numeric(12,2);not null;default:0" json:"commission_amount"`
	ReviewBonus         float64        `gorm:"type:numeric(12,2);not null;default:0" json:"review_bonus"`
	MaxInfluencers      *int           `json:"max_influencers,omitempty"`
	Status              CampaignStatus `gorm:"size:20;not null;default:'draft';index:idx_campaigns_status" json:"status"`
	CreatedAt           time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`

	// Relations
	Brand *Brand `gorm:"foreignKey:BrandID;references:ID" json:"brand,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsEditable checks if the campaign can still be edited by its brand
func (c *Campaign) IsEditable() bool {
	return c.Status == CampaignStatusDraft ||
		c.Status == CampaignStatusPublished
}

// IsOpenForApplications checks whether influencers may apply
func (c *Campaign) IsOpenForApplications() bool {
	return c.Status == CampaignStatusPublished ||
		c.Status == CampaignStatusLive
}

// CanTransitionTo checks if the campaign can transition to the given status
func (c *Campaign) CanTransitionTo(newStatus CampaignStatus) bool {
	switch c.Status {
	case CampaignStatusDraft:
		return newStatus == CampaignStatusPublished ||
			newStatus == CampaignStatusClosed
	case CampaignStatusPublished:
		return newStatus == CampaignStatusLive ||
			newStatus == CampaignStatusClosed
	case CampaignStatusLive:
		return newStatus == CampaignStatusClosed
	default:
		return false
	}
}

// ValidateWindows checks the ordering invariants of the campaign time windows.
// Purchase and post windows must each be non-empty and posting may not open
// before purchasing does.
func (c *Campaign) ValidateWindows() error {
	if !c.PurchaseWindowEnd.After(c.PurchaseWindowStart) {
		return fmt.Errorf("purchase window end must be after its start")
	}
	if !c.PostWindowEnd.After(c.PostWindowStart) {
		return fmt.Errorf("post window end must be after its start")
	}
	if c.PostWindowStart.Before(c.PurchaseWindowStart) {
		return fmt.Errorf("post window cannot open before the purchase window")
	}
	return nil
}

// ValidateAffiliateURL checks that the affiliate link points at a supported store domain.
func (c *Campaign) ValidateAffiliateURL() error {
	return ValidateStoreURL(c.AffiliateURL)
}

// ValidateStoreURL checks that a link points at a supported store domain.
// Campaign affiliate links and per-assignment destination overrides both go
// through this check.
func ValidateStoreURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("affiliate url is not a valid absolute url")
	}
	host := strings.ToLower(u.Hostname())
	if strings.HasPrefix(host, "www.") {
		host = host[4:]
	}
	if host == "amzn.to" || host == "amazon.com" || strings.HasPrefix(host, "amazon.") {
		return nil
	}
	return fmt.Errorf("affiliate url must be an amazon.* or amzn.to link")
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID                    *uint           `json:"id,omitempty"`
	UUID                  *uuid.UUID      `json:"uuid,omitempty"`
	BrandID               *uint           `json:"brand_id,omitempty"`
	Status                *CampaignStatus `json:"status,omitempty"`
	Title                 *string         `json:"title,omitempty"`
	PurchaseWindowStarted *time.Time      `json:"purchase_window_started,omitempty"`
	PostWindowEnded       *time.Time      `json:"post_window_ended,omitempty"`
	CreatedAfter          *time.Time      `json:"created_after,omitempty"`
	CreatedBefore         *time.Time      `json:"created_before,omitempty"`
}
