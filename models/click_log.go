package models

import (
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"gorm.io/gorm"
)

// ClickLog is one append-only attribution record per redirect.
// Only the salted hash of the visitor IP is stored, never the raw address,
// and rows are never updated or deduplicated.
type ClickLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index:idx_click_logs_assignment_id" json:"assignment_id"`
	IPHash       *string   `gorm:"size:64;index:idx_click_logs_ip_hash" json:"ip_hash,omitempty"`
	UserAgent    *string   `gorm:"type:text" json:"user_agent,omitempty"`
	Referrer     *string   `gorm:"size:1024" json:"referrer,omitempty"`
	ClickedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_click_logs_clicked_at" json:"clicked_at"`

	// Relations
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
}

// TableName returns the table name for the model
func (ClickLog) TableName() string {
	return "click_logs"
}

// BeforeCreate is called before creating a new record
func (c *ClickLog) BeforeCreate(tx *gorm.DB) error {
	if c.ClickedAt.IsZero() {
		c.ClickedAt = utils.UTCNow()
	}
	return nil
}

// ClickLogFilter represents filter criteria for click logs
type ClickLogFilter struct {
	ID            *uint      `json:"id,omitempty"`
	AssignmentID  *uint      `json:"assignment_id,omitempty"`
	IPHash        *string    `json:"ip_hash,omitempty"`
	ClickedAfter  *time.Time `json:"clicked_after,omitempty"`
	ClickedBefore *time.Time `json:"clicked_before,omitempty"`
}
