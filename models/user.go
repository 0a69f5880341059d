// Package models contains domain entities and business models for the marketplace
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole represents the role of a platform account
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleBrand      UserRole = "brand"
	UserRoleInfluencer UserRole = "influencer"
)

// String returns the string representation of the role
func (r UserRole) String() string {
	return string(r)
}

// Valid checks if the role is valid
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleBrand, UserRoleInfluencer:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserRole
func (r *UserRole) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*r = UserRole(v)
	case []byte:
		*r = UserRole(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for UserRole
func (r UserRole) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid UserRole: %s", r)
	}
	return string(r), nil
}

// UserStatus represents the lifecycle status of an account
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// String returns the string representation of the status
func (s UserStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusSuspended, UserStatusDeleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserStatus
func (s *UserStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = UserStatus(v)
	case []byte:
		*s = UserStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for UserStatus
func (s UserStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid UserStatus: %s", s)
	}
	return string(s), nil
}

// User represents a platform account in the database
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;index:idx_users_role" json:"role"`
	Status       UserStatus `gorm:"size:20;not null;default:'pending';index:idx_users_status" json:"status"`
	CreatedAt    time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	DeletedAt    *time.Time `gorm:"index:idx_users_deleted_at" json:"deleted_at,omitempty"`
}

// TableName returns the table name for the model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before creating a new record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.Status == "" {
		u.Status = UserStatusPending
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	u.UpdatedAt = &now
	return nil
}

// IsActive checks whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && u.DeletedAt == nil
}

// UserFilter represents filter criteria for users
type UserFilter struct {
	ID            *uint       `json:"id,omitempty"`
	UUID          *uuid.UUID  `json:"uuid,omitempty"`
	Email         *string     `json:"email,omitempty"`
	Role          *UserRole   `json:"role,omitempty"`
	Status        *UserStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time  `json:"created_after,omitempty"`
	CreatedBefore *time.Time  `json:"created_before,omitempty"`
}
