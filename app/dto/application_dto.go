package dto

import (
	"encoding/json"
	"time"
)

// ApplyRequest represents an influencer's application to a campaign
type ApplyRequest struct {
	UserID       uint            `json:"-"`
	CampaignUUID string          `json:"campaign_uuid" validate:"required,uuid4"`
	Message      *string         `json:"message,omitempty" validate:"omitempty,max=2000"`
	Answers      json.RawMessage `json:"answers,omitempty"`
}

// ApplyResponse represents the response after applying
type ApplyResponse struct {
	Message     string         `json:"message"`
	Application ApplicationDTO `json:"application"`
}

// UpdateApplicationStatusRequest represents a brand's decision on an application
type UpdateApplicationStatusRequest struct {
	UUID   string `json:"-"`
	UserID uint   `json:"-"`
	Status string `json:"status" validate:"required,oneof=shortlisted accepted declined"`
}

// UpdateApplicationStatusResponse represents the response to a decision.
// When the application is accepted the newly created assignment is included.
type UpdateApplicationStatusResponse struct {
	Message     string         `json:"message"`
	Application ApplicationDTO `json:"application"`
	Assignment  *AssignmentDTO `json:"assignment,omitempty"`
}

// ListApplicationsRequest represents the request to list a campaign's applications
type ListApplicationsRequest struct {
	UserID       uint    `json:"-"`
	CampaignUUID string  `json:"-"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=applied shortlisted accepted declined"`
	Page         int     `json:"page" validate:"omitempty,gte=1"`
	PageSize     int     `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListApplicationsResponse represents the response to list applications
type ListApplicationsResponse struct {
	Applications []ApplicationDTO `json:"applications"`
	Pagination   Pagination       `json:"pagination"`
}

// ApplicationDTO represents an application in API responses
type ApplicationDTO struct {
	UUID         string          `json:"uuid"`
	CampaignUUID string          `json:"campaign_uuid,omitempty"`
	Status       string          `json:"status"`
	Message      *string         `json:"message,omitempty"`
	Answers      json.RawMessage `json:"answers,omitempty"`
	Influencer   *InfluencerDTO  `json:"influencer,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
