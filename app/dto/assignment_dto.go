package dto

import (
	"time"
)

// ListAssignmentsRequest represents the request to list assignments
type ListAssignmentsRequest struct {
	UserID   uint    `json:"-"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=purchase_required purchase_review purchase_approved posting post_review completed"`
	Page     int     `json:"page" validate:"omitempty,gte=1"`
	PageSize int     `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListAssignmentsResponse represents the response to list assignments
type ListAssignmentsResponse struct {
	Assignments []AssignmentDTO `json:"assignments"`
	Pagination  Pagination      `json:"pagination"`
}

// GetAssignmentRequest represents the request to fetch a single assignment
type GetAssignmentRequest struct {
	UUID   string `json:"-"`
	UserID uint   `json:"-"`
}

// SetDestinationRequest represents a brand's request to point an assignment's
// tracked link at a different product URL than the campaign default
type SetDestinationRequest struct {
	UUID           string `json:"-"`
	UserID         uint   `json:"-"`
	DestinationURL string `json:"destination_url" validate:"required,max=1024"`
}

// AmazonLinkRequest represents the influencer's request for their tracking link
type AmazonLinkRequest struct {
	UUID   string `json:"-"`
	UserID uint   `json:"-"`
}

// AmazonLinkResponse carries the tracked redirect link for an assignment
type AmazonLinkResponse struct {
	URL           string `json:"url"`
	RedirectToken string `json:"redirect_token"`
}

// AssignmentDTO represents an assignment in API responses
type AssignmentDTO struct {
	UUID          string       `json:"uuid"`
	Status        string       `json:"status"`
	ReviewStatus  string       `json:"review_status"`
	RedirectToken string       `json:"redirect_token,omitempty"`
	Campaign      *CampaignDTO `json:"campaign,omitempty"`
	ClickCount    *int64       `json:"click_count,omitempty"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
