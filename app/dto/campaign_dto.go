package dto

import (
	"time"
)

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	UserID              uint      `json:"-"`
	Title               string    `json:"title" validate:"required,max=255"`
	Description         *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	ProductName         *string   `json:"product_name,omitempty" validate:"omitempty,max=255"`
	AffiliateURL        string    `json:"affiliate_url" validate:"required,url,max=1024"`
	PurchaseWindowStart time.Time `json:"purchase_window_start" validate:"required"`
	PurchaseWindowEnd   time.Time `json:"purchase_window_end" validate:"required"`
	PostWindowStart     time.Time `json:"post_window_start" validate:"required"`
	PostWindowEnd       time.Time `json:"post_window_end" validate:"required"`
	CommissionAmount    float64   `json:"commission_amount" validate:"gte=0"`
	ReviewBonus         float64   `json:"review_bonus" validate:"gte=0"`
	MaxInfluencers      *int      `json:"max_influencers,omitempty" validate:"omitempty,gt=0"`
}

// CreateCampaignResponse represents the response to create a new campaign
type CreateCampaignResponse struct {
	Message  string      `json:"message"`
	Campaign CampaignDTO `json:"campaign"`
}

// UpdateCampaignRequest represents the request to update an existing campaign
type UpdateCampaignRequest struct {
	UUID                string     `json:"-"`
	UserID              uint       `json:"-"`
	Title               *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Description         *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	ProductName         *string    `json:"product_name,omitempty" validate:"omitempty,max=255"`
	AffiliateURL        *string    `json:"affiliate_url,omitempty" validate:"omitempty,url,max=1024"`
	PurchaseWindowStart *time.Time `json:"purchase_window_start,omitempty"`
	PurchaseWindowEnd   *time.Time `json:"purchase_window_end,omitempty"`
	PostWindowStart     *time.Time `json:"post_window_start,omitempty"`
	PostWindowEnd       *time.Time `json:"post_window_end,omitempty"`
	CommissionAmount    *float64   `json:"commission_amount,omitempty" validate:"omitempty,gte=0"`
	ReviewBonus         *float64   `json:"review_bonus,omitempty" validate:"omitempty,gte=0"`
	MaxInfluencers      *int       `json:"max_influencers,omitempty" validate:"omitempty,gt=0"`
}

// UpdateCampaignResponse represents the response to update an existing campaign
type UpdateCampaignResponse struct {
	Message  string      `json:"message"`
	Campaign CampaignDTO `json:"campaign"`
}

// PublishCampaignRequest represents the request to move a campaign forward
type PublishCampaignRequest struct {
	UUID   string `json:"-"`
	UserID uint   `json:"-"`
	Status string `json:"status" validate:"required,oneof=published live closed"`
}

// PublishCampaignResponse represents the response to a status change
type PublishCampaignResponse struct {
	Message  string      `json:"message"`
	Campaign CampaignDTO `json:"campaign"`
}

// DeleteCampaignRequest represents the admin force-delete request
type DeleteCampaignRequest struct {
	UUID   string `json:"-"`
	UserID uint   `json:"-"`
}

// DeleteCampaignResponse represents the response to a delete
type DeleteCampaignResponse struct {
	Message string `json:"message"`
}

// ListCampaignsRequest represents the request to list campaigns
type ListCampaignsRequest struct {
	UserID   uint    `json:"-"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=draft published live closed"`
	Page     int     `json:"page" validate:"omitempty,gte=1"`
	PageSize int     `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListCampaignsResponse represents the response to list campaigns
type ListCampaignsResponse struct {
	Campaigns  []CampaignDTO `json:"campaigns"`
	Pagination Pagination    `json:"pagination"`
}

// GetCampaignRequest represents the request to fetch a single campaign
type GetCampaignRequest struct {
	UUID   string `json:"-"`
	UserID uint   `json:"-"`
}

// CampaignDTO represents a campaign in API responses
type CampaignDTO struct {
	UUID                string     `json:"uuid"`
	Title               string     `json:"title"`
	Description         *string    `json:"description,omitempty"`
	ProductName         *string    `json:"product_name,omitempty"`
	AffiliateURL        string     `json:"affiliate_url"`
	PurchaseWindowStart time.Time  `json:"purchase_window_start"`
	PurchaseWindowEnd   time.Time  `json:"purchase_window_end"`
	PostWindowStart     time.Time  `json:"post_window_start"`
	PostWindowEnd       time.Time  `json:"post_window_end"`
	CommissionAmount    float64    `json:"commission_amount"`
	ReviewBonus         float64    `json:"review_bonus"`
	MaxInfluencers      *int       `json:"max_influencers,omitempty"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}
