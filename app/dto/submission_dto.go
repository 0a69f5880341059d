package dto

import (
	"time"
)

// SubmitPurchaseProofRequest represents the influencer's purchase evidence
type SubmitPurchaseProofRequest struct {
	AssignmentUUID string     `json:"-"`
	UserID         uint       `json:"-"`
	OrderID        string     `json:"order_id" validate:"required,max=255"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
	Price          float64    `json:"price" validate:"required,gt=0"`
	ScreenshotURLs []string   `json:"screenshot_urls" validate:"required,min=1,dive,url,max=1024"`
	ASIN           *string    `json:"asin,omitempty" validate:"omitempty,max=20"`
}

// SubmitPurchaseProofResponse represents the response after submitting proof
type SubmitPurchaseProofResponse struct {
	Message string           `json:"message"`
	Proof   PurchaseProofDTO `json:"proof"`
}

// ReviewDecisionRequest represents a brand's verdict on a submitted artifact
type ReviewDecisionRequest struct {
	UUID     string  `json:"-"`
	UserID   uint    `json:"-"`
	Decision string  `json:"decision" validate:"required,oneof=approved rejected changes_requested"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ReviewPurchaseProofResponse represents the response after reviewing proof
type ReviewPurchaseProofResponse struct {
	Message          string           `json:"message"`
	Proof            PurchaseProofDTO `json:"proof"`
	AssignmentStatus string           `json:"assignment_status"`
}

// PurchaseProofDTO represents purchase evidence in API responses.
// OrderID is masked unless the reader owns the proof.
type PurchaseProofDTO struct {
	UUID           string     `json:"uuid"`
	AssignmentUUID string     `json:"assignment_uuid,omitempty"`
	OrderID        string     `json:"order_id"`
	OrderDate      *time.Time `json:"order_date,omitempty"`
	Price          float64    `json:"price"`
	ScreenshotURLs []string   `json:"screenshot_urls"`
	ASIN           *string    `json:"asin,omitempty"`
	Status         string     `json:"status"`
	ReviewNotes    *string    `json:"review_notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SubmitPostRequest represents the influencer's published content
type SubmitPostRequest struct {
	AssignmentUUID string  `json:"-"`
	UserID         uint    `json:"-"`
	PostURL        string  `json:"post_url" validate:"required,url,max=1024"`
	Platform       string  `json:"platform" validate:"required,oneof=instagram youtube tiktok twitter"`
	PostType       string  `json:"post_type" validate:"required,oneof=post story reel video"`
	Caption        *string `json:"caption,omitempty" validate:"omitempty,max=5000"`
	ScreenshotURL  *string `json:"screenshot_url,omitempty" validate:"omitempty,url,max=1024"`
}

// SubmitPostResponse represents the response after submitting a post
type SubmitPostResponse struct {
	Message    string            `json:"message"`
	Submission PostSubmissionDTO `json:"submission"`
}

// ReviewPostResponse represents the response after reviewing a post
type ReviewPostResponse struct {
	Message          string            `json:"message"`
	Submission       PostSubmissionDTO `json:"submission"`
	AssignmentStatus string            `json:"assignment_status"`
}

// PostSubmissionDTO represents a content submission in API responses
type PostSubmissionDTO struct {
	UUID           string    `json:"uuid"`
	AssignmentUUID string    `json:"assignment_uuid,omitempty"`
	PostURL        string    `json:"post_url"`
	Platform       string    `json:"platform"`
	PostType       string    `json:"post_type"`
	Caption        *string   `json:"caption,omitempty"`
	ScreenshotURL  *string   `json:"screenshot_url,omitempty"`
	Status         string    `json:"status"`
	ReviewNotes    *string   `json:"review_notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SubmitProductReviewRequest represents the influencer's store review
type SubmitProductReviewRequest struct {
	AssignmentUUID string  `json:"-"`
	UserID         uint    `json:"-"`
	ReviewText     string  `json:"review_text" validate:"required,max=10000"`
	Rating         int     `json:"rating" validate:"required,gte=1,lte=5"`
	ScreenshotURL  *string `json:"screenshot_url,omitempty" validate:"omitempty,url,max=1024"`
}

// SubmitProductReviewResponse represents the response after submitting a review
type SubmitProductReviewResponse struct {
	Message string           `json:"message"`
	Review  ProductReviewDTO `json:"review"`
}

// ReviewProductReviewResponse represents the response after the brand's verdict
type ReviewProductReviewResponse struct {
	Message      string           `json:"message"`
	Review       ProductReviewDTO `json:"review"`
	ReviewStatus string           `json:"review_status"`
}

// ProductReviewDTO represents a product review in API responses
type ProductReviewDTO struct {
	UUID           string    `json:"uuid"`
	AssignmentUUID string    `json:"assignment_uuid,omitempty"`
	ReviewText     string    `json:"review_text"`
	Rating         int       `json:"rating"`
	ScreenshotURL  *string   `json:"screenshot_url,omitempty"`
	Status         string    `json:"status"`
	ReviewNotes    *string   `json:"review_notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
