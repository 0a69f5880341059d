// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
)

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// createAuditLog records an audit trail entry for a flow operation.
// Failures to write the trail never fail the operation itself.
func createAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}

// notifyBrand emits an event to the owner of the campaign's brand account.
// Lookup failures drop the notification silently; delivery is best effort.
func notifyBrand(ctx context.Context, brandRepo repository.BrandRepository, userRepo repository.UserRepository, notifier services.NotificationService, campaign *models.Campaign, eventType services.EventType, amount *float64, notes *string) {
	brand, err := brandRepo.ByID(ctx, campaign.BrandID)
	if err != nil || brand == nil {
		return
	}
	user, err := userRepo.ByID(ctx, brand.UserID)
	if err != nil || user == nil {
		return
	}
	notifier.Emit(ctx, services.Event{
		Type:           eventType,
		RecipientEmail: user.Email,
		RecipientName:  brand.CompanyName,
		CampaignTitle:  campaign.Title,
		Amount:         amount,
		Notes:          notes,
	})
}

// notifyInfluencer emits an event to the influencer's account email
func notifyInfluencer(ctx context.Context, influencerRepo repository.InfluencerRepository, userRepo repository.UserRepository, notifier services.NotificationService, influencerID uint, campaign *models.Campaign, eventType services.EventType, amount *float64, notes *string) {
	influencer, err := influencerRepo.ByID(ctx, influencerID)
	if err != nil || influencer == nil {
		return
	}
	user, err := userRepo.ByID(ctx, influencer.UserID)
	if err != nil || user == nil {
		return
	}
	notifier.Emit(ctx, services.Event{
		Type:           eventType,
		RecipientEmail: user.Email,
		RecipientName:  influencer.Name,
		CampaignTitle:  campaign.Title,
		Amount:         amount,
		Notes:          notes,
	})
}

// normalizePagination applies defaults and bounds to list pagination input
func normalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}

// ToUserDTO converts a user model to UserDTO for API responses
func ToUserDTO(user models.User, brand *models.Brand, influencer *models.Influencer) dto.UserDTO {
	out := dto.UserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Email:     user.Email,
		Role:      user.Role.String(),
		Status:    user.Status.String(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if brand != nil {
		b := ToBrandDTO(*brand)
		out.Brand = &b
	}
	if influencer != nil {
		i := ToInfluencerDTO(*influencer)
		out.Influencer = &i
	}
	return out
}

// ToBrandDTO converts a brand model to BrandDTO
func ToBrandDTO(brand models.Brand) dto.BrandDTO {
	return dto.BrandDTO{
		ID:          brand.ID,
		UUID:        brand.UUID.String(),
		CompanyName: brand.CompanyName,
		Website:     brand.Website,
		Status:      brand.Status.String(),
	}
}

// ToInfluencerDTO converts an influencer model to InfluencerDTO
func ToInfluencerDTO(influencer models.Influencer) dto.InfluencerDTO {
	return dto.InfluencerDTO{
		ID:             influencer.ID,
		UUID:           influencer.UUID.String(),
		Name:           influencer.Name,
		Bio:            influencer.Bio,
		FollowersCount: influencer.FollowersCount,
		Status:         influencer.Status.String(),
	}
}

// ToCampaignDTO converts a campaign model to CampaignDTO
func ToCampaignDTO(campaign models.Campaign) dto.CampaignDTO {
	return dto.CampaignDTO{
		UUID:                campaign.UUID.String(),
		Title:               campaign.Title,
		Description:         campaign.Description,
		ProductName:         campaign.ProductName,
		AffiliateURL:        campaign.AffiliateURL,
		PurchaseWindowStart: campaign.PurchaseWindowStart,
		PurchaseWindowEnd:   campaign.PurchaseWindowEnd,
		PostWindowStart:     campaign.PostWindowStart,
		PostWindowEnd:       campaign.PostWindowEnd,
		CommissionAmount:    campaign.CommissionAmount,
		ReviewBonus:         campaign.ReviewBonus,
		MaxInfluencers:      campaign.MaxInfluencers,
		Status:              campaign.Status.String(),
		CreatedAt:           campaign.CreatedAt,
		UpdatedAt:           campaign.UpdatedAt,
	}
}

// ToApplicationDTO converts an application model to ApplicationDTO
func ToApplicationDTO(application models.Application) dto.ApplicationDTO {
	out := dto.ApplicationDTO{
		UUID:      application.UUID.String(),
		Status:    application.Status.String(),
		Message:   application.Message,
		Answers:   application.Answers,
		CreatedAt: application.CreatedAt,
	}
	if application.Campaign != nil {
		out.CampaignUUID = application.Campaign.UUID.String()
	}
	if application.Influencer != nil {
		i := ToInfluencerDTO(*application.Influencer)
		out.Influencer = &i
	}
	return out
}

// ToAssignmentDTO converts an assignment model to AssignmentDTO.
// The redirect token is only included when includeToken is set, so that
// brands reviewing an assignment never see the influencer's tracking link.
func ToAssignmentDTO(assignment models.Assignment, includeToken bool) dto.AssignmentDTO {
	out := dto.AssignmentDTO{
		UUID:         assignment.UUID.String(),
		Status:       assignment.Status.String(),
		ReviewStatus: assignment.ReviewStatus.String(),
		CompletedAt:  assignment.CompletedAt,
		CreatedAt:    assignment.CreatedAt,
	}
	if includeToken {
		out.RedirectToken = assignment.RedirectToken
	}
	if assignment.Campaign != nil {
		c := ToCampaignDTO(*assignment.Campaign)
		out.Campaign = &c
	}
	return out
}

// ToPurchaseProofDTO converts a purchase proof model to PurchaseProofDTO.
// The order identifier is masked unless the reader owns the proof.
func ToPurchaseProofDTO(proof models.PurchaseProof, unmasked bool) dto.PurchaseProofDTO {
	orderID := proof.MaskedOrderID()
	if unmasked {
		orderID = proof.OrderID
	}
	out := dto.PurchaseProofDTO{
		UUID:           proof.UUID.String(),
		OrderID:        orderID,
		OrderDate:      proof.OrderDate,
		Price:          proof.Price,
		ScreenshotURLs: proof.ScreenshotURLs,
		ASIN:           proof.ASIN,
		Status:         proof.Status.String(),
		ReviewNotes:    proof.ReviewNotes,
		CreatedAt:      proof.CreatedAt,
	}
	if proof.Assignment != nil {
		out.AssignmentUUID = proof.Assignment.UUID.String()
	}
	return out
}

// ToPostSubmissionDTO converts a post submission model to PostSubmissionDTO
func ToPostSubmissionDTO(submission models.PostSubmission) dto.PostSubmissionDTO {
	out := dto.PostSubmissionDTO{
		UUID:          submission.UUID.String(),
		PostURL:       submission.PostURL,
		Platform:      string(submission.Platform),
		PostType:      string(submission.PostType),
		Caption:       submission.Caption,
		ScreenshotURL: submission.ScreenshotURL,
		Status:        submission.Status.String(),
		ReviewNotes:   submission.ReviewNotes,
		CreatedAt:     submission.CreatedAt,
	}
	if submission.Assignment != nil {
		out.AssignmentUUID = submission.Assignment.UUID.String()
	}
	return out
}

// ToProductReviewDTO converts a product review model to ProductReviewDTO
func ToProductReviewDTO(review models.ProductReview) dto.ProductReviewDTO {
	out := dto.ProductReviewDTO{
		UUID:          review.UUID.String(),
		ReviewText:    review.ReviewText,
		Rating:        review.Rating,
		ScreenshotURL: review.ScreenshotURL,
		Status:        review.Status.String(),
		ReviewNotes:   review.ReviewNotes,
		CreatedAt:     review.CreatedAt,
	}
	if review.Assignment != nil {
		out.AssignmentUUID = review.Assignment.UUID.String()
	}
	return out
}

// ToPayoutDTO converts a payout model to PayoutDTO
func ToPayoutDTO(payout models.Payout) dto.PayoutDTO {
	out := dto.PayoutDTO{
		UUID:      payout.UUID.String(),
		Type:      payout.Type.String(),
		Amount:    payout.Amount,
		Currency:  payout.Currency,
		Status:    payout.Status.String(),
		Notes:     payout.Notes,
		PaidAt:    payout.PaidAt,
		CreatedAt: payout.CreatedAt,
	}
	if payout.Assignment != nil {
		out.AssignmentUUID = payout.Assignment.UUID.String()
	}
	return out
}
