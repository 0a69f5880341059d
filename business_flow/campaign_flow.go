package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignFlow defines campaign lifecycle operations for brands and admins
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error)
	PublishCampaign(ctx context.Context, req *dto.PublishCampaignRequest, metadata *ClientMetadata) (*dto.PublishCampaignResponse, error)
	DeleteCampaign(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, req *dto.GetCampaignRequest) (*dto.CampaignDTO, error)
}

// CampaignFlowImpl implements CampaignFlow
type CampaignFlowImpl struct {
	guard          *AccessControl
	campaignRepo   repository.CampaignRepository
	assignmentRepo repository.AssignmentRepository
	auditRepo      repository.AuditLogRepository
	db             *gorm.DB
}

// NewCampaignFlow constructs a CampaignFlow
func NewCampaignFlow(
	guard *AccessControl,
	campaignRepo repository.CampaignRepository,
	assignmentRepo repository.AssignmentRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		guard:          guard,
		campaignRepo:   campaignRepo,
		assignmentRepo: assignmentRepo,
		auditRepo:      auditRepo,
		db:             db,
	}
}

// CreateCampaign creates a new draft campaign for the calling brand
func (f *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.IsBrand() {
		return nil, ErrAccessDenied
	}

	campaign := &models.Campaign{
		BrandID:             actor.Brand.ID,
		Title:               req.Title,
		Description:         req.Description,
		ProductName:         req.ProductName,
		AffiliateURL:        req.AffiliateURL,
		PurchaseWindowStart: req.PurchaseWindowStart,
		PurchaseWindowEnd:   req.PurchaseWindowEnd,
		PostWindowStart:     req.PostWindowStart,
		PostWindowEnd:       req.PostWindowEnd,
		CommissionAmount:    req.CommissionAmount,
		ReviewBonus:         req.ReviewBonus,
		MaxInfluencers:      req.MaxInfluencers,
		Status:              models.CampaignStatusDraft,
	}

	if err := f.validateCampaign(campaign); err != nil {
		return nil, err
	}

	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		errMsg := fmt.Sprintf("Campaign creation failed for brand %d: %s", actor.Brand.ID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionCampaignCreated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Failed to create campaign", err)
	}

	msg := fmt.Sprintf("Campaign %s created by brand %d", campaign.UUID, actor.Brand.ID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionCampaignCreated, msg, true, nil, metadata)

	return &dto.CreateCampaignResponse{
		Message:  "Campaign created successfully",
		Campaign: ToCampaignDTO(*campaign),
	}, nil
}

// UpdateCampaign updates an editable campaign owned by the caller.
// Live and closed campaigns can no longer be edited.
func (f *CampaignFlowImpl) UpdateCampaign(ctx context.Context, req *dto.UpdateCampaignRequest, metadata *ClientMetadata) (*dto.UpdateCampaignResponse, error) {
	actor, campaign, err := f.resolveOwnedCampaign(ctx, req.UserID, req.UUID)
	if err != nil {
		return nil, err
	}

	if !campaign.IsEditable() {
		return nil, ErrCampaignNotEditable
	}

	if req.Title != nil {
		campaign.Title = *req.Title
	}
	if req.Description != nil {
		campaign.Description = req.Description
	}
	if req.ProductName != nil {
		campaign.ProductName = req.ProductName
	}
	if req.AffiliateURL != nil {
		campaign.AffiliateURL = *req.AffiliateURL
	}
	if req.PurchaseWindowStart != nil {
		campaign.PurchaseWindowStart = *req.PurchaseWindowStart
	}
	if req.PurchaseWindowEnd != nil {
		campaign.PurchaseWindowEnd = *req.PurchaseWindowEnd
	}
	if req.PostWindowStart != nil {
		campaign.PostWindowStart = *req.PostWindowStart
	}
	if req.PostWindowEnd != nil {
		campaign.PostWindowEnd = *req.PostWindowEnd
	}
	if req.CommissionAmount != nil {
		campaign.CommissionAmount = *req.CommissionAmount
	}
	if req.ReviewBonus != nil {
		campaign.ReviewBonus = *req.ReviewBonus
	}
	if req.MaxInfluencers != nil {
		campaign.MaxInfluencers = req.MaxInfluencers
	}

	if err := f.validateCampaign(campaign); err != nil {
		return nil, err
	}

	if err := f.campaignRepo.Update(ctx, campaign); err != nil {
		errMsg := fmt.Sprintf("Campaign %s update failed: %s", campaign.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionCampaignUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign", err)
	}

	msg := fmt.Sprintf("Campaign %s updated", campaign.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionCampaignUpdated, msg, true, nil, metadata)

	return &dto.UpdateCampaignResponse{
		Message:  "Campaign updated successfully",
		Campaign: ToCampaignDTO(*campaign),
	}, nil
}

// PublishCampaign moves a campaign along its lifecycle.
// Allowed moves are draft to published, published to live or closed, live to
// closed, and draft straight to closed.
func (f *CampaignFlowImpl) PublishCampaign(ctx context.Context, req *dto.PublishCampaignRequest, metadata *ClientMetadata) (*dto.PublishCampaignResponse, error) {
	actor, campaign, err := f.resolveOwnedCampaign(ctx, req.UserID, req.UUID)
	if err != nil {
		return nil, err
	}

	newStatus := models.CampaignStatus(req.Status)
	if !newStatus.Valid() {
		return nil, ErrCampaignStateInvalid
	}
	if !campaign.CanTransitionTo(newStatus) {
		return nil, ErrCampaignStateInvalid
	}

	// publishing re-validates windows and the affiliate link so a stale
	// draft cannot go live with a broken configuration
	if newStatus == models.CampaignStatusPublished || newStatus == models.CampaignStatusLive {
		if err := f.validateCampaign(campaign); err != nil {
			return nil, err
		}
	}

	// Conditional update keyed on the status the transition was validated
	// against; a concurrent move makes this fail instead of overwriting it.
	moved, err := f.campaignRepo.TransitionStatus(ctx, campaign.ID,
		[]models.CampaignStatus{campaign.Status}, newStatus)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_STATUS_UPDATE_FAILED", "Failed to update campaign status", err)
	}
	if !moved {
		return nil, ErrCampaignStateInvalid
	}
	campaign.Status = newStatus

	action := models.AuditActionCampaignPublished
	if newStatus == models.CampaignStatusClosed {
		action = models.AuditActionCampaignClosed
	}
	msg := fmt.Sprintf("Campaign %s moved to %s", campaign.UUID, newStatus)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, action, msg, true, nil, metadata)

	return &dto.PublishCampaignResponse{
		Message:  fmt.Sprintf("Campaign is now %s", newStatus),
		Campaign: ToCampaignDTO(*campaign),
	}, nil
}

// DeleteCampaign removes a campaign. Brands may only delete campaigns with
// no assignments in flight; admins may force-delete, which closes the
// campaign and abandons its assignments inside one transaction.
func (f *CampaignFlowImpl) DeleteCampaign(ctx context.Context, req *dto.DeleteCampaignRequest, metadata *ClientMetadata) (*dto.DeleteCampaignResponse, error) {
	actor, campaign, err := f.resolveOwnedCampaign(ctx, req.UserID, req.UUID)
	if err != nil {
		return nil, err
	}

	active, err := f.assignmentRepo.Count(ctx, models.AssignmentFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to check campaign assignments", err)
	}

	if active > 0 && !actor.IsAdmin() {
		return nil, ErrCampaignHasActiveAssignments
	}

	// Brands retire a campaign by closing it, which keeps click and payout
	// history intact. Admins remove the campaign and everything under it.
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if actor.IsAdmin() {
			return f.campaignRepo.DeleteCascade(txCtx, campaign.ID)
		}
		if campaign.Status != models.CampaignStatusClosed {
			// Every non-closed state may close; a lost race just means
			// someone else already retired it.
			if _, err := f.campaignRepo.TransitionStatus(txCtx, campaign.ID,
				[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusPublished, models.CampaignStatusLive},
				models.CampaignStatusClosed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Campaign %s delete failed: %s", campaign.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionCampaignDeleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to delete campaign", err)
	}

	msg := fmt.Sprintf("Campaign %s deleted", campaign.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionCampaignDeleted, msg, true, nil, metadata)

	return &dto.DeleteCampaignResponse{Message: "Campaign deleted"}, nil
}

// ListCampaigns lists campaigns visible to the caller. Brands see their own
// campaigns in every status, influencers only published and live ones,
// admins everything.
func (f *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.CampaignFilter{}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		filter.Status = &status
	}

	switch {
	case actor.IsBrand():
		filter.BrandID = &actor.Brand.ID
	case actor.IsInfluencer():
		// influencers must not discover drafts; default to published
		// when no explicit status is requested
		if filter.Status == nil {
			published := models.CampaignStatusPublished
			filter.Status = &published
		} else if *filter.Status != models.CampaignStatusPublished && *filter.Status != models.CampaignStatusLive {
			return nil, ErrAccessDenied
		}
	}

	total, err := f.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to count campaigns", err)
	}

	rows, err := f.campaignRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	campaigns := make([]dto.CampaignDTO, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, ToCampaignDTO(*row))
	}

	return &dto.ListCampaignsResponse{
		Campaigns: campaigns,
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// GetCampaign returns a single campaign visible to the caller
func (f *CampaignFlowImpl) GetCampaign(ctx context.Context, req *dto.GetCampaignRequest) (*dto.CampaignDTO, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	campaign, err := f.lookupCampaign(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	if !f.guard.CanViewCampaign(actor, campaign) {
		return nil, ErrAccessDenied
	}

	out := ToCampaignDTO(*campaign)
	return &out, nil
}

func (f *CampaignFlowImpl) lookupCampaign(ctx context.Context, rawUUID string) (*models.Campaign, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, ErrCampaignNotFound
	}
	campaign, err := f.campaignRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

func (f *CampaignFlowImpl) resolveOwnedCampaign(ctx context.Context, userID uint, rawUUID string) (*Actor, *models.Campaign, error) {
	actor, err := f.guard.ResolveActor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	campaign, err := f.lookupCampaign(ctx, rawUUID)
	if err != nil {
		return nil, nil, err
	}

	if !f.guard.CanManageCampaign(actor, campaign) {
		return nil, nil, ErrAccessDenied
	}

	return actor, campaign, nil
}

func (f *CampaignFlowImpl) validateCampaign(campaign *models.Campaign) error {
	if err := campaign.ValidateWindows(); err != nil {
		if !campaign.PurchaseWindowEnd.After(campaign.PurchaseWindowStart) {
			return ErrPurchaseWindowInvalid
		}
		if !campaign.PostWindowEnd.After(campaign.PostWindowStart) {
			return ErrPostWindowInvalid
		}
		return ErrWindowOrderInvalid
	}
	if err := campaign.ValidateAffiliateURL(); err != nil {
		return ErrAffiliateURLInvalid
	}
	return nil
}
