package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayoutFlow defines payout ledger operations
type PayoutFlow interface {
	CreatePayout(ctx context.Context, req *dto.CreatePayoutRequest, metadata *ClientMetadata) (*dto.CreatePayoutResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdatePayoutStatusRequest, metadata *ClientMetadata) (*dto.UpdatePayoutStatusResponse, error)
	ListPayouts(ctx context.Context, req *dto.ListPayoutsRequest) (*dto.ListPayoutsResponse, error)
	Summary(ctx context.Context, req *dto.PayoutSummaryRequest) (*dto.PayoutSummaryResponse, error)
}

// PayoutFlowImpl implements PayoutFlow
type PayoutFlowImpl struct {
	guard          *AccessControl
	payoutRepo     repository.PayoutRepository
	assignmentRepo repository.AssignmentRepository
	campaignRepo   repository.CampaignRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	db             *gorm.DB
}

// NewPayoutFlow constructs a PayoutFlow
func NewPayoutFlow(
	guard *AccessControl,
	payoutRepo repository.PayoutRepository,
	assignmentRepo repository.AssignmentRepository,
	campaignRepo repository.CampaignRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) PayoutFlow {
	return &PayoutFlowImpl{
		guard:          guard,
		payoutRepo:     payoutRepo,
		assignmentRepo: assignmentRepo,
		campaignRepo:   campaignRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		db:             db,
	}
}

// createPayoutIfAbsent opens a ledger entry for the assignment unless one of
// the same type already exists. The composite unique index on
// (assignment_id, type) backs the insert, so concurrent approvals of the
// same milestone produce exactly one row. A non-positive amount is a no-op,
// never an error, so campaigns without a bonus simply skip the entry.
func createPayoutIfAbsent(ctx context.Context, payoutRepo repository.PayoutRepository, assignment *models.Assignment, campaign *models.Campaign, payoutType models.PayoutType, amount float64) (bool, error) {
	if amount <= 0 {
		return false, nil
	}

	payout := &models.Payout{
		AssignmentID: assignment.ID,
		Type:         payoutType,
		InfluencerID: assignment.InfluencerID,
		BrandID:      campaign.BrandID,
		CampaignID:   campaign.ID,
		Amount:       amount,
		Currency:     utils.USDCurrency,
		Status:       models.PayoutStatusPending,
	}
	return payoutRepo.SaveIfAbsent(ctx, payout)
}

// CreatePayout opens a ledger entry by hand, typically to correct an amount
// that the automatic milestone could not know. The insert is idempotent:
// when an entry of the same type already exists for the assignment it is
// returned unchanged and Created is false.
func (f *PayoutFlowImpl) CreatePayout(ctx context.Context, req *dto.CreatePayoutRequest, metadata *ClientMetadata) (*dto.CreatePayoutResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	assignment, err := lookupAssignment(ctx, f.assignmentRepo, req.AssignmentUUID)
	if err != nil {
		return nil, err
	}
	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_CREATE_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	if !f.guard.CanReviewAssignment(actor, assignment, campaign) {
		return nil, ErrAccessDenied
	}

	if req.Amount <= 0 {
		return nil, ErrPayoutAmountInvalid
	}

	payoutType := models.PayoutType(req.Type)
	payout := &models.Payout{
		AssignmentID: assignment.ID,
		Type:         payoutType,
		InfluencerID: assignment.InfluencerID,
		BrandID:      campaign.BrandID,
		CampaignID:   campaign.ID,
		Amount:       req.Amount,
		Currency:     utils.USDCurrency,
		Status:       models.PayoutStatusPending,
		Notes:        req.Notes,
	}

	created, err := f.payoutRepo.SaveIfAbsent(ctx, payout)
	if err != nil {
		errMsg := fmt.Sprintf("Payout creation for assignment %s failed: %s", assignment.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPayoutCreated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PAYOUT_CREATE_FAILED", "Failed to create payout", err)
	}

	if !created {
		existing, err := f.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, payoutType)
		if err != nil {
			return nil, NewBusinessError("PAYOUT_CREATE_FAILED", "Failed to lookup existing payout", err)
		}
		if existing == nil {
			return nil, ErrPayoutNotFound
		}
		return &dto.CreatePayoutResponse{
			Message: "A payout of this type already exists for the assignment",
			Payout:  ToPayoutDTO(*existing),
			Created: false,
		}, nil
	}

	msg := fmt.Sprintf("Payout %s (%s, %.2f %s) created for assignment %s", payout.UUID, payoutType, payout.Amount, payout.Currency, assignment.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPayoutCreated, msg, true, nil, metadata)

	return &dto.CreatePayoutResponse{
		Message: "Payout created",
		Payout:  ToPayoutDTO(*payout),
		Created: true,
	}, nil
}

// UpdateStatus moves a payout along its settlement machine. Marking a payout
// paid stamps who settled it and when, and notifies the influencer.
func (f *PayoutFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdatePayoutStatusRequest, metadata *ClientMetadata) (*dto.UpdatePayoutStatusResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	payoutUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		return nil, ErrPayoutNotFound
	}
	payout, err := f.payoutRepo.ByUUID(ctx, payoutUUID)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_STATUS_UPDATE_FAILED", "Failed to lookup payout", err)
	}
	if payout == nil {
		return nil, ErrPayoutNotFound
	}

	if !f.guard.CanManagePayout(actor, payout) {
		return nil, ErrAccessDenied
	}

	newStatus := models.PayoutStatus(req.Status)
	if !newStatus.Valid() || !payout.Status.CanTransitionTo(newStatus) {
		return nil, ErrPayoutStateInvalid
	}

	payout.Status = newStatus
	if req.Notes != nil {
		payout.Notes = req.Notes
	}
	if newStatus == models.PayoutStatusPaid {
		now := utils.UTCNow()
		payout.PaidAt = &now
		payout.PaidBy = &actor.User.ID
	}

	if err := f.payoutRepo.Update(ctx, payout); err != nil {
		errMsg := fmt.Sprintf("Payout %s status update failed: %s", payout.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPayoutStatusUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PAYOUT_STATUS_UPDATE_FAILED", "Failed to update payout", err)
	}

	msg := fmt.Sprintf("Payout %s moved to %s", payout.UUID, newStatus)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPayoutStatusUpdated, msg, true, nil, metadata)

	if newStatus == models.PayoutStatusPaid {
		campaign, err := f.campaignRepo.ByID(ctx, payout.CampaignID)
		if err == nil && campaign != nil {
			notifyInfluencer(ctx, f.guard.influencerRepo, f.userRepo, f.notifier, payout.InfluencerID, campaign, services.EventPayoutPaid, &payout.Amount, payout.Notes)
		}
	}

	return &dto.UpdatePayoutStatusResponse{
		Message: fmt.Sprintf("Payout is now %s", newStatus),
		Payout:  ToPayoutDTO(*payout),
	}, nil
}

// ListPayouts lists ledger entries visible to the caller. Influencers see
// entries owed to them, brands the entries their campaigns owe, admins all.
func (f *PayoutFlowImpl) ListPayouts(ctx context.Context, req *dto.ListPayoutsRequest) (*dto.ListPayoutsResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.PayoutFilter{}
	if req.Status != nil {
		status := models.PayoutStatus(*req.Status)
		filter.Status = &status
	}
	if req.Type != nil {
		payoutType := models.PayoutType(*req.Type)
		filter.Type = &payoutType
	}

	switch {
	case actor.IsInfluencer():
		filter.InfluencerID = &actor.Influencer.ID
	case actor.IsBrand():
		filter.BrandID = &actor.Brand.ID
	}

	total, err := f.payoutRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_LIST_FAILED", "Failed to count payouts", err)
	}

	rows, err := f.payoutRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_LIST_FAILED", "Failed to list payouts", err)
	}

	payouts := make([]dto.PayoutDTO, 0, len(rows))
	for _, row := range rows {
		payouts = append(payouts, ToPayoutDTO(*row))
	}

	return &dto.ListPayoutsResponse{
		Payouts: payouts,
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// Summary aggregates the caller's ledger: totals owed and settled, pending
// amounts broken down by payout type.
func (f *PayoutFlowImpl) Summary(ctx context.Context, req *dto.PayoutSummaryRequest) (*dto.PayoutSummaryResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	base := models.PayoutFilter{}
	switch {
	case actor.IsInfluencer():
		base.InfluencerID = &actor.Influencer.ID
	case actor.IsBrand():
		base.BrandID = &actor.Brand.ID
	}

	pending := models.PayoutStatusPending
	paid := models.PayoutStatusPaid

	pendingFilter := base
	pendingFilter.Status = &pending
	paidFilter := base
	paidFilter.Status = &paid

	pendingTotal, err := f.payoutRepo.SumAmount(ctx, pendingFilter)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_SUMMARY_FAILED", "Failed to sum pending payouts", err)
	}
	paidTotal, err := f.payoutRepo.SumAmount(ctx, paidFilter)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_SUMMARY_FAILED", "Failed to sum paid payouts", err)
	}
	pendingCount, err := f.payoutRepo.Count(ctx, pendingFilter)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_SUMMARY_FAILED", "Failed to count pending payouts", err)
	}
	paidCount, err := f.payoutRepo.Count(ctx, paidFilter)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_SUMMARY_FAILED", "Failed to count paid payouts", err)
	}

	pendingByType := make(map[string]float64)
	for _, payoutType := range []models.PayoutType{
		models.PayoutTypeReimbursement,
		models.PayoutTypeCommission,
		models.PayoutTypeReviewBonus,
	} {
		t := payoutType
		typeFilter := pendingFilter
		typeFilter.Type = &t
		sum, err := f.payoutRepo.SumAmount(ctx, typeFilter)
		if err != nil {
			return nil, NewBusinessError("PAYOUT_SUMMARY_FAILED", "Failed to sum payouts by type", err)
		}
		if sum > 0 {
			pendingByType[payoutType.String()] = sum
		}
	}

	return &dto.PayoutSummaryResponse{
		PendingTotal:   pendingTotal,
		PaidTotal:      paidTotal,
		PendingByType:  pendingByType,
		PendingPayouts: pendingCount,
		PaidPayouts:    paidCount,
	}, nil
}
