package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminFlow defines platform administration operations
type AdminFlow interface {
	ApproveUser(ctx context.Context, req *dto.ApproveUserRequest, metadata *ClientMetadata) (*dto.ApproveUserResponse, error)
	Dashboard(ctx context.Context, adminID uint) (*dto.DashboardResponse, error)
}

// AdminFlowImpl implements AdminFlow
type AdminFlowImpl struct {
	guard          *AccessControl
	userRepo       repository.UserRepository
	brandRepo      repository.BrandRepository
	influencerRepo repository.InfluencerRepository
	campaignRepo   repository.CampaignRepository
	assignmentRepo repository.AssignmentRepository
	proofRepo      repository.PurchaseProofRepository
	payoutRepo     repository.PayoutRepository
	clickRepo      repository.ClickLogRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	db             *gorm.DB
}

// NewAdminFlow constructs an AdminFlow
func NewAdminFlow(
	guard *AccessControl,
	userRepo repository.UserRepository,
	brandRepo repository.BrandRepository,
	influencerRepo repository.InfluencerRepository,
	campaignRepo repository.CampaignRepository,
	assignmentRepo repository.AssignmentRepository,
	proofRepo repository.PurchaseProofRepository,
	payoutRepo repository.PayoutRepository,
	clickRepo repository.ClickLogRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) AdminFlow {
	return &AdminFlowImpl{
		guard:          guard,
		userRepo:       userRepo,
		brandRepo:      brandRepo,
		influencerRepo: influencerRepo,
		campaignRepo:   campaignRepo,
		assignmentRepo: assignmentRepo,
		proofRepo:      proofRepo,
		payoutRepo:     payoutRepo,
		clickRepo:      clickRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		db:             db,
	}
}

// ApproveUser activates a pending account together with its role profile
// inside one transaction, then notifies the account owner.
func (f *AdminFlowImpl) ApproveUser(ctx context.Context, req *dto.ApproveUserRequest, metadata *ClientMetadata) (*dto.ApproveUserResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.AdminID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}

	userUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := f.userRepo.ByUUID(ctx, userUUID)
	if err != nil {
		return nil, NewBusinessError("USER_APPROVAL_FAILED", "Failed to lookup account", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var brand *models.Brand
	var influencer *models.Influencer
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		user.Status = models.UserStatusActive
		if err := f.userRepo.Update(txCtx, user); err != nil {
			return err
		}

		switch user.Role {
		case models.UserRoleBrand:
			brand, err = f.brandRepo.ByUserID(txCtx, user.ID)
			if err != nil {
				return err
			}
			if brand != nil {
				brand.Status = models.ProfileStatusApproved
				return f.brandRepo.Update(txCtx, brand)
			}
		case models.UserRoleInfluencer:
			influencer, err = f.influencerRepo.ByUserID(txCtx, user.ID)
			if err != nil {
				return err
			}
			if influencer != nil {
				influencer.Status = models.ProfileStatusApproved
				return f.influencerRepo.Update(txCtx, influencer)
			}
		}
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Approval of account %s failed: %s", user.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionUserApproved, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("USER_APPROVAL_FAILED", "Failed to approve account", err)
	}

	msg := fmt.Sprintf("Account %s approved", user.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionUserApproved, msg, true, nil, metadata)

	name := user.Email
	if brand != nil {
		name = brand.CompanyName
	} else if influencer != nil {
		name = influencer.Name
	}
	f.notifier.Emit(ctx, services.Event{
		Type:           services.EventUserApproved,
		RecipientEmail: user.Email,
		RecipientName:  name,
	})

	return &dto.ApproveUserResponse{
		Message: "Account approved",
		User:    ToUserDTO(*user, brand, influencer),
	}, nil
}

// Dashboard aggregates platform-wide counters for the admin overview
func (f *AdminFlowImpl) Dashboard(ctx context.Context, adminID uint) (*dto.DashboardResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}

	out := &dto.DashboardResponse{}

	if out.TotalUsers, err = f.userRepo.Count(ctx, models.UserFilter{}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count users", err)
	}
	pendingUser := models.UserStatusPending
	if out.PendingUsers, err = f.userRepo.Count(ctx, models.UserFilter{Status: &pendingUser}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count pending users", err)
	}

	if out.TotalCampaigns, err = f.campaignRepo.Count(ctx, models.CampaignFilter{}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count campaigns", err)
	}
	live := models.CampaignStatusLive
	if out.LiveCampaigns, err = f.campaignRepo.Count(ctx, models.CampaignFilter{Status: &live}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count live campaigns", err)
	}

	if out.TotalAssignments, err = f.assignmentRepo.Count(ctx, models.AssignmentFilter{}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count assignments", err)
	}
	completed := models.AssignmentStatusCompleted
	if out.CompletedAssignments, err = f.assignmentRepo.Count(ctx, models.AssignmentFilter{Status: &completed}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count completed assignments", err)
	}

	if out.TotalClicks, err = f.clickRepo.Count(ctx, models.ClickLogFilter{}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count clicks", err)
	}

	underReview := models.ProofStatusUnderReview
	if out.PendingProofs, err = f.proofRepo.Count(ctx, models.PurchaseProofFilter{Status: &underReview}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count pending proofs", err)
	}

	pendingPayout := models.PayoutStatusPending
	if out.PendingPayouts, err = f.payoutRepo.Count(ctx, models.PayoutFilter{Status: &pendingPayout}); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to count pending payouts", err)
	}

	return out, nil
}
