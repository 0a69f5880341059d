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

// ApplicationFlow defines campaign application operations
type ApplicationFlow interface {
	Apply(ctx context.Context, req *dto.ApplyRequest, metadata *ClientMetadata) (*dto.ApplyResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateApplicationStatusRequest, metadata *ClientMetadata) (*dto.UpdateApplicationStatusResponse, error)
	ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error)
}

// ApplicationFlowImpl implements ApplicationFlow
type ApplicationFlowImpl struct {
	guard           *AccessControl
	campaignRepo    repository.CampaignRepository
	applicationRepo repository.ApplicationRepository
	assignmentRepo  repository.AssignmentRepository
	userRepo        repository.UserRepository
	auditRepo       repository.AuditLogRepository
	notifier        services.NotificationService
	db              *gorm.DB
}

// NewApplicationFlow constructs an ApplicationFlow
func NewApplicationFlow(
	guard *AccessControl,
	campaignRepo repository.CampaignRepository,
	applicationRepo repository.ApplicationRepository,
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) ApplicationFlow {
	return &ApplicationFlowImpl{
		guard:           guard,
		campaignRepo:    campaignRepo,
		applicationRepo: applicationRepo,
		assignmentRepo:  assignmentRepo,
		userRepo:        userRepo,
		auditRepo:       auditRepo,
		notifier:        notifier,
		db:              db,
	}
}

// Apply submits an influencer's application to an open campaign.
// The composite unique index on (campaign, influencer) makes duplicate
// applications impossible even under concurrent submissions.
func (f *ApplicationFlowImpl) Apply(ctx context.Context, req *dto.ApplyRequest, metadata *ClientMetadata) (*dto.ApplyResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !actor.IsInfluencer() {
		return nil, ErrAccessDenied
	}

	campaignUUID, err := uuid.Parse(req.CampaignUUID)
	if err != nil {
		return nil, ErrCampaignNotFound
	}
	campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID)
	if err != nil {
		return nil, NewBusinessError("APPLICATION_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if !campaign.IsOpenForApplications() {
		return nil, ErrCampaignNotOpen
	}

	application := &models.Application{
		CampaignID:   campaign.ID,
		InfluencerID: actor.Influencer.ID,
		Message:      req.Message,
		Answers:      req.Answers,
		Status:       models.ApplicationStatusApplied,
	}

	created, err := f.applicationRepo.SaveIfAbsent(ctx, application)
	if err != nil {
		errMsg := fmt.Sprintf("Application to campaign %s failed: %s", campaign.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionApplicationSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("APPLICATION_FAILED", "Failed to submit application", err)
	}
	if !created {
		return nil, ErrAlreadyApplied
	}

	application.Campaign = campaign
	application.Influencer = actor.Influencer

	msg := fmt.Sprintf("Influencer %d applied to campaign %s", actor.Influencer.ID, campaign.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionApplicationSubmitted, msg, true, nil, metadata)

	f.notifyBrand(ctx, campaign, services.EventApplicationReceived, nil)

	return &dto.ApplyResponse{
		Message:     "Application submitted successfully",
		Application: ToApplicationDTO(*application),
	}, nil
}

// UpdateStatus records the brand's decision on an application.
// Accepting creates the assignment in the same transaction so an accepted
// application can never exist without its assignment.
func (f *ApplicationFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdateApplicationStatusRequest, metadata *ClientMetadata) (*dto.UpdateApplicationStatusResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	applicationUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		return nil, ErrApplicationNotFound
	}
	application, err := f.applicationRepo.ByUUID(ctx, applicationUUID)
	if err != nil {
		return nil, NewBusinessError("APPLICATION_DECISION_FAILED", "Failed to lookup application", err)
	}
	if application == nil {
		return nil, ErrApplicationNotFound
	}

	campaign, err := f.campaignRepo.ByID(ctx, application.CampaignID)
	if err != nil {
		return nil, NewBusinessError("APPLICATION_DECISION_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	if !f.guard.CanManageCampaign(actor, campaign) {
		return nil, ErrAccessDenied
	}

	newStatus := models.ApplicationStatus(req.Status)
	if !application.CanTransitionTo(newStatus) {
		return nil, ErrApplicationStateInvalid
	}

	var assignment *models.Assignment
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		// Conditional update keyed on the status the transition was checked
		// against, so two racing decisions cannot both take effect.
		moved, err := f.applicationRepo.TransitionStatus(txCtx, application.ID,
			[]models.ApplicationStatus{application.Status}, newStatus)
		if err != nil {
			return err
		}
		if !moved {
			return ErrApplicationStateInvalid
		}
		application.Status = newStatus

		if newStatus == models.ApplicationStatusAccepted {
			assignment = &models.Assignment{
				CampaignID:    application.CampaignID,
				InfluencerID:  application.InfluencerID,
				ApplicationID: application.ID,
				Status:        models.AssignmentStatusPurchaseRequired,
				ReviewStatus:  models.ReviewStatusNone,
			}
			if err := f.assignmentRepo.Save(txCtx, assignment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsApplicationStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Decision on application %s failed: %s", application.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionApplicationUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("APPLICATION_DECISION_FAILED", "Failed to update application", err)
	}

	msg := fmt.Sprintf("Application %s moved to %s", application.UUID, newStatus)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionApplicationUpdated, msg, true, nil, metadata)
	if assignment != nil {
		assignMsg := fmt.Sprintf("Assignment %s created for application %s", assignment.UUID, application.UUID)
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionAssignmentCreated, assignMsg, true, nil, metadata)
	}

	switch newStatus {
	case models.ApplicationStatusAccepted:
		f.notifyInfluencer(ctx, application.InfluencerID, campaign, services.EventApplicationAccepted, nil)
	case models.ApplicationStatusDeclined:
		f.notifyInfluencer(ctx, application.InfluencerID, campaign, services.EventApplicationDeclined, nil)
	}

	application.Campaign = campaign
	resp := &dto.UpdateApplicationStatusResponse{
		Message:     fmt.Sprintf("Application is now %s", newStatus),
		Application: ToApplicationDTO(*application),
	}
	if assignment != nil {
		a := ToAssignmentDTO(*assignment, false)
		resp.Assignment = &a
	}
	return resp, nil
}

// ListApplications lists applications for a campaign (brand view) or the
// caller's own applications (influencer view).
func (f *ApplicationFlowImpl) ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.ApplicationFilter{}
	if req.Status != nil {
		status := models.ApplicationStatus(*req.Status)
		filter.Status = &status
	}

	switch {
	case actor.IsInfluencer():
		filter.InfluencerID = &actor.Influencer.ID
	case actor.IsBrand() || actor.IsAdmin():
		if req.CampaignUUID == "" {
			return nil, ErrCampaignNotFound
		}
		campaignUUID, err := uuid.Parse(req.CampaignUUID)
		if err != nil {
			return nil, ErrCampaignNotFound
		}
		campaign, err := f.campaignRepo.ByUUID(ctx, campaignUUID)
		if err != nil {
			return nil, NewBusinessError("APPLICATION_LIST_FAILED", "Failed to lookup campaign", err)
		}
		if campaign == nil {
			return nil, ErrCampaignNotFound
		}
		if !f.guard.CanManageCampaign(actor, campaign) {
			return nil, ErrAccessDenied
		}
		filter.CampaignID = &campaign.ID
	default:
		return nil, ErrAccessDenied
	}

	total, err := f.applicationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("APPLICATION_LIST_FAILED", "Failed to count applications", err)
	}

	rows, err := f.applicationRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("APPLICATION_LIST_FAILED", "Failed to list applications", err)
	}

	applications := make([]dto.ApplicationDTO, 0, len(rows))
	for _, row := range rows {
		applications = append(applications, ToApplicationDTO(*row))
	}

	return &dto.ListApplicationsResponse{
		Applications: applications,
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (f *ApplicationFlowImpl) notifyBrand(ctx context.Context, campaign *models.Campaign, eventType services.EventType, amount *float64) {
	notifyBrand(ctx, f.guard.brandRepo, f.userRepo, f.notifier, campaign, eventType, amount, nil)
}

func (f *ApplicationFlowImpl) notifyInfluencer(ctx context.Context, influencerID uint, campaign *models.Campaign, eventType services.EventType, amount *float64) {
	notifyInfluencer(ctx, f.guard.influencerRepo, f.userRepo, f.notifier, influencerID, campaign, eventType, amount, nil)
}
