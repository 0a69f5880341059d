package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/redis/go-redis/v9"
)

// AssignmentFlow defines operations over assignments and the influencer's
// tracked shopping link.
type AssignmentFlow interface {
	ListAssignments(ctx context.Context, req *dto.ListAssignmentsRequest) (*dto.ListAssignmentsResponse, error)
	GetAssignment(ctx context.Context, req *dto.GetAssignmentRequest) (*dto.AssignmentDTO, error)
	AmazonLink(ctx context.Context, req *dto.AmazonLinkRequest) (*dto.AmazonLinkResponse, error)
	SetDestination(ctx context.Context, req *dto.SetDestinationRequest, metadata *ClientMetadata) (*dto.AssignmentDTO, error)
}

// AssignmentFlowImpl implements AssignmentFlow
type AssignmentFlowImpl struct {
	guard          *AccessControl
	assignmentRepo repository.AssignmentRepository
	campaignRepo   repository.CampaignRepository
	clickRepo      repository.ClickLogRepository
	auditRepo      repository.AuditLogRepository
	rc             *redis.Client
	baseURL        string
}

// NewAssignmentFlow constructs an AssignmentFlow.
// baseURL is the public origin the redirect links are served from; rc may be
// nil when no redirect cache is in use.
func NewAssignmentFlow(
	guard *AccessControl,
	assignmentRepo repository.AssignmentRepository,
	campaignRepo repository.CampaignRepository,
	clickRepo repository.ClickLogRepository,
	auditRepo repository.AuditLogRepository,
	rc *redis.Client,
	baseURL string,
) AssignmentFlow {
	return &AssignmentFlowImpl{
		guard:          guard,
		assignmentRepo: assignmentRepo,
		campaignRepo:   campaignRepo,
		clickRepo:      clickRepo,
		auditRepo:      auditRepo,
		rc:             rc,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

// ListAssignments lists assignments visible to the caller. Influencers see
// their own, brands the assignments under their campaigns, admins all.
func (f *AssignmentFlowImpl) ListAssignments(ctx context.Context, req *dto.ListAssignmentsRequest) (*dto.ListAssignmentsResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	page, pageSize, err := normalizePagination(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.AssignmentFilter{}
	if req.Status != nil {
		status := models.AssignmentStatus(*req.Status)
		filter.Status = &status
	}

	switch {
	case actor.IsInfluencer():
		filter.InfluencerID = &actor.Influencer.ID
	case actor.IsBrand():
		// brands see assignments through their campaigns
		campaigns, err := f.campaignRepo.ByFilter(ctx, models.CampaignFilter{BrandID: &actor.Brand.ID}, "id ASC", 0, 0)
		if err != nil {
			return nil, NewBusinessError("ASSIGNMENT_LIST_FAILED", "Failed to list brand campaigns", err)
		}
		if len(campaigns) == 0 {
			return &dto.ListAssignmentsResponse{
				Assignments: []dto.AssignmentDTO{},
				Pagination:  dto.Pagination{Page: page, PageSize: pageSize, Total: 0},
			}, nil
		}
		ids := make([]uint, 0, len(campaigns))
		for _, c := range campaigns {
			ids = append(ids, c.ID)
		}
		filter.CampaignIDs = ids
	}

	total, err := f.assignmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ASSIGNMENT_LIST_FAILED", "Failed to count assignments", err)
	}

	rows, err := f.assignmentRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ASSIGNMENT_LIST_FAILED", "Failed to list assignments", err)
	}

	assignments := make([]dto.AssignmentDTO, 0, len(rows))
	for _, row := range rows {
		includeToken := f.guard.CanActOnAssignment(actor, row)
		assignments = append(assignments, ToAssignmentDTO(*row, includeToken))
	}

	return &dto.ListAssignmentsResponse{
		Assignments: assignments,
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// GetAssignment returns a single assignment with its campaign and click
// count. The redirect token is withheld from everyone but the owning
// influencer.
func (f *AssignmentFlowImpl) GetAssignment(ctx context.Context, req *dto.GetAssignmentRequest) (*dto.AssignmentDTO, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	assignment, err := lookupAssignment(ctx, f.assignmentRepo, req.UUID)
	if err != nil {
		return nil, err
	}

	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("ASSIGNMENT_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	if !f.guard.CanViewAssignment(actor, assignment, campaign) {
		return nil, ErrAccessDenied
	}

	assignment.Campaign = campaign
	out := ToAssignmentDTO(*assignment, f.guard.CanActOnAssignment(actor, assignment))

	clicks, err := f.clickRepo.Count(ctx, models.ClickLogFilter{AssignmentID: &assignment.ID})
	if err == nil {
		out.ClickCount = &clicks
	}

	return &out, nil
}

// AmazonLink returns the influencer's tracked shopping link for the
// assignment. The token never rotates, so the link is stable for the whole
// assignment lifetime.
func (f *AssignmentFlowImpl) AmazonLink(ctx context.Context, req *dto.AmazonLinkRequest) (*dto.AmazonLinkResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	assignment, err := lookupAssignment(ctx, f.assignmentRepo, req.UUID)
	if err != nil {
		return nil, err
	}
	if !f.guard.CanActOnAssignment(actor, assignment) {
		return nil, ErrAccessDenied
	}

	return &dto.AmazonLinkResponse{
		URL:           fmt.Sprintf("%s/a/%s", f.baseURL, assignment.RedirectToken),
		RedirectToken: assignment.RedirectToken,
	}, nil
}

// SetDestination points the assignment's tracked link at a different product
// URL than the campaign default. Only the campaign's brand or an admin may
// set it. The cached redirect entry is dropped so clicks pick up the new
// destination immediately instead of waiting out the cache TTL.
func (f *AssignmentFlowImpl) SetDestination(ctx context.Context, req *dto.SetDestinationRequest, metadata *ClientMetadata) (*dto.AssignmentDTO, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	assignment, err := lookupAssignment(ctx, f.assignmentRepo, req.UUID)
	if err != nil {
		return nil, err
	}

	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("ASSIGNMENT_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	if !f.guard.CanReviewAssignment(actor, assignment, campaign) {
		return nil, ErrAccessDenied
	}

	if err := models.ValidateStoreURL(req.DestinationURL); err != nil {
		return nil, ErrAffiliateURLInvalid
	}

	assignment.AffiliateURLOverride = &req.DestinationURL
	if err := f.assignmentRepo.Update(ctx, assignment); err != nil {
		errMsg := fmt.Sprintf("Destination override on assignment %s failed: %s", assignment.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionDestinationOverridden, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("ASSIGNMENT_DESTINATION_FAILED", "Failed to update assignment destination", err)
	}

	if f.rc != nil {
		_ = f.rc.Del(ctx, redirectCacheKey(assignment.RedirectToken)).Err()
	}

	msg := fmt.Sprintf("Assignment %s destination overridden to %s", assignment.UUID, req.DestinationURL)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionDestinationOverridden, msg, true, nil, metadata)

	assignment.Campaign = campaign
	out := ToAssignmentDTO(*assignment, f.guard.CanActOnAssignment(actor, assignment))
	return &out, nil
}
