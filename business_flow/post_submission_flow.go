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

// PostSubmissionFlow defines submission and review of published content
type PostSubmissionFlow interface {
	Submit(ctx context.Context, req *dto.SubmitPostRequest, metadata *ClientMetadata) (*dto.SubmitPostResponse, error)
	Review(ctx context.Context, req *dto.ReviewDecisionRequest, metadata *ClientMetadata) (*dto.ReviewPostResponse, error)
}

// PostSubmissionFlowImpl implements PostSubmissionFlow
type PostSubmissionFlowImpl struct {
	guard          *AccessControl
	assignmentRepo repository.AssignmentRepository
	campaignRepo   repository.CampaignRepository
	submissionRepo repository.PostSubmissionRepository
	payoutRepo     repository.PayoutRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	db             *gorm.DB
}

// NewPostSubmissionFlow constructs a PostSubmissionFlow
func NewPostSubmissionFlow(
	guard *AccessControl,
	assignmentRepo repository.AssignmentRepository,
	campaignRepo repository.CampaignRepository,
	submissionRepo repository.PostSubmissionRepository,
	payoutRepo repository.PayoutRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) PostSubmissionFlow {
	return &PostSubmissionFlowImpl{
		guard:          guard,
		assignmentRepo: assignmentRepo,
		campaignRepo:   campaignRepo,
		submissionRepo: submissionRepo,
		payoutRepo:     payoutRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		db:             db,
	}
}

// Submit records the influencer's published content and moves the assignment
// into post review. Submissions are accepted once the purchase is approved,
// and a rejected submission is replaced in place.
func (f *PostSubmissionFlowImpl) Submit(ctx context.Context, req *dto.SubmitPostRequest, metadata *ClientMetadata) (*dto.SubmitPostResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	assignment, err := lookupAssignment(ctx, f.assignmentRepo, req.AssignmentUUID)
	if err != nil {
		return nil, err
	}
	if !f.guard.CanActOnAssignment(actor, assignment) {
		return nil, ErrAccessDenied
	}

	existing, err := f.submissionRepo.ByAssignmentID(ctx, assignment.ID)
	if err != nil {
		return nil, NewBusinessError("POST_SUBMIT_FAILED", "Failed to lookup existing submission", err)
	}
	if existing != nil && existing.Status == models.ProofStatusApproved {
		return nil, ErrProofAlreadyApproved
	}

	var submission *models.PostSubmission
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		ok, err := f.assignmentRepo.TransitionStatus(txCtx, assignment.ID,
			[]models.AssignmentStatus{models.AssignmentStatusPurchaseApproved, models.AssignmentStatusPosting},
			models.AssignmentStatusPostReview)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAssignmentStateInvalid
		}

		if existing != nil {
			existing.PostURL = req.PostURL
			existing.Platform = models.PostPlatform(req.Platform)
			existing.PostType = models.PostType(req.PostType)
			existing.Caption = req.Caption
			existing.ScreenshotURL = req.ScreenshotURL
			existing.Status = models.ProofStatusUnderReview
			existing.ReviewNotes = nil
			existing.ReviewedBy = nil
			existing.ReviewedAt = nil
			submission = existing
			return f.submissionRepo.Update(txCtx, submission)
		}

		submission = &models.PostSubmission{
			AssignmentID:  assignment.ID,
			InfluencerID:  assignment.InfluencerID,
			CampaignID:    assignment.CampaignID,
			PostURL:       req.PostURL,
			Platform:      models.PostPlatform(req.Platform),
			PostType:      models.PostType(req.PostType),
			Caption:       req.Caption,
			ScreenshotURL: req.ScreenshotURL,
			Status:        models.ProofStatusUnderReview,
		}
		return f.submissionRepo.Save(txCtx, submission)
	})
	if err != nil {
		if IsAssignmentStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Post submission for assignment %s failed: %s", assignment.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPostSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("POST_SUBMIT_FAILED", "Failed to submit post", err)
	}

	msg := fmt.Sprintf("Post submitted for assignment %s", assignment.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPostSubmitted, msg, true, nil, metadata)

	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err == nil && campaign != nil {
		notifyBrand(ctx, f.guard.brandRepo, f.userRepo, f.notifier, campaign, services.EventPostReceived, nil, nil)
	}

	submission.Assignment = assignment
	return &dto.SubmitPostResponse{
		Message:    "Post submitted for review",
		Submission: ToPostSubmissionDTO(*submission),
	}, nil
}

// Review records the brand's verdict. Approval completes the assignment and
// opens the commission payout; rejection reopens posting. A zero commission
// simply produces no payout entry.
func (f *PostSubmissionFlowImpl) Review(ctx context.Context, req *dto.ReviewDecisionRequest, metadata *ClientMetadata) (*dto.ReviewPostResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	submissionUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		return nil, ErrPostSubmissionNotFound
	}
	submission, err := f.submissionRepo.ByUUID(ctx, submissionUUID)
	if err != nil {
		return nil, NewBusinessError("POST_REVIEW_FAILED", "Failed to lookup submission", err)
	}
	if submission == nil {
		return nil, ErrPostSubmissionNotFound
	}

	assignment, err := f.assignmentRepo.ByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, NewBusinessError("POST_REVIEW_FAILED", "Failed to lookup assignment", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("POST_REVIEW_FAILED", "Failed to lookup campaign", err)
	}

	if !f.guard.CanReviewAssignment(actor, assignment, campaign) {
		return nil, ErrAccessDenied
	}

	if submission.Status != models.ProofStatusUnderReview && submission.Status != models.ProofStatusPending {
		return nil, ErrProofNotReviewable
	}

	approved := req.Decision == "approved"
	now := utils.UTCNow()

	var newStatus models.AssignmentStatus
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if approved {
			newStatus = models.AssignmentStatusCompleted
			submission.Status = models.ProofStatusApproved
		} else {
			newStatus = models.AssignmentStatusPosting
			submission.Status = models.ProofStatusRejected
		}
		submission.ReviewNotes = req.Notes
		submission.ReviewedBy = &actor.User.ID
		submission.ReviewedAt = &now

		ok, err := f.assignmentRepo.TransitionStatus(txCtx, assignment.ID,
			[]models.AssignmentStatus{models.AssignmentStatusPostReview}, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAssignmentStateInvalid
		}

		if err := f.submissionRepo.Update(txCtx, submission); err != nil {
			return err
		}

		if approved && campaign != nil {
			_, err := createPayoutIfAbsent(txCtx, f.payoutRepo, assignment, campaign, models.PayoutTypeCommission, campaign.CommissionAmount)
			return err
		}
		return nil
	})
	if err != nil {
		if IsAssignmentStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Post submission %s review failed: %s", submission.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPostReviewed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("POST_REVIEW_FAILED", "Failed to review post", err)
	}

	msg := fmt.Sprintf("Post submission %s %s", submission.UUID, submission.Status)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPostReviewed, msg, true, nil, metadata)

	if campaign != nil {
		eventType := services.EventPostApproved
		if !approved {
			eventType = services.EventPostRejected
		}
		notifyInfluencer(ctx, f.guard.influencerRepo, f.userRepo, f.notifier, assignment.InfluencerID, campaign, eventType, nil, req.Notes)
	}

	submission.Assignment = assignment
	return &dto.ReviewPostResponse{
		Message:          fmt.Sprintf("Post submission %s", submission.Status),
		Submission:       ToPostSubmissionDTO(*submission),
		AssignmentStatus: newStatus.String(),
	}, nil
}
