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

// ProductReviewFlow defines submission and review of store reviews.
// The product review runs on the assignment's secondary machine and only
// opens once the primary lifecycle has completed.
type ProductReviewFlow interface {
	Submit(ctx context.Context, req *dto.SubmitProductReviewRequest, metadata *ClientMetadata) (*dto.SubmitProductReviewResponse, error)
	Review(ctx context.Context, req *dto.ReviewDecisionRequest, metadata *ClientMetadata) (*dto.ReviewProductReviewResponse, error)
}

// ProductReviewFlowImpl implements ProductReviewFlow
type ProductReviewFlowImpl struct {
	guard          *AccessControl
	assignmentRepo repository.AssignmentRepository
	campaignRepo   repository.CampaignRepository
	reviewRepo     repository.ProductReviewRepository
	payoutRepo     repository.PayoutRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	db             *gorm.DB
}

// NewProductReviewFlow constructs a ProductReviewFlow
func NewProductReviewFlow(
	guard *AccessControl,
	assignmentRepo repository.AssignmentRepository,
	campaignRepo repository.CampaignRepository,
	reviewRepo repository.ProductReviewRepository,
	payoutRepo repository.PayoutRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) ProductReviewFlow {
	return &ProductReviewFlowImpl{
		guard:          guard,
		assignmentRepo: assignmentRepo,
		campaignRepo:   campaignRepo,
		reviewRepo:     reviewRepo,
		payoutRepo:     payoutRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		db:             db,
	}
}

// Submit records the influencer's store review and puts the assignment's
// review machine under review. Only completed assignments qualify, and a
// rejected review may be resubmitted in place.
func (f *ProductReviewFlowImpl) Submit(ctx context.Context, req *dto.SubmitProductReviewRequest, metadata *ClientMetadata) (*dto.SubmitProductReviewResponse, error) {
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

	if assignment.Status != models.AssignmentStatusCompleted {
		return nil, ErrAssignmentStateInvalid
	}
	if req.Rating < utils.MinReviewRating || req.Rating > utils.MaxReviewRating {
		return nil, ErrRatingOutOfRange
	}

	existing, err := f.reviewRepo.ByAssignmentID(ctx, assignment.ID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_REVIEW_SUBMIT_FAILED", "Failed to lookup existing review", err)
	}
	if existing != nil && existing.Status == models.ProofStatusApproved {
		return nil, ErrProofAlreadyApproved
	}

	var review *models.ProductReview
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		ok, err := f.assignmentRepo.TransitionReviewStatus(txCtx, assignment.ID,
			[]models.ReviewStatus{models.ReviewStatusNone, models.ReviewStatusRejected},
			models.ReviewStatusReview)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReviewStateInvalid
		}

		if existing != nil {
			existing.ReviewText = req.ReviewText
			existing.Rating = req.Rating
			existing.ScreenshotURL = req.ScreenshotURL
			existing.Status = models.ProofStatusUnderReview
			existing.ReviewNotes = nil
			existing.ReviewedBy = nil
			existing.ReviewedAt = nil
			review = existing
			return f.reviewRepo.Update(txCtx, review)
		}

		review = &models.ProductReview{
			AssignmentID:  assignment.ID,
			InfluencerID:  assignment.InfluencerID,
			ReviewText:    req.ReviewText,
			Rating:        req.Rating,
			ScreenshotURL: req.ScreenshotURL,
			Status:        models.ProofStatusUnderReview,
		}
		return f.reviewRepo.Save(txCtx, review)
	})
	if err != nil {
		if IsReviewStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Product review submission for assignment %s failed: %s", assignment.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionProductReviewSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PRODUCT_REVIEW_SUBMIT_FAILED", "Failed to submit product review", err)
	}

	msg := fmt.Sprintf("Product review submitted for assignment %s", assignment.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionProductReviewSubmitted, msg, true, nil, metadata)

	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err == nil && campaign != nil {
		notifyBrand(ctx, f.guard.brandRepo, f.userRepo, f.notifier, campaign, services.EventProductReviewReceived, nil, nil)
	}

	review.Assignment = assignment
	return &dto.SubmitProductReviewResponse{
		Message: "Product review submitted for approval",
		Review:  ToProductReviewDTO(*review),
	}, nil
}

// Review records the brand's verdict on the store review. Approval opens
// the review bonus payout; a campaign without a bonus produces no entry.
func (f *ProductReviewFlowImpl) Review(ctx context.Context, req *dto.ReviewDecisionRequest, metadata *ClientMetadata) (*dto.ReviewProductReviewResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	reviewUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		return nil, ErrProductReviewNotFound
	}
	review, err := f.reviewRepo.ByUUID(ctx, reviewUUID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_REVIEW_DECISION_FAILED", "Failed to lookup review", err)
	}
	if review == nil {
		return nil, ErrProductReviewNotFound
	}

	assignment, err := f.assignmentRepo.ByID(ctx, review.AssignmentID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_REVIEW_DECISION_FAILED", "Failed to lookup assignment", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_REVIEW_DECISION_FAILED", "Failed to lookup campaign", err)
	}

	if !f.guard.CanReviewAssignment(actor, assignment, campaign) {
		return nil, ErrAccessDenied
	}

	if review.Status != models.ProofStatusUnderReview && review.Status != models.ProofStatusPending {
		return nil, ErrProofNotReviewable
	}

	approved := req.Decision == "approved"
	now := utils.UTCNow()

	var newStatus models.ReviewStatus
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if approved {
			newStatus = models.ReviewStatusApproved
			review.Status = models.ProofStatusApproved
		} else {
			newStatus = models.ReviewStatusRejected
			review.Status = models.ProofStatusRejected
		}
		review.ReviewNotes = req.Notes
		review.ReviewedBy = &actor.User.ID
		review.ReviewedAt = &now

		ok, err := f.assignmentRepo.TransitionReviewStatus(txCtx, assignment.ID,
			[]models.ReviewStatus{models.ReviewStatusReview}, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return ErrReviewStateInvalid
		}

		if err := f.reviewRepo.Update(txCtx, review); err != nil {
			return err
		}

		if approved && campaign != nil {
			_, err := createPayoutIfAbsent(txCtx, f.payoutRepo, assignment, campaign, models.PayoutTypeReviewBonus, campaign.ReviewBonus)
			return err
		}
		return nil
	})
	if err != nil {
		if IsReviewStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Product review %s decision failed: %s", review.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionProductReviewReviewed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PRODUCT_REVIEW_DECISION_FAILED", "Failed to review product review", err)
	}

	msg := fmt.Sprintf("Product review %s %s", review.UUID, review.Status)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionProductReviewReviewed, msg, true, nil, metadata)

	if campaign != nil {
		eventType := services.EventProductReviewApproved
		if !approved {
			eventType = services.EventProductReviewRejected
		}
		notifyInfluencer(ctx, f.guard.influencerRepo, f.userRepo, f.notifier, assignment.InfluencerID, campaign, eventType, nil, req.Notes)
	}

	review.Assignment = assignment
	return &dto.ReviewProductReviewResponse{
		Message:      fmt.Sprintf("Product review %s", review.Status),
		Review:       ToProductReviewDTO(*review),
		ReviewStatus: newStatus.String(),
	}, nil
}
