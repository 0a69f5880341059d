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

// PurchaseProofFlow defines submission and review of purchase evidence
type PurchaseProofFlow interface {
	Submit(ctx context.Context, req *dto.SubmitPurchaseProofRequest, metadata *ClientMetadata) (*dto.SubmitPurchaseProofResponse, error)
	Review(ctx context.Context, req *dto.ReviewDecisionRequest, metadata *ClientMetadata) (*dto.ReviewPurchaseProofResponse, error)
}

// PurchaseProofFlowImpl implements PurchaseProofFlow
type PurchaseProofFlowImpl struct {
	guard          *AccessControl
	assignmentRepo repository.AssignmentRepository
	campaignRepo   repository.CampaignRepository
	proofRepo      repository.PurchaseProofRepository
	payoutRepo     repository.PayoutRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	db             *gorm.DB
}

// NewPurchaseProofFlow constructs a PurchaseProofFlow
func NewPurchaseProofFlow(
	guard *AccessControl,
	assignmentRepo repository.AssignmentRepository,
	campaignRepo repository.CampaignRepository,
	proofRepo repository.PurchaseProofRepository,
	payoutRepo repository.PayoutRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	db *gorm.DB,
) PurchaseProofFlow {
	return &PurchaseProofFlowImpl{
		guard:          guard,
		assignmentRepo: assignmentRepo,
		campaignRepo:   campaignRepo,
		proofRepo:      proofRepo,
		payoutRepo:     payoutRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		db:             db,
	}
}

// Submit records the influencer's purchase evidence and moves the assignment
// into purchase review. A rejected proof is replaced in place, so at most one
// proof row exists per assignment. The assignment transition is a conditional
// update, so two racing submissions cannot both succeed.
func (f *PurchaseProofFlowImpl) Submit(ctx context.Context, req *dto.SubmitPurchaseProofRequest, metadata *ClientMetadata) (*dto.SubmitPurchaseProofResponse, error) {
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

	if req.Price <= 0 {
		return nil, ErrPriceInvalid
	}
	if len(req.ScreenshotURLs) == 0 {
		return nil, ErrScreenshotRequired
	}

	existing, err := f.proofRepo.ByAssignmentID(ctx, assignment.ID)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_PROOF_SUBMIT_FAILED", "Failed to lookup existing proof", err)
	}
	if existing != nil && existing.Status == models.ProofStatusApproved {
		return nil, ErrProofAlreadyApproved
	}

	var proof *models.PurchaseProof
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		ok, err := f.assignmentRepo.TransitionStatus(txCtx, assignment.ID,
			[]models.AssignmentStatus{models.AssignmentStatusPurchaseRequired},
			models.AssignmentStatusPurchaseReview)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAssignmentStateInvalid
		}

		if existing != nil {
			existing.OrderID = req.OrderID
			existing.OrderDate = req.OrderDate
			existing.Price = req.Price
			existing.ScreenshotURLs = models.StringList(req.ScreenshotURLs)
			existing.ASIN = req.ASIN
			existing.Status = models.ProofStatusUnderReview
			existing.ReviewNotes = nil
			existing.ReviewedBy = nil
			existing.ReviewedAt = nil
			proof = existing
			return f.proofRepo.Update(txCtx, proof)
		}

		proof = &models.PurchaseProof{
			AssignmentID:   assignment.ID,
			InfluencerID:   assignment.InfluencerID,
			OrderID:        req.OrderID,
			OrderDate:      req.OrderDate,
			Price:          req.Price,
			ScreenshotURLs: models.StringList(req.ScreenshotURLs),
			ASIN:           req.ASIN,
			Status:         models.ProofStatusUnderReview,
		}
		return f.proofRepo.Save(txCtx, proof)
	})
	if err != nil {
		if IsAssignmentStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Purchase proof submission for assignment %s failed: %s", assignment.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPurchaseProofSubmitted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PURCHASE_PROOF_SUBMIT_FAILED", "Failed to submit purchase proof", err)
	}

	msg := fmt.Sprintf("Purchase proof submitted for assignment %s", assignment.UUID)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPurchaseProofSubmitted, msg, true, nil, metadata)

	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err == nil && campaign != nil {
		notifyBrand(ctx, f.guard.brandRepo, f.userRepo, f.notifier, campaign, services.EventPurchaseProofReceived, nil, nil)
	}

	proof.Assignment = assignment
	return &dto.SubmitPurchaseProofResponse{
		Message: "Purchase proof submitted for review",
		Proof:   ToPurchaseProofDTO(*proof, true),
	}, nil
}

// Review records the brand's verdict. Approval moves the assignment to
// purchase_approved and opens the reimbursement payout for the purchase
// price; rejecting or requesting changes reopens the assignment for
// resubmission. The payout
// insert is idempotent, so re-running an approval can never double-pay.
func (f *PurchaseProofFlowImpl) Review(ctx context.Context, req *dto.ReviewDecisionRequest, metadata *ClientMetadata) (*dto.ReviewPurchaseProofResponse, error) {
	actor, err := f.guard.ResolveActor(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	proofUUID, err := uuid.Parse(req.UUID)
	if err != nil {
		return nil, ErrPurchaseProofNotFound
	}
	proof, err := f.proofRepo.ByUUID(ctx, proofUUID)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_PROOF_REVIEW_FAILED", "Failed to lookup proof", err)
	}
	if proof == nil {
		return nil, ErrPurchaseProofNotFound
	}

	assignment, err := f.assignmentRepo.ByID(ctx, proof.AssignmentID)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_PROOF_REVIEW_FAILED", "Failed to lookup assignment", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	campaign, err := f.campaignRepo.ByID(ctx, assignment.CampaignID)
	if err != nil {
		return nil, NewBusinessError("PURCHASE_PROOF_REVIEW_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	if !f.guard.CanReviewAssignment(actor, assignment, campaign) {
		return nil, ErrAccessDenied
	}

	if proof.Status != models.ProofStatusUnderReview && proof.Status != models.ProofStatusPending {
		return nil, ErrProofNotReviewable
	}

	approved := req.Decision == "approved"
	now := utils.UTCNow()

	var newStatus models.AssignmentStatus
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		switch {
		case approved:
			newStatus = models.AssignmentStatusPurchaseApproved
			proof.Status = models.ProofStatusApproved
		case req.Decision == "changes_requested":
			// Softer verdict than a rejection: the proof stays on file with
			// the reviewer's notes and the influencer may amend it.
			newStatus = models.AssignmentStatusPurchaseRequired
			proof.Status = models.ProofStatusChangesRequested
		default:
			newStatus = models.AssignmentStatusPurchaseRequired
			proof.Status = models.ProofStatusRejected
		}
		proof.ReviewNotes = req.Notes
		proof.ReviewedBy = &actor.User.ID
		proof.ReviewedAt = &now

		ok, err := f.assignmentRepo.TransitionStatus(txCtx, assignment.ID,
			[]models.AssignmentStatus{models.AssignmentStatusPurchaseReview}, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAssignmentStateInvalid
		}

		if err := f.proofRepo.Update(txCtx, proof); err != nil {
			return err
		}

		if approved {
			_, err := createPayoutIfAbsent(txCtx, f.payoutRepo, assignment, campaign, models.PayoutTypeReimbursement, proof.Price)
			return err
		}
		return nil
	})
	if err != nil {
		if IsAssignmentStateInvalid(err) {
			return nil, err
		}
		errMsg := fmt.Sprintf("Purchase proof %s review failed: %s", proof.UUID, err.Error())
		_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPurchaseProofReviewed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PURCHASE_PROOF_REVIEW_FAILED", "Failed to review purchase proof", err)
	}

	msg := fmt.Sprintf("Purchase proof %s %s", proof.UUID, proof.Status)
	_ = createAuditLog(ctx, f.auditRepo, actor.User, models.AuditActionPurchaseProofReviewed, msg, true, nil, metadata)

	eventType := services.EventPurchaseProofApproved
	if !approved {
		eventType = services.EventPurchaseProofRejected
	}
	notifyInfluencer(ctx, f.guard.influencerRepo, f.userRepo, f.notifier, assignment.InfluencerID, campaign, eventType, nil, req.Notes)

	proof.Assignment = assignment
	return &dto.ReviewPurchaseProofResponse{
		Message:          fmt.Sprintf("Purchase proof %s", proof.Status),
		Proof:            ToPurchaseProofDTO(*proof, false),
		AssignmentStatus: newStatus.String(),
	}, nil
}

// lookupAssignment parses the public identifier and loads the assignment
func lookupAssignment(ctx context.Context, repo repository.AssignmentRepository, rawUUID string) (*models.Assignment, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, ErrAssignmentNotFound
	}
	assignment, err := repo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("ASSIGNMENT_LOOKUP_FAILED", "Failed to lookup assignment", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}
