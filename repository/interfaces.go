package repository

import (
	"context"

	"github.com/amirphl/Kusanagi/models"
	"github.com/google/uuid"
)

// contextKey is the type for context keys used by the repository layer
type contextKey string

// TxContextKey carries an open transaction through a context
const TxContextKey contextKey = "tx"

// Repository is the generic contract shared by all entity repositories
type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository manages platform accounts
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

// BrandRepository manages brand profiles
type BrandRepository interface {
	Repository[models.Brand, models.BrandFilter]
	ByUserID(ctx context.Context, userID uint) (*models.Brand, error)
}

// InfluencerRepository manages influencer profiles
type InfluencerRepository interface {
	Repository[models.Influencer, models.InfluencerFilter]
	ByUserID(ctx context.Context, userID uint) (*models.Influencer, error)
}

// CampaignRepository manages marketplace campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	// TransitionStatus moves the campaign only while it is still in one of
	// the expected states. Returns false when a concurrent writer got
	// there first.
	TransitionStatus(ctx context.Context, id uint, expected []models.CampaignStatus, newStatus models.CampaignStatus) (bool, error)
	// DeleteCascade removes the campaign and every dependent row. Run it
	// inside WithTransaction.
	DeleteCascade(ctx context.Context, campaignID uint) error
}

// ApplicationRepository manages campaign applications
type ApplicationRepository interface {
	Repository[models.Application, models.ApplicationFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	// SaveIfAbsent inserts the application unless one already exists for the
	// same (campaign, influencer) pair. Returns false when the insert was
	// skipped because of the existing row.
	SaveIfAbsent(ctx context.Context, application *models.Application) (bool, error)
	// TransitionStatus moves the application only while it is still in one
	// of the expected states. Returns false when a concurrent decision got
	// there first.
	TransitionStatus(ctx context.Context, id uint, expected []models.ApplicationStatus, newStatus models.ApplicationStatus) (bool, error)
}

// AssignmentRepository manages assignments and their state transitions
type AssignmentRepository interface {
	Repository[models.Assignment, models.AssignmentFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	ByRedirectToken(ctx context.Context, token string) (*models.Assignment, error)
	// TransitionStatus atomically moves the assignment to newStatus provided
	// its current status is one of expected. Returns false when no row
	// matched, meaning the assignment was not in an expected state.
	TransitionStatus(ctx context.Context, id uint, expected []models.AssignmentStatus, newStatus models.AssignmentStatus) (bool, error)
	// TransitionReviewStatus is the same conditional update for the
	// secondary product review machine.
	TransitionReviewStatus(ctx context.Context, id uint, expected []models.ReviewStatus, newStatus models.ReviewStatus) (bool, error)
}

// PurchaseProofRepository manages purchase evidence rows
type PurchaseProofRepository interface {
	Repository[models.PurchaseProof, models.PurchaseProofFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.PurchaseProof, error)
	ByAssignmentID(ctx context.Context, assignmentID uint) (*models.PurchaseProof, error)
}

// PostSubmissionRepository manages content submission rows
type PostSubmissionRepository interface {
	Repository[models.PostSubmission, models.PostSubmissionFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.PostSubmission, error)
	ByAssignmentID(ctx context.Context, assignmentID uint) (*models.PostSubmission, error)
}

// ProductReviewRepository manages product review rows
type ProductReviewRepository interface {
	Repository[models.ProductReview, models.ProductReviewFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.ProductReview, error)
	ByAssignmentID(ctx context.Context, assignmentID uint) (*models.ProductReview, error)
}

// PayoutRepository is the append-only payout ledger
type PayoutRepository interface {
	Repository[models.Payout, models.PayoutFilter]
	ByUUID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	ByAssignmentAndType(ctx context.Context, assignmentID uint, payoutType models.PayoutType) (*models.Payout, error)
	// SaveIfAbsent inserts the payout unless one already exists for the same
	// (assignment, type) pair. The composite unique index makes this safe
	// under concurrent callers. Returns false when the insert was skipped.
	SaveIfAbsent(ctx context.Context, payout *models.Payout) (bool, error)
	SumAmount(ctx context.Context, filter models.PayoutFilter) (float64, error)
}

// ClickLogRepository is the append-only click attribution log
type ClickLogRepository interface {
	Save(ctx context.Context, click *models.ClickLog) error
	ByFilter(ctx context.Context, filter models.ClickLogFilter, orderBy string, limit, offset int) ([]*models.ClickLog, error)
	Count(ctx context.Context, filter models.ClickLogFilter) (int64, error)
}

// AuditLogRepository records audit trail entries
type AuditLogRepository interface {
	Save(ctx context.Context, log *models.AuditLog) error
	ByFilter(ctx context.Context, filter models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error)
}
