package tests

import (
	"context"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productReviewRequest(userID uint, assignmentUUID string) *dto.SubmitProductReviewRequest {
	return &dto.SubmitProductReviewRequest{
		AssignmentUUID: assignmentUUID,
		UserID:         userID,
		ReviewText:     "Great sound quality and the battery lasts all day.",
		Rating:         5,
	}
}

func TestSubmitProductReview(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		t.Run("SubmitOnCompletedAssignment", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			result, err := fs.reviews.Submit(ctx, productReviewRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)
			assert.Equal(t, "under_review", result.Review.Status)
			assert.Equal(t, 5, result.Review.Rating)

			stored, err := fs.assignmentRepo.ByID(ctx, assignment.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ReviewStatusReview, stored.ReviewStatus)
			// the primary machine is untouched
			assert.Equal(t, models.AssignmentStatusCompleted, stored.Status)
		})

		t.Run("IncompleteAssignmentRejected", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPosting)

			_, err := fs.reviews.Submit(ctx, productReviewRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAssignmentStateInvalid(err))
		})

		t.Run("RatingOutOfRange", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			req := productReviewRequest(influencerUser.ID, assignment.UUID.String())
			req.Rating = 6
			_, err := fs.reviews.Submit(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsRatingOutOfRange(err))

			req.Rating = 0
			_, err = fs.reviews.Submit(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsRatingOutOfRange(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestReviewProductReview(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		t.Run("ApprovalOpensReviewBonus", func(t *testing.T) {
			campaign, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			submitted, err := fs.reviews.Submit(ctx, productReviewRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.reviews.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Review.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "approved", result.ReviewStatus)

			stored, err := fs.assignmentRepo.ByID(ctx, assignment.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ReviewStatusApproved, stored.ReviewStatus)

			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeReviewBonus)
			require.NoError(t, err)
			require.NotNil(t, payout)
			assert.Equal(t, campaign.ReviewBonus, payout.Amount)
			assert.Equal(t, models.PayoutStatusPending, payout.Status)
		})

		t.Run("RejectionAllowsResubmission", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			submitted, err := fs.reviews.Submit(ctx, productReviewRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.reviews.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Review.UUID,
				UserID:   brandUser.ID,
				Decision: "rejected",
				Notes:    utils.ToPtr("Too short, mention the product by name"),
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "rejected", result.ReviewStatus)

			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeReviewBonus)
			require.NoError(t, err)
			assert.Nil(t, payout)

			req := productReviewRequest(influencerUser.ID, assignment.UUID.String())
			req.ReviewText = "The Wireless Earbuds surprised me, crisp highs and solid bass."
			resubmitted, err := fs.reviews.Submit(ctx, req, testMeta())
			require.NoError(t, err)
			assert.Equal(t, submitted.Review.UUID, resubmitted.Review.UUID)
			assert.Equal(t, "under_review", resubmitted.Review.Status)

			rows, err := fs.reviewRepo.ByFilter(ctx, models.ProductReviewFilter{AssignmentID: &assignment.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})

		t.Run("ApprovedReviewIsTerminal", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			submitted, err := fs.reviews.Submit(ctx, productReviewRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			_, err = fs.reviews.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Review.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)

			// neither a new submission nor a second verdict is possible
			_, err = fs.reviews.Submit(ctx, productReviewRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsProofAlreadyApproved(err))

			_, err = fs.reviews.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Review.UUID,
				UserID:   brandUser.ID,
				Decision: "rejected",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsProofNotReviewable(err))
		})

		return nil
	})
	require.NoError(t, err)
}
