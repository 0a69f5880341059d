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

func postRequest(userID uint, assignmentUUID string) *dto.SubmitPostRequest {
	return &dto.SubmitPostRequest{
		AssignmentUUID: assignmentUUID,
		UserID:         userID,
		PostURL:        "https://www.instagram.com/p/test-post/",
		Platform:       "instagram",
		PostType:       "reel",
		Caption:        utils.ToPtr("Loving this product"),
	}
}

func TestSubmitPost(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		t.Run("SubmitAfterPurchaseApproval", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseApproved)

			result, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)
			assert.Equal(t, "under_review", result.Submission.Status)
			assert.Equal(t, "instagram", result.Submission.Platform)

			stored, err := fs.assignmentRepo.ByID(ctx, assignment.ID)
			require.NoError(t, err)
			assert.Equal(t, models.AssignmentStatusPostReview, stored.Status)
		})

		t.Run("SubmitFromPostingAfterRejection", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPosting)

			result, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)
			assert.Equal(t, "under_review", result.Submission.Status)
		})

		t.Run("SubmitBeforePurchaseApprovalRejected", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			_, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAssignmentStateInvalid(err))
		})

		t.Run("ForeignInfluencerDenied", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseApproved)
			otherUser, _, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)

			_, err = fs.posts.Submit(ctx, postRequest(otherUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestReviewPost(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		t.Run("ApprovalCompletesAndPaysCommission", func(t *testing.T) {
			campaign, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseApproved)

			submitted, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.posts.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Submission.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "completed", result.AssignmentStatus)
			assert.Equal(t, "approved", result.Submission.Status)

			stored, err := fs.assignmentRepo.ByID(ctx, assignment.ID)
			require.NoError(t, err)
			assert.Equal(t, models.AssignmentStatusCompleted, stored.Status)
			assert.NotNil(t, stored.CompletedAt)

			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeCommission)
			require.NoError(t, err)
			require.NotNil(t, payout)
			assert.Equal(t, campaign.CommissionAmount, payout.Amount)
			assert.Equal(t, models.PayoutStatusPending, payout.Status)
		})

		t.Run("RejectionReopensPosting", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseApproved)

			submitted, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.posts.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Submission.UUID,
				UserID:   brandUser.ID,
				Decision: "rejected",
				Notes:    utils.ToPtr("Caption misses the campaign tag"),
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "posting", result.AssignmentStatus)

			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeCommission)
			require.NoError(t, err)
			assert.Nil(t, payout)

			// resubmission replaces the rejected row in place
			req := postRequest(influencerUser.ID, assignment.UUID.String())
			req.PostURL = "https://www.instagram.com/p/fixed-post/"
			resubmitted, err := fs.posts.Submit(ctx, req, testMeta())
			require.NoError(t, err)
			assert.Equal(t, submitted.Submission.UUID, resubmitted.Submission.UUID)
			assert.Equal(t, "https://www.instagram.com/p/fixed-post/", resubmitted.Submission.PostURL)

			rows, err := fs.submissionRepo.ByFilter(ctx, models.PostSubmissionFilter{AssignmentID: &assignment.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})

		t.Run("ZeroCommissionProducesNoPayout", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
			require.NoError(t, err)
			campaign.CommissionAmount = 0
			require.NoError(t, testDB.DB.Save(campaign).Error)

			assignment, err := fixtures.CreateTestAssignment(campaign, influencer, models.AssignmentStatusPurchaseApproved)
			require.NoError(t, err)

			submitted, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.posts.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Submission.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "completed", result.AssignmentStatus)

			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeCommission)
			require.NoError(t, err)
			assert.Nil(t, payout)
		})

		t.Run("DoubleReviewRejected", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseApproved)

			submitted, err := fs.posts.Submit(ctx, postRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			_, err = fs.posts.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Submission.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)

			_, err = fs.posts.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Submission.UUID,
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
