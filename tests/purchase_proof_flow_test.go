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

func proofRequest(userID uint, assignmentUUID string) *dto.SubmitPurchaseProofRequest {
	return &dto.SubmitPurchaseProofRequest{
		AssignmentUUID: assignmentUUID,
		UserID:         userID,
		OrderID:        "112-1234567-7654321",
		Price:          29.99,
		ScreenshotURLs: []string{"https://cdn.example.com/proof-1.png"},
	}
}

func TestSubmitPurchaseProof(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

		t.Run("SuccessfulSubmit", func(t *testing.T) {
			result, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "under_review", result.Proof.Status)
			// the owner sees their own order id unmasked
			assert.Equal(t, "112-1234567-7654321", result.Proof.OrderID)

			stored, err := fs.assignmentRepo.ByID(ctx, assignment.ID)
			require.NoError(t, err)
			assert.Equal(t, models.AssignmentStatusPurchaseReview, stored.Status)
		})

		t.Run("SecondSubmitWhileUnderReviewRejected", func(t *testing.T) {
			_, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAssignmentStateInvalid(err))
		})

		t.Run("ForeignInfluencerDenied", func(t *testing.T) {
			otherUser, _, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)

			_, err = fs.proofs.Submit(ctx, proofRequest(otherUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("NonPositivePriceRejected", func(t *testing.T) {
			_, assignment2 := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			req := proofRequest(influencerUser.ID, assignment2.UUID.String())
			req.Price = 0
			_, err = fs.proofs.Submit(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsPriceInvalid(err))
		})

		t.Run("ScreenshotRequired", func(t *testing.T) {
			_, assignment3 := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			req := proofRequest(influencerUser.ID, assignment3.UUID.String())
			req.ScreenshotURLs = nil
			_, err = fs.proofs.Submit(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsScreenshotRequired(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestReviewPurchaseProof(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		t.Run("ApprovalOpensReimbursement", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "purchase_approved", result.AssignmentStatus)
			assert.Equal(t, "approved", result.Proof.Status)
			// reviewers see the masked order id
			assert.NotContains(t, result.Proof.OrderID, "1234567")

			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeReimbursement)
			require.NoError(t, err)
			require.NotNil(t, payout)
			assert.Equal(t, 29.99, payout.Amount)
			assert.Equal(t, utils.USDCurrency, payout.Currency)
			assert.Equal(t, models.PayoutStatusPending, payout.Status)
			assert.Equal(t, influencer.ID, payout.InfluencerID)
			assert.Equal(t, brand.ID, payout.BrandID)
		})

		t.Run("RejectionReopensSubmission", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "rejected",
				Notes:    utils.ToPtr("Screenshot is unreadable"),
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "purchase_required", result.AssignmentStatus)
			assert.Equal(t, "rejected", result.Proof.Status)

			// no payout for a rejected proof
			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeReimbursement)
			require.NoError(t, err)
			assert.Nil(t, payout)

			// resubmission replaces the rejected row in place
			req := proofRequest(influencerUser.ID, assignment.UUID.String())
			req.OrderID = "112-9999999-0000001"
			req.Price = 34.50
			resubmitted, err := fs.proofs.Submit(ctx, req, testMeta())
			require.NoError(t, err)
			assert.Equal(t, submitted.Proof.UUID, resubmitted.Proof.UUID)
			assert.Equal(t, "under_review", resubmitted.Proof.Status)
			assert.Equal(t, 34.50, resubmitted.Proof.Price)
			assert.Nil(t, resubmitted.Proof.ReviewNotes)

			proofs, err := fs.proofRepo.ByFilter(ctx, models.PurchaseProofFilter{AssignmentID: &assignment.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, proofs, 1)
		})

		t.Run("DoubleReviewRejected", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			_, err = fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)

			_, err = fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsProofNotReviewable(err))
		})

		t.Run("ApprovedProofCannotBeReplaced", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			_, err = fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.NoError(t, err)

			_, err = fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsProofAlreadyApproved(err))
		})

		t.Run("ForeignBrandCannotReview", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			otherBrandUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			_, err = fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   otherBrandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("ChangesRequestedReopensSubmission", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			result, err := fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "changes_requested",
				Notes:    utils.ToPtr("order id does not match the screenshot"),
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "changes_requested", result.Proof.Status)
			assert.Equal(t, "purchase_required", result.AssignmentStatus)

			// no money moves on a change request
			payout, err := fs.payoutRepo.ByAssignmentAndType(ctx, assignment.ID, models.PayoutTypeReimbursement)
			require.NoError(t, err)
			assert.Nil(t, payout)

			// the influencer may amend the same proof row
			amended, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)
			assert.Equal(t, submitted.Proof.UUID, amended.Proof.UUID)
			assert.Equal(t, "under_review", amended.Proof.Status)
		})

		t.Run("MissingCampaignRowRejected", func(t *testing.T) {
			campaign, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

			submitted, err := fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, assignment.UUID.String()), testMeta())
			require.NoError(t, err)

			// Orphan the assignment so the campaign lookup comes back empty.
			require.NoError(t, testDB.DB.Exec("ALTER TABLE assignments DROP CONSTRAINT IF EXISTS fk_assignments_campaign").Error)
			require.NoError(t, testDB.DB.Exec("ALTER TABLE applications DROP CONSTRAINT IF EXISTS fk_applications_campaign").Error)
			require.NoError(t, testDB.DB.Exec("DELETE FROM campaigns WHERE id = ?", campaign.ID).Error)

			_, err = fs.proofs.Review(ctx, &dto.ReviewDecisionRequest{
				UUID:     submitted.Proof.UUID,
				UserID:   brandUser.ID,
				Decision: "approved",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
