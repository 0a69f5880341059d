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

func TestApproveUser(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("ApprovesPendingInfluencer", func(t *testing.T) {
			registered, err := fs.auth.Register(ctx, &dto.RegisterRequest{
				Email:           "pending-creator@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "influencer",
				Name:            utils.ToPtr("Pending Creator"),
			}, testMeta())
			require.NoError(t, err)
			require.Equal(t, "pending", registered.User.Status)

			result, err := fs.admin.ApproveUser(ctx, &dto.ApproveUserRequest{
				UUID:    registered.User.UUID,
				AdminID: admin.ID,
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "active", result.User.Status)

			user, err := fs.userRepo.ByEmail(ctx, "pending-creator@example.com")
			require.NoError(t, err)
			assert.Equal(t, models.UserStatusActive, user.Status)

			influencer, err := fs.influencerRepo.ByUserID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, influencer)
			assert.Equal(t, models.ProfileStatusApproved, influencer.Status)
		})

		t.Run("ApprovesPendingBrand", func(t *testing.T) {
			registered, err := fs.auth.Register(ctx, &dto.RegisterRequest{
				Email:           "pending-brand@example.com",
				Password:        "SecurePass123!",
				ConfirmPassword: "SecurePass123!",
				Role:            "brand",
				CompanyName:     utils.ToPtr("Pending Widgets"),
			}, testMeta())
			require.NoError(t, err)

			result, err := fs.admin.ApproveUser(ctx, &dto.ApproveUserRequest{
				UUID:    registered.User.UUID,
				AdminID: admin.ID,
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "active", result.User.Status)
			require.NotNil(t, result.User.Brand)
			assert.Equal(t, "approved", result.User.Brand.Status)
		})

		t.Run("NonAdminDenied", func(t *testing.T) {
			brandUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)
			pending, err := fixtures.CreateTestUserWithStatus(models.UserRoleInfluencer, models.UserStatusPending)
			require.NoError(t, err)

			_, err = fs.admin.ApproveUser(ctx, &dto.ApproveUserRequest{
				UUID:    pending.UUID.String(),
				AdminID: brandUser.ID,
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("UnknownUser", func(t *testing.T) {
			_, err := fs.admin.ApproveUser(ctx, &dto.ApproveUserRequest{
				UUID:    "00000000-0000-0000-0000-000000000000",
				AdminID: admin.ID,
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminDashboard(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		_, completed := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)
		_, open := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

		// one pending proof, a couple of clicks, one pending payout
		_, err = fs.proofs.Submit(ctx, proofRequest(influencerUser.ID, open.UUID.String()), testMeta())
		require.NoError(t, err)
		_, err = fs.redirects.Visit(ctx, completed.RedirectToken, nil, utils.ToPtr("203.0.113.9"), nil)
		require.NoError(t, err)
		_, err = fs.redirects.Visit(ctx, completed.RedirectToken, nil, utils.ToPtr("203.0.113.9"), nil)
		require.NoError(t, err)

		_, err = fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
			UserID:         admin.ID,
			AssignmentUUID: completed.UUID.String(),
			Type:           "commission",
			Amount:         15.00,
		}, testMeta())
		require.NoError(t, err)

		t.Run("CountersReflectState", func(t *testing.T) {
			dashboard, err := fs.admin.Dashboard(ctx, admin.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(3), dashboard.TotalUsers)
			assert.Equal(t, int64(0), dashboard.PendingUsers)
			assert.Equal(t, int64(2), dashboard.TotalCampaigns)
			assert.Equal(t, int64(2), dashboard.LiveCampaigns)
			assert.Equal(t, int64(2), dashboard.TotalAssignments)
			assert.Equal(t, int64(1), dashboard.CompletedAssignments)
			assert.Equal(t, int64(2), dashboard.TotalClicks)
			assert.Equal(t, int64(1), dashboard.PendingProofs)
			assert.Equal(t, int64(1), dashboard.PendingPayouts)
		})

		t.Run("NonAdminDenied", func(t *testing.T) {
			_, err := fs.admin.Dashboard(ctx, influencerUser.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}
