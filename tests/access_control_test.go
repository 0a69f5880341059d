package tests

import (
	"context"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Account status gating is enforced once when the actor is resolved, so a
// single flow entry point is enough to exercise it.
func TestActorResolution(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		t.Run("PendingAccountBlocked", func(t *testing.T) {
			pending, err := fixtures.CreateTestUserWithStatus(models.UserRoleInfluencer, models.UserStatusPending)
			require.NoError(t, err)

			_, err = fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: pending.ID})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("SuspendedAccountBlocked", func(t *testing.T) {
			suspended, err := fixtures.CreateTestUserWithStatus(models.UserRoleBrand, models.UserStatusSuspended)
			require.NoError(t, err)

			_, err = fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: suspended.ID})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountSuspended(err))
		})

		t.Run("ActiveAccountWithoutProfileBlocked", func(t *testing.T) {
			orphan, err := fixtures.CreateTestUser(models.UserRoleInfluencer)
			require.NoError(t, err)

			_, err = fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: orphan.ID})
			require.Error(t, err)
			assert.True(t, businessflow.IsProfileNotFound(err))
		})

		t.Run("UnknownAccount", func(t *testing.T) {
			_, err := fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: 999999})
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
