package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/Kusanagi/app/scheduler"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
)

func TestCampaignSchedulerSweep(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		sweep := scheduler.NewCampaignScheduler(campaignRepo, nil, 0)

		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)

		t.Run("PublishedCampaignGoesLiveWhenWindowOpens", func(t *testing.T) {
			// Fixture purchase windows open an hour in the past.
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
			require.NoError(t, err)

			sweep.RunOnce(ctx)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusLive, stored.Status)
		})

		t.Run("FutureWindowStaysPublished", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
			require.NoError(t, err)

			campaign.PurchaseWindowStart = utils.UTCNow().Add(1 * time.Hour)
			require.NoError(t, testDB.DB.Save(campaign).Error)

			sweep.RunOnce(ctx)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusPublished, stored.Status)
		})

		t.Run("ExpiredLiveCampaignCloses", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
			require.NoError(t, err)

			campaign.PostWindowEnd = utils.UTCNow().Add(-1 * time.Hour)
			require.NoError(t, testDB.DB.Save(campaign).Error)

			sweep.RunOnce(ctx)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusClosed, stored.Status)
		})

		t.Run("ExpiredPublishedCampaignCloses", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
			require.NoError(t, err)

			campaign.PostWindowEnd = utils.UTCNow().Add(-1 * time.Hour)
			require.NoError(t, testDB.DB.Save(campaign).Error)

			sweep.RunOnce(ctx)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusClosed, stored.Status)
		})

		t.Run("DraftCampaignUntouched", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusDraft)
			require.NoError(t, err)

			sweep.RunOnce(ctx)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusDraft, stored.Status)
		})

		t.Run("ClosedCampaignStaysClosedAfterSweep", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
			require.NoError(t, err)

			moved, err := campaignRepo.TransitionStatus(ctx, campaign.ID,
				[]models.CampaignStatus{models.CampaignStatusPublished},
				models.CampaignStatusClosed)
			require.NoError(t, err)
			require.True(t, moved)

			sweep.RunOnce(ctx)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusClosed, stored.Status)
		})

		t.Run("StaleTransitionDoesNotFire", func(t *testing.T) {
			// Simulates the sweep losing a race: it read the row as
			// published, but a manual close committed in between. The
			// conditional update must not resurrect the campaign.
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusClosed)
			require.NoError(t, err)

			moved, err := campaignRepo.TransitionStatus(ctx, campaign.ID,
				[]models.CampaignStatus{models.CampaignStatusPublished},
				models.CampaignStatusLive)
			require.NoError(t, err)
			assert.False(t, moved)

			stored, err := campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusClosed, stored.Status)
		})

		t.Run("StartStopsCleanly", func(t *testing.T) {
			stop := sweep.Start(ctx)
			stop()
		})

		return nil
	})
	require.NoError(t, err)
}
