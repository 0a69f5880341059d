package tests

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCampaignRequest(userID uint) *dto.CreateCampaignRequest {
	now := time.Now().UTC()
	return &dto.CreateCampaignRequest{
		UserID:              userID,
		Title:               "Summer Launch",
		ProductName:         utils.ToPtr("Wireless Earbuds"),
		AffiliateURL:        "https://www.amazon.com/dp/B0EARBUDS1",
		PurchaseWindowStart: now,
		PurchaseWindowEnd:   now.Add(14 * 24 * time.Hour),
		PostWindowStart:     now.Add(24 * time.Hour),
		PostWindowEnd:       now.Add(30 * 24 * time.Hour),
		CommissionAmount:    20.00,
		ReviewBonus:         5.00,
	}
}

func TestCreateCampaign(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)

		t.Run("SuccessfulCreate", func(t *testing.T) {
			result, err := fs.campaigns.CreateCampaign(ctx, validCampaignRequest(brandUser.ID), testMeta())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "draft", result.Campaign.Status)
			assert.Equal(t, 20.00, result.Campaign.CommissionAmount)
			assert.NotEmpty(t, result.Campaign.UUID)

			campaigns, err := fs.campaignRepo.ByFilter(ctx, models.CampaignFilter{BrandID: &brand.ID}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, campaigns, 1)
			assert.Equal(t, models.CampaignStatusDraft, campaigns[0].Status)
		})

		t.Run("InvertedPurchaseWindowRejected", func(t *testing.T) {
			req := validCampaignRequest(brandUser.ID)
			req.PurchaseWindowEnd = req.PurchaseWindowStart.Add(-time.Hour)

			_, err := fs.campaigns.CreateCampaign(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsWindowValidation(err))
		})

		t.Run("PostWindowBeforePurchaseRejected", func(t *testing.T) {
			req := validCampaignRequest(brandUser.ID)
			req.PostWindowStart = req.PurchaseWindowStart.Add(-48 * time.Hour)

			_, err := fs.campaigns.CreateCampaign(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsWindowValidation(err))
		})

		t.Run("NonAmazonURLRejected", func(t *testing.T) {
			req := validCampaignRequest(brandUser.ID)
			req.AffiliateURL = "https://shop.example.com/product/1"

			_, err := fs.campaigns.CreateCampaign(ctx, req, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAffiliateURLInvalid(err))
		})

		t.Run("InfluencerCannotCreate", func(t *testing.T) {
			influencerUser, _, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)

			_, err = fs.campaigns.CreateCampaign(ctx, validCampaignRequest(influencerUser.ID), testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusDraft)
		require.NoError(t, err)

		t.Run("DraftToPublishedToLive", func(t *testing.T) {
			result, err := fs.campaigns.PublishCampaign(ctx, &dto.PublishCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: brandUser.ID,
				Status: "published",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "published", result.Campaign.Status)

			result, err = fs.campaigns.PublishCampaign(ctx, &dto.PublishCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: brandUser.ID,
				Status: "live",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "live", result.Campaign.Status)
		})

		t.Run("LiveCannotReturnToPublished", func(t *testing.T) {
			_, err := fs.campaigns.PublishCampaign(ctx, &dto.PublishCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: brandUser.ID,
				Status: "published",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignStateInvalid(err))
		})

		t.Run("LiveCampaignNotEditable", func(t *testing.T) {
			_, err := fs.campaigns.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: brandUser.ID,
				Title:  utils.ToPtr("Renamed"),
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotEditable(err))
		})

		t.Run("ForeignBrandCannotManage", func(t *testing.T) {
			otherUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			_, err = fs.campaigns.PublishCampaign(ctx, &dto.PublishCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: otherUser.ID,
				Status: "closed",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("DraftCanBeUpdated", func(t *testing.T) {
			draft, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusDraft)
			require.NoError(t, err)

			result, err := fs.campaigns.UpdateCampaign(ctx, &dto.UpdateCampaignRequest{
				UUID:        draft.UUID.String(),
				UserID:      brandUser.ID,
				Title:       utils.ToPtr("Updated Title"),
				ReviewBonus: utils.ToPtr(7.50),
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "Updated Title", result.Campaign.Title)
			assert.Equal(t, 7.50, result.Campaign.ReviewBonus)
		})

		t.Run("ClosedIsTerminal", func(t *testing.T) {
			closed, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusClosed)
			require.NoError(t, err)

			_, err = fs.campaigns.PublishCampaign(ctx, &dto.PublishCampaignRequest{
				UUID:   closed.UUID.String(),
				UserID: brandUser.ID,
				Status: "published",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignStateInvalid(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteCampaign(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)

		t.Run("BrandDeletesIdleCampaign", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
			require.NoError(t, err)

			_, err = fs.campaigns.DeleteCampaign(ctx, &dto.DeleteCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: brandUser.ID,
			}, testMeta())
			require.NoError(t, err)

			stored, err := fs.campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, models.CampaignStatusClosed, stored.Status)
		})

		t.Run("BrandBlockedByAssignments", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
			require.NoError(t, err)
			_, influencer, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignment(campaign, influencer, models.AssignmentStatusPurchaseRequired)
			require.NoError(t, err)

			_, err = fs.campaigns.DeleteCampaign(ctx, &dto.DeleteCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: brandUser.ID,
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignHasActiveAssignments(err))
		})

		t.Run("AdminForceDeleteCascades", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
			require.NoError(t, err)
			_, influencer, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)
			assignment, err := fixtures.CreateTestAssignment(campaign, influencer, models.AssignmentStatusPosting)
			require.NoError(t, err)

			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			_, err = fs.campaigns.DeleteCampaign(ctx, &dto.DeleteCampaignRequest{
				UUID:   campaign.UUID.String(),
				UserID: admin.ID,
			}, testMeta())
			require.NoError(t, err)

			stored, err := fs.campaignRepo.ByUUID(ctx, campaign.UUID)
			require.NoError(t, err)
			assert.Nil(t, stored)

			goneAssignment, err := fs.assignmentRepo.ByUUID(ctx, assignment.UUID)
			require.NoError(t, err)
			assert.Nil(t, goneAssignment)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCampaignsVisibility(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, _, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		_, err = fixtures.CreateTestCampaign(brand, models.CampaignStatusDraft)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
		require.NoError(t, err)

		t.Run("BrandSeesAllOwnStatuses", func(t *testing.T) {
			result, err := fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: brandUser.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(3), result.Pagination.Total)
		})

		t.Run("InfluencerDefaultsToPublished", func(t *testing.T) {
			result, err := fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: influencerUser.ID})
			require.NoError(t, err)
			require.Len(t, result.Campaigns, 1)
			assert.Equal(t, "published", result.Campaigns[0].Status)
		})

		t.Run("InfluencerMayFilterLive", func(t *testing.T) {
			result, err := fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{
				UserID: influencerUser.ID,
				Status: utils.ToPtr("live"),
			})
			require.NoError(t, err)
			require.Len(t, result.Campaigns, 1)
			assert.Equal(t, "live", result.Campaigns[0].Status)
		})

		t.Run("InfluencerCannotFilterDrafts", func(t *testing.T) {
			_, err := fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{
				UserID: influencerUser.ID,
				Status: utils.ToPtr("draft"),
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("AdminSeesEverything", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			result, err := fs.campaigns.ListCampaigns(ctx, &dto.ListCampaignsRequest{UserID: admin.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(3), result.Pagination.Total)
		})

		t.Run("InfluencerCannotViewForeignDraft", func(t *testing.T) {
			draft, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusDraft)
			require.NoError(t, err)

			_, err = fs.campaigns.GetCampaign(ctx, &dto.GetCampaignRequest{
				UUID:   draft.UUID.String(),
				UserID: influencerUser.ID,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}
