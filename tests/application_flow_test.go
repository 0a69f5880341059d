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

func TestApply(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		openCampaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusPublished)
		require.NoError(t, err)

		t.Run("SuccessfulApply", func(t *testing.T) {
			result, err := fs.applications.Apply(ctx, &dto.ApplyRequest{
				UserID:       influencerUser.ID,
				CampaignUUID: openCampaign.UUID.String(),
				Message:      utils.ToPtr("I review gadgets weekly"),
			}, testMeta())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "applied", result.Application.Status)

			rows, err := fs.applicationRepo.ByFilter(ctx, models.ApplicationFilter{
				CampaignID:   &openCampaign.ID,
				InfluencerID: &influencer.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, models.ApplicationStatusApplied, rows[0].Status)
		})

		t.Run("DuplicateApplyRejected", func(t *testing.T) {
			_, err := fs.applications.Apply(ctx, &dto.ApplyRequest{
				UserID:       influencerUser.ID,
				CampaignUUID: openCampaign.UUID.String(),
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadyApplied(err))
		})

		t.Run("DraftCampaignNotOpen", func(t *testing.T) {
			draft, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusDraft)
			require.NoError(t, err)

			_, err = fs.applications.Apply(ctx, &dto.ApplyRequest{
				UserID:       influencerUser.ID,
				CampaignUUID: draft.UUID.String(),
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotOpen(err))
		})

		t.Run("ClosedCampaignNotOpen", func(t *testing.T) {
			closed, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusClosed)
			require.NoError(t, err)

			_, err = fs.applications.Apply(ctx, &dto.ApplyRequest{
				UserID:       influencerUser.ID,
				CampaignUUID: closed.UUID.String(),
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignNotOpen(err))
		})

		t.Run("BrandCannotApply", func(t *testing.T) {
			brandUser2, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			_, err = fs.applications.Apply(ctx, &dto.ApplyRequest{
				UserID:       brandUser2.ID,
				CampaignUUID: openCampaign.UUID.String(),
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestApplicationDecision(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		_, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
		require.NoError(t, err)
		application, err := fixtures.CreateTestApplication(campaign, influencer, models.ApplicationStatusApplied)
		require.NoError(t, err)

		t.Run("AcceptCreatesAssignment", func(t *testing.T) {
			result, err := fs.applications.UpdateStatus(ctx, &dto.UpdateApplicationStatusRequest{
				UUID:   application.UUID.String(),
				UserID: brandUser.ID,
				Status: "accepted",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "accepted", result.Application.Status)
			require.NotNil(t, result.Assignment)
			assert.Equal(t, "purchase_required", result.Assignment.Status)
			assert.Equal(t, "none", result.Assignment.ReviewStatus)

			assignments, err := fs.assignmentRepo.ByFilter(ctx, models.AssignmentFilter{
				ApplicationID: &application.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, assignments, 1)
			assert.Equal(t, models.AssignmentStatusPurchaseRequired, assignments[0].Status)
			assert.NotEmpty(t, assignments[0].RedirectToken)
		})

		t.Run("AcceptedIsTerminal", func(t *testing.T) {
			_, err := fs.applications.UpdateStatus(ctx, &dto.UpdateApplicationStatusRequest{
				UUID:   application.UUID.String(),
				UserID: brandUser.ID,
				Status: "declined",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsApplicationStateInvalid(err))
		})

		t.Run("ShortlistThenDecline", func(t *testing.T) {
			_, influencer2, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)
			app2, err := fixtures.CreateTestApplication(campaign, influencer2, models.ApplicationStatusApplied)
			require.NoError(t, err)

			result, err := fs.applications.UpdateStatus(ctx, &dto.UpdateApplicationStatusRequest{
				UUID:   app2.UUID.String(),
				UserID: brandUser.ID,
				Status: "shortlisted",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "shortlisted", result.Application.Status)
			assert.Nil(t, result.Assignment)

			result, err = fs.applications.UpdateStatus(ctx, &dto.UpdateApplicationStatusRequest{
				UUID:   app2.UUID.String(),
				UserID: brandUser.ID,
				Status: "declined",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "declined", result.Application.Status)

			// declining never creates an assignment
			assignments, err := fs.assignmentRepo.ByFilter(ctx, models.AssignmentFilter{
				ApplicationID: &app2.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			assert.Empty(t, assignments)
		})

		t.Run("ForeignBrandCannotDecide", func(t *testing.T) {
			otherBrandUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)
			_, influencer3, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)
			app3, err := fixtures.CreateTestApplication(campaign, influencer3, models.ApplicationStatusApplied)
			require.NoError(t, err)

			_, err = fs.applications.UpdateStatus(ctx, &dto.UpdateApplicationStatusRequest{
				UUID:   app3.UUID.String(),
				UserID: otherBrandUser.ID,
				Status: "accepted",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("StaleDecisionDoesNotFire", func(t *testing.T) {
			// Simulates a decision losing a race: the writer validated the
			// transition against a state the row has since left. The
			// conditional update must not flip an accepted application.
			moved, err := fs.applicationRepo.TransitionStatus(ctx, application.ID,
				[]models.ApplicationStatus{models.ApplicationStatusApplied, models.ApplicationStatusShortlisted},
				models.ApplicationStatusDeclined)
			require.NoError(t, err)
			assert.False(t, moved)

			stored, err := fs.applicationRepo.ByUUID(ctx, application.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.ApplicationStatusAccepted, stored.Status)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListApplications(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignStatusLive)
		require.NoError(t, err)
		_, err = fixtures.CreateTestApplication(campaign, influencer, models.ApplicationStatusApplied)
		require.NoError(t, err)

		t.Run("InfluencerSeesOwn", func(t *testing.T) {
			result, err := fs.applications.ListApplications(ctx, &dto.ListApplicationsRequest{
				UserID: influencerUser.ID,
			})
			require.NoError(t, err)
			require.Len(t, result.Applications, 1)
		})

		t.Run("BrandListsByCampaign", func(t *testing.T) {
			result, err := fs.applications.ListApplications(ctx, &dto.ListApplicationsRequest{
				UserID:       brandUser.ID,
				CampaignUUID: campaign.UUID.String(),
			})
			require.NoError(t, err)
			require.Len(t, result.Applications, 1)
		})

		t.Run("ForeignBrandDenied", func(t *testing.T) {
			otherBrandUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			_, err = fs.applications.ListApplications(ctx, &dto.ListApplicationsRequest{
				UserID:       otherBrandUser.ID,
				CampaignUUID: campaign.UUID.String(),
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}
