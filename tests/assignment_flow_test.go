package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAssignment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

		t.Run("OwnerSeesRedirectToken", func(t *testing.T) {
			result, err := fs.assignments.GetAssignment(ctx, &dto.GetAssignmentRequest{
				UUID:   assignment.UUID.String(),
				UserID: influencerUser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, assignment.RedirectToken, result.RedirectToken)
			require.NotNil(t, result.Campaign)
			require.NotNil(t, result.ClickCount)
		})

		t.Run("BrandSeesAssignmentWithoutToken", func(t *testing.T) {
			result, err := fs.assignments.GetAssignment(ctx, &dto.GetAssignmentRequest{
				UUID:   assignment.UUID.String(),
				UserID: brandUser.ID,
			})
			require.NoError(t, err)
			assert.Empty(t, result.RedirectToken)
		})

		t.Run("ForeignInfluencerDenied", func(t *testing.T) {
			otherUser, _, err := fixtures.CreateTestInfluencer()
			require.NoError(t, err)

			_, err = fs.assignments.GetAssignment(ctx, &dto.GetAssignmentRequest{
				UUID:   assignment.UUID.String(),
				UserID: otherUser.ID,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("UnknownAssignment", func(t *testing.T) {
			_, err := fs.assignments.GetAssignment(ctx, &dto.GetAssignmentRequest{
				UUID:   "00000000-0000-0000-0000-000000000000",
				UserID: influencerUser.ID,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAssignmentNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAmazonLink(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

		t.Run("OwnerGetsStableLink", func(t *testing.T) {
			result, err := fs.assignments.AmazonLink(ctx, &dto.AmazonLinkRequest{
				UUID:   assignment.UUID.String(),
				UserID: influencerUser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, assignment.RedirectToken, result.RedirectToken)
			assert.Equal(t, fmt.Sprintf("%s/a/%s", testBaseURL, assignment.RedirectToken), result.URL)

			// the token never rotates
			again, err := fs.assignments.AmazonLink(ctx, &dto.AmazonLinkRequest{
				UUID:   assignment.UUID.String(),
				UserID: influencerUser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, result.URL, again.URL)
		})

		t.Run("BrandDenied", func(t *testing.T) {
			_, err := fs.assignments.AmazonLink(ctx, &dto.AmazonLinkRequest{
				UUID:   assignment.UUID.String(),
				UserID: brandUser.ID,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSetAssignmentDestination(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

		t.Run("BrandOverridesDestination", func(t *testing.T) {
			override := "https://www.amazon.com/dp/B0OVERRIDE1"
			result, err := fs.assignments.SetDestination(ctx, &dto.SetDestinationRequest{
				UUID:           assignment.UUID.String(),
				UserID:         brandUser.ID,
				DestinationURL: override,
			}, testMeta())
			require.NoError(t, err)
			require.NotNil(t, result)

			stored, err := fs.assignmentRepo.ByUUID(ctx, assignment.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored.AffiliateURLOverride)
			assert.Equal(t, override, *stored.AffiliateURLOverride)

			// clicks now resolve to the override, not the campaign link
			destination, err := fs.redirects.Visit(ctx, assignment.RedirectToken, nil, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, override, destination)
		})

		t.Run("UnsupportedStoreRejected", func(t *testing.T) {
			_, err := fs.assignments.SetDestination(ctx, &dto.SetDestinationRequest{
				UUID:           assignment.UUID.String(),
				UserID:         brandUser.ID,
				DestinationURL: "https://example.com/product",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAffiliateURLInvalid(err))
		})

		t.Run("InfluencerDenied", func(t *testing.T) {
			_, err := fs.assignments.SetDestination(ctx, &dto.SetDestinationRequest{
				UUID:           assignment.UUID.String(),
				UserID:         influencerUser.ID,
				DestinationURL: "https://amzn.to/short",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("ForeignBrandDenied", func(t *testing.T) {
			otherBrandUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			_, err = fs.assignments.SetDestination(ctx, &dto.SetDestinationRequest{
				UUID:           assignment.UUID.String(),
				UserID:         otherBrandUser.ID,
				DestinationURL: "https://amzn.to/short",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListAssignments(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		_, otherInfluencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)
		newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)
		newAssignment(t, fixtures, brand, otherInfluencer, models.AssignmentStatusPosting)

		t.Run("InfluencerSeesOwn", func(t *testing.T) {
			result, err := fs.assignments.ListAssignments(ctx, &dto.ListAssignmentsRequest{
				UserID: influencerUser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), result.Pagination.Total)
			for _, a := range result.Assignments {
				assert.NotEmpty(t, a.RedirectToken)
			}
		})

		t.Run("BrandSeesCampaignAssignments", func(t *testing.T) {
			result, err := fs.assignments.ListAssignments(ctx, &dto.ListAssignmentsRequest{
				UserID: brandUser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(3), result.Pagination.Total)
			for _, a := range result.Assignments {
				assert.Empty(t, a.RedirectToken)
			}
		})

		t.Run("StatusFilter", func(t *testing.T) {
			status := "completed"
			result, err := fs.assignments.ListAssignments(ctx, &dto.ListAssignmentsRequest{
				UserID: influencerUser.ID,
				Status: &status,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), result.Pagination.Total)
		})

		t.Run("OtherBrandSeesNothing", func(t *testing.T) {
			otherBrandUser, _, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			result, err := fs.assignments.ListAssignments(ctx, &dto.ListAssignmentsRequest{
				UserID: otherBrandUser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(0), result.Pagination.Total)
		})

		return nil
	})
	require.NoError(t, err)
}
