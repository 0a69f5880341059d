package tests

import (
	"context"
	"testing"

	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectVisit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		_, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		_, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		campaign, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)

		t.Run("ResolvesToAffiliateURL", func(t *testing.T) {
			destination, err := fs.redirects.Visit(ctx, assignment.RedirectToken,
				utils.ToPtr("Mozilla/5.0"), utils.ToPtr("203.0.113.7"), nil)
			require.NoError(t, err)
			assert.Equal(t, campaign.AffiliateURL, destination)
		})

		t.Run("EveryVisitAppendsOneClick", func(t *testing.T) {
			before, err := fs.clickRepo.Count(ctx, models.ClickLogFilter{AssignmentID: &assignment.ID})
			require.NoError(t, err)

			for i := 0; i < 5; i++ {
				_, err := fs.redirects.Visit(ctx, assignment.RedirectToken,
					utils.ToPtr("Mozilla/5.0"), utils.ToPtr("203.0.113.7"), utils.ToPtr("https://instagram.com"))
				require.NoError(t, err)
			}

			after, err := fs.clickRepo.Count(ctx, models.ClickLogFilter{AssignmentID: &assignment.ID})
			require.NoError(t, err)
			// repeat visits from the same address are never deduplicated
			assert.Equal(t, before+5, after)
		})

		t.Run("StoresSaltedHashNotRawIP", func(t *testing.T) {
			ip := "198.51.100.23"
			_, err := fs.redirects.Visit(ctx, assignment.RedirectToken, nil, utils.ToPtr(ip), nil)
			require.NoError(t, err)

			expected := utils.HashIP(ip, testIPHashSalt)
			rows, err := fs.clickRepo.ByFilter(ctx, models.ClickLogFilter{
				AssignmentID: &assignment.ID,
				IPHash:       &expected,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.NotNil(t, rows[0].IPHash)
			assert.NotEqual(t, ip, *rows[0].IPHash)
			assert.NotContains(t, *rows[0].IPHash, "198.51")
		})

		t.Run("MissingIPLeavesHashEmpty", func(t *testing.T) {
			before, err := fs.clickRepo.Count(ctx, models.ClickLogFilter{AssignmentID: &assignment.ID})
			require.NoError(t, err)

			_, err = fs.redirects.Visit(ctx, assignment.RedirectToken, nil, nil, nil)
			require.NoError(t, err)

			after, err := fs.clickRepo.Count(ctx, models.ClickLogFilter{AssignmentID: &assignment.ID})
			require.NoError(t, err)
			assert.Equal(t, before+1, after)
		})

		t.Run("UnknownToken", func(t *testing.T) {
			_, err := fs.redirects.Visit(ctx, "deadbeefdeadbeef", nil, nil, nil)
			require.Error(t, err)
			assert.True(t, businessflow.IsRedirectTokenNotFound(err))
		})

		t.Run("OverrideURLWins", func(t *testing.T) {
			_, overridden := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusPurchaseRequired)
			override := "https://www.amazon.com/dp/B000OVERRIDE?tag=custom"
			overridden.AffiliateURLOverride = &override
			require.NoError(t, testDB.DB.Save(overridden).Error)

			destination, err := fs.redirects.Visit(ctx, overridden.RedirectToken, nil, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, override, destination)
		})

		return nil
	})
	require.NoError(t, err)
}
