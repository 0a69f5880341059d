package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayout(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		t.Run("FirstCreateSucceeds", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			result, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
				UserID:         brandUser.ID,
				AssignmentUUID: assignment.UUID.String(),
				Type:           "commission",
				Amount:         50.00,
			}, testMeta())
			require.NoError(t, err)
			assert.True(t, result.Created)
			assert.Equal(t, "pending", result.Payout.Status)
			assert.Equal(t, 50.00, result.Payout.Amount)
			assert.Equal(t, utils.USDCurrency, result.Payout.Currency)
		})

		t.Run("SecondCreateReturnsExisting", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			first, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
				UserID:         brandUser.ID,
				AssignmentUUID: assignment.UUID.String(),
				Type:           "commission",
				Amount:         50.00,
			}, testMeta())
			require.NoError(t, err)
			require.True(t, first.Created)

			second, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
				UserID:         brandUser.ID,
				AssignmentUUID: assignment.UUID.String(),
				Type:           "commission",
				Amount:         75.00,
			}, testMeta())
			require.NoError(t, err)
			assert.False(t, second.Created)
			// the original entry wins, the second amount is ignored
			assert.Equal(t, first.Payout.UUID, second.Payout.UUID)
			assert.Equal(t, 50.00, second.Payout.Amount)

			payouts, err := fs.payoutRepo.ByFilter(ctx, models.PayoutFilter{AssignmentID: &assignment.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, payouts, 1)
		})

		t.Run("DifferentTypesCoexist", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			for _, payoutType := range []string{"reimbursement", "commission", "review_bonus"} {
				result, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
					UserID:         brandUser.ID,
					AssignmentUUID: assignment.UUID.String(),
					Type:           payoutType,
					Amount:         10.00,
				}, testMeta())
				require.NoError(t, err)
				assert.True(t, result.Created)
			}

			payouts, err := fs.payoutRepo.ByFilter(ctx, models.PayoutFilter{AssignmentID: &assignment.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, payouts, 3)
		})

		t.Run("NonPositiveAmountRejected", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			_, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
				UserID:         brandUser.ID,
				AssignmentUUID: assignment.UUID.String(),
				Type:           "commission",
				Amount:         0,
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsPayoutAmountInvalid(err))
		})

		t.Run("InfluencerCannotCreate", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			_, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
				UserID:         influencerUser.ID,
				AssignmentUUID: assignment.UUID.String(),
				Type:           "commission",
				Amount:         50.00,
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessDenied(err))
		})

		t.Run("ConcurrentCreatesProduceOneRow", func(t *testing.T) {
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)

			var created int64
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					result, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
						UserID:         brandUser.ID,
						AssignmentUUID: assignment.UUID.String(),
						Type:           "review_bonus",
						Amount:         5.00,
					}, testMeta())
					if err == nil && result.Created {
						atomic.AddInt64(&created, 1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int64(1), created)

			payouts, err := fs.payoutRepo.ByFilter(ctx, models.PayoutFilter{AssignmentID: &assignment.ID}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, payouts, 1)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePayoutStatus(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		_, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		createPayout := func(t *testing.T) *dto.PayoutDTO {
			t.Helper()
			_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)
			result, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
				UserID:         brandUser.ID,
				AssignmentUUID: assignment.UUID.String(),
				Type:           "commission",
				Amount:         40.00,
			}, testMeta())
			require.NoError(t, err)
			return &result.Payout
		}

		t.Run("PendingToProcessingToPaid", func(t *testing.T) {
			payout := createPayout(t)

			result, err := fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   payout.UUID,
				UserID: brandUser.ID,
				Status: "processing",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "processing", result.Payout.Status)

			result, err = fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   payout.UUID,
				UserID: brandUser.ID,
				Status: "paid",
			}, testMeta())
			require.NoError(t, err)
			assert.Equal(t, "paid", result.Payout.Status)
			assert.NotNil(t, result.Payout.PaidAt)

			rows, err := fs.payoutRepo.ByFilter(ctx, models.PayoutFilter{Status: utils.ToPtr(models.PayoutStatusPaid)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.NotNil(t, rows[0].PaidBy)
			assert.Equal(t, brandUser.ID, *rows[0].PaidBy)
		})

		t.Run("PaidIsTerminal", func(t *testing.T) {
			payout := createPayout(t)

			_, err := fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   payout.UUID,
				UserID: brandUser.ID,
				Status: "paid",
			}, testMeta())
			require.NoError(t, err)

			_, err = fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   payout.UUID,
				UserID: brandUser.ID,
				Status: "pending",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsPayoutStateInvalid(err))
		})

		t.Run("FailedRetriesThroughPending", func(t *testing.T) {
			payout := createPayout(t)

			for _, status := range []string{"processing", "failed", "pending", "processing", "paid"} {
				result, err := fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
					UUID:   payout.UUID,
					UserID: brandUser.ID,
					Status: status,
				}, testMeta())
				require.NoError(t, err)
				assert.Equal(t, status, result.Payout.Status)
			}
		})

		t.Run("ProcessingCannotBeCancelled", func(t *testing.T) {
			payout := createPayout(t)

			_, err := fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   payout.UUID,
				UserID: brandUser.ID,
				Status: "processing",
			}, testMeta())
			require.NoError(t, err)

			_, err = fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   payout.UUID,
				UserID: brandUser.ID,
				Status: "cancelled",
			}, testMeta())
			require.Error(t, err)
			assert.True(t, businessflow.IsPayoutStateInvalid(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPayoutVisibilityAndSummary(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fs := newFlowSet(t, testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		brandUser, brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		influencerUser, influencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)
		otherInfluencerUser, otherInfluencer, err := fixtures.CreateTestInfluencer()
		require.NoError(t, err)

		_, assignment := newAssignment(t, fixtures, brand, influencer, models.AssignmentStatusCompleted)
		_, otherAssignment := newAssignment(t, fixtures, brand, otherInfluencer, models.AssignmentStatusCompleted)

		first, err := fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
			UserID:         brandUser.ID,
			AssignmentUUID: assignment.UUID.String(),
			Type:           "reimbursement",
			Amount:         29.99,
		}, testMeta())
		require.NoError(t, err)

		_, err = fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
			UserID:         brandUser.ID,
			AssignmentUUID: assignment.UUID.String(),
			Type:           "commission",
			Amount:         15.00,
		}, testMeta())
		require.NoError(t, err)

		_, err = fs.payouts.CreatePayout(ctx, &dto.CreatePayoutRequest{
			UserID:         brandUser.ID,
			AssignmentUUID: otherAssignment.UUID.String(),
			Type:           "commission",
			Amount:         15.00,
		}, testMeta())
		require.NoError(t, err)

		t.Run("InfluencerSeesOnlyOwn", func(t *testing.T) {
			result, err := fs.payouts.ListPayouts(ctx, &dto.ListPayoutsRequest{UserID: influencerUser.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), result.Pagination.Total)
		})

		t.Run("OtherInfluencerSeesTheirs", func(t *testing.T) {
			result, err := fs.payouts.ListPayouts(ctx, &dto.ListPayoutsRequest{UserID: otherInfluencerUser.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), result.Pagination.Total)
		})

		t.Run("BrandSeesAllThree", func(t *testing.T) {
			result, err := fs.payouts.ListPayouts(ctx, &dto.ListPayoutsRequest{UserID: brandUser.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(3), result.Pagination.Total)
		})

		t.Run("FilterByType", func(t *testing.T) {
			result, err := fs.payouts.ListPayouts(ctx, &dto.ListPayoutsRequest{
				UserID: brandUser.ID,
				Type:   utils.ToPtr("commission"),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), result.Pagination.Total)
		})

		t.Run("SummaryAfterSettlingOne", func(t *testing.T) {
			_, err := fs.payouts.UpdateStatus(ctx, &dto.UpdatePayoutStatusRequest{
				UUID:   first.Payout.UUID,
				UserID: brandUser.ID,
				Status: "paid",
			}, testMeta())
			require.NoError(t, err)

			summary, err := fs.payouts.Summary(ctx, &dto.PayoutSummaryRequest{UserID: influencerUser.ID})
			require.NoError(t, err)
			assert.InDelta(t, 15.00, summary.PendingTotal, 0.001)
			assert.InDelta(t, 29.99, summary.PaidTotal, 0.001)
			assert.Equal(t, int64(1), summary.PendingPayouts)
			assert.Equal(t, int64(1), summary.PaidPayouts)
			assert.InDelta(t, 15.00, summary.PendingByType["commission"], 0.001)
			_, hasReimbursement := summary.PendingByType["reimbursement"]
			assert.False(t, hasReimbursement)
		})

		return nil
	})
	require.NoError(t, err)
}
