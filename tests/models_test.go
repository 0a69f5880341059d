// Package tests contains unit tests for the marketplace domain models
package tests

import (
	"strings"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.AssignmentStatus
		to      models.AssignmentStatus
		allowed bool
	}{
		{"PurchaseRequiredToReview", models.AssignmentStatusPurchaseRequired, models.AssignmentStatusPurchaseReview, true},
		{"PurchaseRequiredSkipsReview", models.AssignmentStatusPurchaseRequired, models.AssignmentStatusPurchaseApproved, false},
		{"PurchaseReviewApproved", models.AssignmentStatusPurchaseReview, models.AssignmentStatusPurchaseApproved, true},
		{"PurchaseReviewRejectedReopens", models.AssignmentStatusPurchaseReview, models.AssignmentStatusPurchaseRequired, true},
		{"PurchaseReviewCannotComplete", models.AssignmentStatusPurchaseReview, models.AssignmentStatusCompleted, false},
		{"ApprovedToPosting", models.AssignmentStatusPurchaseApproved, models.AssignmentStatusPosting, true},
		{"ApprovedDirectlyToPostReview", models.AssignmentStatusPurchaseApproved, models.AssignmentStatusPostReview, true},
		{"PostingToPostReview", models.AssignmentStatusPosting, models.AssignmentStatusPostReview, true},
		{"PostingCannotGoBack", models.AssignmentStatusPosting, models.AssignmentStatusPurchaseRequired, false},
		{"PostReviewCompletes", models.AssignmentStatusPostReview, models.AssignmentStatusCompleted, true},
		{"PostReviewRejectedReopens", models.AssignmentStatusPostReview, models.AssignmentStatusPosting, true},
		{"CompletedIsTerminal", models.AssignmentStatusCompleted, models.AssignmentStatusPosting, false},
		{"CompletedCannotRestart", models.AssignmentStatusCompleted, models.AssignmentStatusPurchaseRequired, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestReviewStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.ReviewStatus
		to      models.ReviewStatus
		allowed bool
	}{
		{"NoneToReview", models.ReviewStatusNone, models.ReviewStatusReview, true},
		{"NoneCannotApprove", models.ReviewStatusNone, models.ReviewStatusApproved, false},
		{"ReviewApproved", models.ReviewStatusReview, models.ReviewStatusApproved, true},
		{"ReviewRejected", models.ReviewStatusReview, models.ReviewStatusRejected, true},
		{"RejectedResubmits", models.ReviewStatusRejected, models.ReviewStatusReview, true},
		{"RejectedCannotApproveDirectly", models.ReviewStatusRejected, models.ReviewStatusApproved, false},
		{"ApprovedIsTerminal", models.ReviewStatusApproved, models.ReviewStatusReview, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestCampaignStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.CampaignStatus
		to      models.CampaignStatus
		allowed bool
	}{
		{"DraftToPublished", models.CampaignStatusDraft, models.CampaignStatusPublished, true},
		{"DraftToClosed", models.CampaignStatusDraft, models.CampaignStatusClosed, true},
		{"DraftSkipsToLive", models.CampaignStatusDraft, models.CampaignStatusLive, false},
		{"PublishedToLive", models.CampaignStatusPublished, models.CampaignStatusLive, true},
		{"PublishedToClosed", models.CampaignStatusPublished, models.CampaignStatusClosed, true},
		{"PublishedCannotRevert", models.CampaignStatusPublished, models.CampaignStatusDraft, false},
		{"LiveToClosed", models.CampaignStatusLive, models.CampaignStatusClosed, true},
		{"ClosedIsTerminal", models.CampaignStatusClosed, models.CampaignStatusPublished, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			campaign := &models.Campaign{Status: tc.from}
			assert.Equal(t, tc.allowed, campaign.CanTransitionTo(tc.to))
		})
	}
}

func TestCampaignEditability(t *testing.T) {
	assert.True(t, (&models.Campaign{Status: models.CampaignStatusDraft}).IsEditable())
	assert.True(t, (&models.Campaign{Status: models.CampaignStatusPublished}).IsEditable())
	assert.False(t, (&models.Campaign{Status: models.CampaignStatusLive}).IsEditable())
	assert.False(t, (&models.Campaign{Status: models.CampaignStatusClosed}).IsEditable())

	assert.False(t, (&models.Campaign{Status: models.CampaignStatusDraft}).IsOpenForApplications())
	assert.True(t, (&models.Campaign{Status: models.CampaignStatusPublished}).IsOpenForApplications())
	assert.True(t, (&models.Campaign{Status: models.CampaignStatusLive}).IsOpenForApplications())
	assert.False(t, (&models.Campaign{Status: models.CampaignStatusClosed}).IsOpenForApplications())
}

func TestCampaignValidateWindows(t *testing.T) {
	now := utils.UTCNow()

	t.Run("ValidWindows", func(t *testing.T) {
		c := &models.Campaign{
			PurchaseWindowStart: now,
			PurchaseWindowEnd:   now.Add(7 * 24 * time.Hour),
			PostWindowStart:     now,
			PostWindowEnd:       now.Add(14 * 24 * time.Hour),
		}
		assert.NoError(t, c.ValidateWindows())
	})

	t.Run("EmptyPurchaseWindow", func(t *testing.T) {
		c := &models.Campaign{
			PurchaseWindowStart: now,
			PurchaseWindowEnd:   now,
			PostWindowStart:     now,
			PostWindowEnd:       now.Add(time.Hour),
		}
		assert.Error(t, c.ValidateWindows())
	})

	t.Run("InvertedPostWindow", func(t *testing.T) {
		c := &models.Campaign{
			PurchaseWindowStart: now,
			PurchaseWindowEnd:   now.Add(time.Hour),
			PostWindowStart:     now.Add(2 * time.Hour),
			PostWindowEnd:       now.Add(time.Hour),
		}
		assert.Error(t, c.ValidateWindows())
	})

	t.Run("PostWindowOpensBeforePurchase", func(t *testing.T) {
		c := &models.Campaign{
			PurchaseWindowStart: now,
			PurchaseWindowEnd:   now.Add(7 * 24 * time.Hour),
			PostWindowStart:     now.Add(-time.Hour),
			PostWindowEnd:       now.Add(14 * 24 * time.Hour),
		}
		assert.Error(t, c.ValidateWindows())
	})
}

func TestCampaignValidateAffiliateURL(t *testing.T) {
	valid := []string{
		"https://www.amazon.com/dp/B08N5WRWNW",
		"https://amazon.com/dp/B08N5WRWNW",
		"https://amazon.co.uk/dp/B08N5WRWNW",
		"https://amzn.to/3abcdef",
	}
	for _, u := range valid {
		c := &models.Campaign{AffiliateURL: u}
		assert.NoError(t, c.ValidateAffiliateURL(), u)
	}

	invalid := []string{
		"https://example.com/dp/B08N5WRWNW",
		"https://amazonfake.com/deal",
		"not-a-url",
		"",
	}
	for _, u := range invalid {
		c := &models.Campaign{AffiliateURL: u}
		assert.Error(t, c.ValidateAffiliateURL(), u)
	}
}

func TestApplicationStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.ApplicationStatus
		to      models.ApplicationStatus
		allowed bool
	}{
		{"AppliedToShortlisted", models.ApplicationStatusApplied, models.ApplicationStatusShortlisted, true},
		{"AppliedToAccepted", models.ApplicationStatusApplied, models.ApplicationStatusAccepted, true},
		{"AppliedToDeclined", models.ApplicationStatusApplied, models.ApplicationStatusDeclined, true},
		{"ShortlistedToAccepted", models.ApplicationStatusShortlisted, models.ApplicationStatusAccepted, true},
		{"ShortlistedToDeclined", models.ApplicationStatusShortlisted, models.ApplicationStatusDeclined, true},
		{"AcceptedIsTerminal", models.ApplicationStatusAccepted, models.ApplicationStatusDeclined, false},
		{"DeclinedIsTerminal", models.ApplicationStatusDeclined, models.ApplicationStatusAccepted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := &models.Application{Status: tc.from}
			assert.Equal(t, tc.allowed, app.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, models.ApplicationStatusAccepted.IsTerminal())
	assert.True(t, models.ApplicationStatusDeclined.IsTerminal())
	assert.False(t, models.ApplicationStatusApplied.IsTerminal())
}

func TestPayoutStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.PayoutStatus
		to      models.PayoutStatus
		allowed bool
	}{
		{"PendingToProcessing", models.PayoutStatusPending, models.PayoutStatusProcessing, true},
		{"PendingToPaid", models.PayoutStatusPending, models.PayoutStatusPaid, true},
		{"PendingToCancelled", models.PayoutStatusPending, models.PayoutStatusCancelled, true},
		{"ProcessingToPaid", models.PayoutStatusProcessing, models.PayoutStatusPaid, true},
		{"ProcessingToFailed", models.PayoutStatusProcessing, models.PayoutStatusFailed, true},
		{"ProcessingCannotCancel", models.PayoutStatusProcessing, models.PayoutStatusCancelled, false},
		{"FailedRetriesThroughPending", models.PayoutStatusFailed, models.PayoutStatusPending, true},
		{"FailedToCancelled", models.PayoutStatusFailed, models.PayoutStatusCancelled, true},
		{"PaidIsTerminal", models.PayoutStatusPaid, models.PayoutStatusPending, false},
		{"CancelledIsTerminal", models.PayoutStatusCancelled, models.PayoutStatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, models.PayoutStatusPaid.IsTerminal())
	assert.True(t, models.PayoutStatusCancelled.IsTerminal())
	assert.False(t, models.PayoutStatusFailed.IsTerminal())
}

func TestPayoutTypeValidity(t *testing.T) {
	assert.True(t, models.PayoutTypeReimbursement.Valid())
	assert.True(t, models.PayoutTypeCommission.Valid())
	assert.True(t, models.PayoutTypeReviewBonus.Valid())
	assert.False(t, models.PayoutType("refund").Valid())
}

func TestProofStatusResubmittable(t *testing.T) {
	assert.True(t, models.ProofStatusRejected.IsResubmittable())
	assert.True(t, models.ProofStatusChangesRequested.IsResubmittable())
	assert.False(t, models.ProofStatusApproved.IsResubmittable())
	assert.False(t, models.ProofStatusUnderReview.IsResubmittable())
}

func TestPurchaseProofMaskedOrderID(t *testing.T) {
	proof := &models.PurchaseProof{OrderID: "112-1234567-7654321"}
	masked := proof.MaskedOrderID()
	assert.NotEqual(t, proof.OrderID, masked)
	assert.True(t, strings.HasPrefix(masked, "11"))
	assert.True(t, strings.HasSuffix(masked, "21"))
	assert.NotContains(t, masked, "1234567")

	short := &models.PurchaseProof{OrderID: "123"}
	assert.Equal(t, "****", short.MaskedOrderID())
}

func TestAssignmentDestinationURL(t *testing.T) {
	campaign := &models.Campaign{AffiliateURL: "https://www.amazon.com/dp/B000TEST00"}

	t.Run("DefaultsToCampaignURL", func(t *testing.T) {
		a := &models.Assignment{}
		assert.Equal(t, campaign.AffiliateURL, a.DestinationURL(campaign))
	})

	t.Run("OverrideWins", func(t *testing.T) {
		override := "https://www.amazon.com/dp/B000TEST00?tag=inf-42"
		a := &models.Assignment{AffiliateURLOverride: &override}
		assert.Equal(t, override, a.DestinationURL(campaign))
	})
}

func TestUserRoleAndStatus(t *testing.T) {
	assert.True(t, models.UserRoleAdmin.Valid())
	assert.True(t, models.UserRoleBrand.Valid())
	assert.True(t, models.UserRoleInfluencer.Valid())
	assert.False(t, models.UserRole("moderator").Valid())

	active := &models.User{Status: models.UserStatusActive}
	assert.True(t, active.IsActive())
	pending := &models.User{Status: models.UserStatusPending}
	assert.False(t, pending.IsActive())
}

func TestRedirectTokenFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token := utils.NewRedirectToken()
		require.Len(t, token, utils.RedirectTokenLength)
		require.False(t, seen[token], "token collision")
		seen[token] = true
	}
}
