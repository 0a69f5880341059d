// Package businessflow contains the core business logic and use cases for marketplace workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileRequired    = errors.New("profile fields are required for this role")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")

	// Campaign-related errors
	ErrCampaignNotFound             = errors.New("campaign not found")
	ErrCampaignNotEditable          = errors.New("campaign can no longer be edited")
	ErrCampaignStateInvalid         = errors.New("campaign cannot move to the requested status")
	ErrCampaignNotOpen              = errors.New("campaign is not open for applications")
	ErrCampaignHasActiveAssignments = errors.New("campaign has active assignments")
	ErrPurchaseWindowInvalid        = errors.New("purchase window end must be after its start")
	ErrPostWindowInvalid            = errors.New("post window end must be after its start")
	ErrWindowOrderInvalid           = errors.New("post window cannot open before the purchase window")
	ErrAffiliateURLInvalid          = errors.New("affiliate url must be an amazon.* or amzn.to link")

	// Application-related errors
	ErrApplicationNotFound     = errors.New("application not found")
	ErrAlreadyApplied          = errors.New("an application for this campaign already exists")
	ErrApplicationStateInvalid = errors.New("application cannot move to the requested status")

	// Assignment-related errors
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentStateInvalid = errors.New("assignment is not in a state that allows this operation")

	// Submission-related errors
	ErrPurchaseProofNotFound  = errors.New("purchase proof not found")
	ErrPostSubmissionNotFound = errors.New("post submission not found")
	ErrProductReviewNotFound  = errors.New("product review not found")
	ErrProofAlreadyApproved   = errors.New("an approved submission cannot be replaced")
	ErrProofNotReviewable     = errors.New("submission is not awaiting review")
	ErrScreenshotRequired     = errors.New("at least one screenshot is required")
	ErrPriceInvalid           = errors.New("price must be greater than zero")
	ErrRatingOutOfRange       = errors.New("rating must be between 1 and 5")
	ErrReviewStateInvalid     = errors.New("product review is not in a state that allows this operation")
	ErrInvalidDecision        = errors.New("decision must be approved or rejected")

	// Payout-related errors
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrPayoutStateInvalid  = errors.New("payout cannot move to the requested status")
	ErrPayoutAmountInvalid = errors.New("payout amount must be greater than zero")

	// Redirect errors
	ErrRedirectTokenNotFound = errors.New("redirect token not found")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsAccountSuspended(err error) bool {
	return errors.Is(err, ErrAccountSuspended)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsProfileRequired(err error) bool {
	return errors.Is(err, ErrProfileRequired)
}

func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignNotEditable(err error) bool {
	return errors.Is(err, ErrCampaignNotEditable)
}

func IsCampaignStateInvalid(err error) bool {
	return errors.Is(err, ErrCampaignStateInvalid)
}

func IsCampaignNotOpen(err error) bool {
	return errors.Is(err, ErrCampaignNotOpen)
}

func IsCampaignHasActiveAssignments(err error) bool {
	return errors.Is(err, ErrCampaignHasActiveAssignments)
}

func IsWindowValidation(err error) bool {
	return errors.Is(err, ErrPurchaseWindowInvalid) ||
		errors.Is(err, ErrPostWindowInvalid) ||
		errors.Is(err, ErrWindowOrderInvalid)
}

func IsAffiliateURLInvalid(err error) bool {
	return errors.Is(err, ErrAffiliateURLInvalid)
}

func IsApplicationNotFound(err error) bool {
	return errors.Is(err, ErrApplicationNotFound)
}

func IsAlreadyApplied(err error) bool {
	return errors.Is(err, ErrAlreadyApplied)
}

func IsApplicationStateInvalid(err error) bool {
	return errors.Is(err, ErrApplicationStateInvalid)
}

func IsAssignmentNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentNotFound)
}

func IsAssignmentStateInvalid(err error) bool {
	return errors.Is(err, ErrAssignmentStateInvalid)
}

func IsPurchaseProofNotFound(err error) bool {
	return errors.Is(err, ErrPurchaseProofNotFound)
}

func IsPostSubmissionNotFound(err error) bool {
	return errors.Is(err, ErrPostSubmissionNotFound)
}

func IsProductReviewNotFound(err error) bool {
	return errors.Is(err, ErrProductReviewNotFound)
}

func IsProofAlreadyApproved(err error) bool {
	return errors.Is(err, ErrProofAlreadyApproved)
}

func IsProofNotReviewable(err error) bool {
	return errors.Is(err, ErrProofNotReviewable)
}

func IsScreenshotRequired(err error) bool {
	return errors.Is(err, ErrScreenshotRequired)
}

func IsPriceInvalid(err error) bool {
	return errors.Is(err, ErrPriceInvalid)
}

func IsRatingOutOfRange(err error) bool {
	return errors.Is(err, ErrRatingOutOfRange)
}

func IsReviewStateInvalid(err error) bool {
	return errors.Is(err, ErrReviewStateInvalid)
}

func IsInvalidDecision(err error) bool {
	return errors.Is(err, ErrInvalidDecision)
}

func IsPayoutNotFound(err error) bool {
	return errors.Is(err, ErrPayoutNotFound)
}

func IsPayoutStateInvalid(err error) bool {
	return errors.Is(err, ErrPayoutStateInvalid)
}

func IsPayoutAmountInvalid(err error) bool {
	return errors.Is(err, ErrPayoutAmountInvalid)
}

func IsRedirectTokenNotFound(err error) bool {
	return errors.Is(err, ErrRedirectTokenNotFound)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
