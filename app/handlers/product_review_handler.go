// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ProductReviewHandlerInterface defines the contract for product review handlers
type ProductReviewHandlerInterface interface {
	Submit(c fiber.Ctx) error
	Review(c fiber.Ctx) error
}

// ProductReviewHandler handles store review HTTP requests
type ProductReviewHandler struct {
	reviewFlow businessflow.ProductReviewFlow
	validator  *validator.Validate
}

// NewProductReviewHandler creates a new product review handler
func NewProductReviewHandler(reviewFlow businessflow.ProductReviewFlow) *ProductReviewHandler {
	return &ProductReviewHandler{
		reviewFlow: reviewFlow,
		validator:  validator.New(),
	}
}

func (h *ProductReviewHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProductReviewHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Submit handles an influencer submitting a store review for a completed assignment
// @Summary Submit Product Review
// @Description Submit an optional store review after the assignment is completed
// @Tags Product Reviews
// @Accept json
// @Produce json
// @Param uuid path string true "Assignment UUID"
// @Param request body dto.SubmitProductReviewRequest true "Store review"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitProductReviewResponse} "Review submitted"
// @Failure 400 {object} dto.APIResponse "Validation error or rating out of range"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - assignment belongs to another influencer"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 409 {object} dto.APIResponse "Assignment is not completed or review already approved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments/{uuid}/review [post]
func (h *ProductReviewHandler) Submit(c fiber.Ctx) error {
	assignmentUUID := c.Params("uuid")
	if assignmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment UUID is required", "MISSING_ASSIGNMENT_UUID", nil)
	}

	var req dto.SubmitProductReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.AssignmentUUID = assignmentUUID

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.reviewFlow.Submit(h.createRequestContext(c, "/api/v1/assignments/"+assignmentUUID+"/review"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the assigned influencer can submit a review", "ACCESS_DENIED", nil)
		}
		if businessflow.IsAssignmentStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Reviews can only be submitted for completed assignments", "ASSIGNMENT_STATE_INVALID", nil)
		}
		if businessflow.IsReviewStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Review is not accepting changes in its current status", "REVIEW_STATE_INVALID", nil)
		}
		if businessflow.IsRatingOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Rating must be between 1 and 5", "RATING_OUT_OF_RANGE", nil)
		}
		if businessflow.IsProofAlreadyApproved(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "An approved review cannot be replaced", "REVIEW_ALREADY_APPROVED", nil)
		}

		log.Println("Product review submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Product review submission failed", "REVIEW_SUBMISSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Product review submitted successfully", fiber.Map{
		"message": result.Message,
		"review":  result.Review,
	})
}

// Review handles a brand's verdict on a store review
// @Summary Review Product Review
// @Description Approve or reject a store review. Approval queues the review bonus payout.
// @Tags Product Reviews
// @Accept json
// @Produce json
// @Param uuid path string true "Product review UUID"
// @Param request body dto.ReviewDecisionRequest true "Verdict"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewProductReviewResponse} "Review decided"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Review not found"
// @Failure 409 {object} dto.APIResponse "Review is not awaiting a verdict"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/product-reviews/{uuid}/review [patch]
func (h *ProductReviewHandler) Review(c fiber.Ctx) error {
	reviewUUID := c.Params("uuid")
	if reviewUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Review UUID is required", "MISSING_REVIEW_UUID", nil)
	}

	var req dto.ReviewDecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = reviewUUID

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.reviewFlow.Review(h.createRequestContext(c, "/api/v1/product-reviews/"+reviewUUID+"/review"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsProductReviewNotFound(err) || businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product review not found", "REVIEW_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the campaign's brand can decide reviews", "ACCESS_DENIED", nil)
		}
		if businessflow.IsReviewStateInvalid(err) || businessflow.IsProofNotReviewable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Review is not awaiting a verdict", "REVIEW_NOT_REVIEWABLE", nil)
		}
		if businessflow.IsInvalidDecision(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Decision must be approved or rejected", "INVALID_DECISION", nil)
		}

		log.Println("Product review verdict failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Product review verdict failed", "REVIEW_VERDICT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Product review decided successfully", fiber.Map{
		"message":       result.Message,
		"review":        result.Review,
		"review_status": result.ReviewStatus,
	})
}

func (h *ProductReviewHandler) handleActorError(c fiber.Ctx, err error) (error, bool) {
	if businessflow.IsUserNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account not found", "USER_NOT_FOUND", nil), true
	}
	if businessflow.IsAccountSuspended(err) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is suspended", "ACCOUNT_SUSPENDED", nil), true
	}
	if businessflow.IsAccountInactive(err) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is not active", "ACCOUNT_INACTIVE", nil), true
	}
	if businessflow.IsProfileNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account profile not found", "PROFILE_NOT_FOUND", nil), true
	}
	return nil, false
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ProductReviewHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
