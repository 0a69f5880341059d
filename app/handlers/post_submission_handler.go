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

// PostSubmissionHandlerInterface defines the contract for content submission handlers
type PostSubmissionHandlerInterface interface {
	Submit(c fiber.Ctx) error
	Review(c fiber.Ctx) error
}

// PostSubmissionHandler handles published content HTTP requests
type PostSubmissionHandler struct {
	postFlow  businessflow.PostSubmissionFlow
	validator *validator.Validate
}

// NewPostSubmissionHandler creates a new content submission handler
func NewPostSubmissionHandler(postFlow businessflow.PostSubmissionFlow) *PostSubmissionHandler {
	return &PostSubmissionHandler{
		postFlow:  postFlow,
		validator: validator.New(),
	}
}

func (h *PostSubmissionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PostSubmissionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Submit handles an influencer submitting published content
// @Summary Submit Post
// @Description Submit a published post for an assignment, moving it to post review
// @Tags Post Submissions
// @Accept json
// @Produce json
// @Param uuid path string true "Assignment UUID"
// @Param request body dto.SubmitPostRequest true "Published content"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitPostResponse} "Post submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - assignment belongs to another influencer"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 409 {object} dto.APIResponse "Assignment is not accepting posts"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments/{uuid}/post [post]
func (h *PostSubmissionHandler) Submit(c fiber.Ctx) error {
	assignmentUUID := c.Params("uuid")
	if assignmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment UUID is required", "MISSING_ASSIGNMENT_UUID", nil)
	}

	var req dto.SubmitPostRequest
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

	result, err := h.postFlow.Submit(h.createRequestContext(c, "/api/v1/assignments/"+assignmentUUID+"/post"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the assigned influencer can submit posts", "ACCESS_DENIED", nil)
		}
		if businessflow.IsAssignmentStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Assignment is not accepting posts in its current status", "ASSIGNMENT_STATE_INVALID", nil)
		}
		if businessflow.IsProofAlreadyApproved(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "An approved post cannot be replaced", "POST_ALREADY_APPROVED", nil)
		}

		log.Println("Post submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Post submission failed", "POST_SUBMISSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Post submitted successfully", fiber.Map{
		"message":    result.Message,
		"submission": result.Submission,
	})
}

// Review handles a brand's verdict on submitted content
// @Summary Review Post
// @Description Approve or reject a post. Approval completes the assignment and queues the commission payout.
// @Tags Post Submissions
// @Accept json
// @Produce json
// @Param uuid path string true "Post submission UUID"
// @Param request body dto.ReviewDecisionRequest true "Verdict"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewPostResponse} "Post reviewed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Failure 409 {object} dto.APIResponse "Post is not awaiting review"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/posts/{uuid}/review [patch]
func (h *PostSubmissionHandler) Review(c fiber.Ctx) error {
	postUUID := c.Params("uuid")
	if postUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Post UUID is required", "MISSING_POST_UUID", nil)
	}

	var req dto.ReviewDecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = postUUID

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

	result, err := h.postFlow.Review(h.createRequestContext(c, "/api/v1/posts/"+postUUID+"/review"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsPostSubmissionNotFound(err) || businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Post submission not found", "POST_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the campaign's brand can review posts", "ACCESS_DENIED", nil)
		}
		if businessflow.IsProofNotReviewable(err) || businessflow.IsAssignmentStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Post is not awaiting review", "POST_NOT_REVIEWABLE", nil)
		}
		if businessflow.IsInvalidDecision(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Decision must be approved or rejected", "INVALID_DECISION", nil)
		}

		log.Println("Post review failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Post review failed", "POST_REVIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Post reviewed successfully", fiber.Map{
		"message":           result.Message,
		"submission":        result.Submission,
		"assignment_status": result.AssignmentStatus,
	})
}

func (h *PostSubmissionHandler) handleActorError(c fiber.Ctx, err error) (error, bool) {
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
func (h *PostSubmissionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
