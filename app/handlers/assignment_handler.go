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

// AssignmentHandlerInterface defines the contract for assignment handlers
type AssignmentHandlerInterface interface {
	ListAssignments(c fiber.Ctx) error
	GetAssignment(c fiber.Ctx) error
	AmazonLink(c fiber.Ctx) error
	SetDestination(c fiber.Ctx) error
}

// AssignmentHandler handles assignment-related HTTP requests
type AssignmentHandler struct {
	assignmentFlow businessflow.AssignmentFlow
	validator      *validator.Validate
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentFlow businessflow.AssignmentFlow) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentFlow: assignmentFlow,
		validator:      validator.New(),
	}
}

func (h *AssignmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AssignmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListAssignments returns assignments visible to the caller with pagination
// @Summary List Assignments
// @Description Influencers see their own assignments, brands see assignments on their campaigns
// @Tags Assignments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Param status query string false "Filter by status"
// @Success 200 {object} dto.APIResponse{data=dto.ListAssignmentsResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments [get]
func (h *AssignmentHandler) ListAssignments(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.ListAssignmentsRequest{
		UserID:   userID,
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.assignmentFlow.ListAssignments(h.createRequestContext(c, "/api/v1/assignments"), req)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List assignments failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list assignments", "LIST_ASSIGNMENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Assignments retrieved successfully", fiber.Map{
		"assignments": result.Assignments,
		"pagination":  result.Pagination,
	})
}

// GetAssignment returns a single assignment with its campaign and click count
// @Summary Get Assignment
// @Description Retrieve a single assignment visible to the caller
// @Tags Assignments
// @Produce json
// @Param uuid path string true "Assignment UUID"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentDTO}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments/{uuid} [get]
func (h *AssignmentHandler) GetAssignment(c fiber.Ctx) error {
	assignmentUUID := c.Params("uuid")
	if assignmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment UUID is required", "MISSING_ASSIGNMENT_UUID", nil)
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.GetAssignmentRequest{UUID: assignmentUUID, UserID: userID}

	result, err := h.assignmentFlow.GetAssignment(h.createRequestContext(c, "/api/v1/assignments/"+assignmentUUID), req)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Assignment is not visible to your account", "ACCESS_DENIED", nil)
		}

		log.Println("Get assignment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve assignment", "GET_ASSIGNMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Assignment retrieved successfully", result)
}

// AmazonLink returns the influencer's tracked product link for an assignment
// @Summary Get Tracked Product Link
// @Description Retrieve the click-tracked product link for an assignment owned by the caller
// @Tags Assignments
// @Produce json
// @Param uuid path string true "Assignment UUID"
// @Success 200 {object} dto.APIResponse{data=dto.AmazonLinkResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - assignment belongs to another influencer"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments/{uuid}/link [get]
func (h *AssignmentHandler) AmazonLink(c fiber.Ctx) error {
	assignmentUUID := c.Params("uuid")
	if assignmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment UUID is required", "MISSING_ASSIGNMENT_UUID", nil)
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.AmazonLinkRequest{UUID: assignmentUUID, UserID: userID}

	result, err := h.assignmentFlow.AmazonLink(h.createRequestContext(c, "/api/v1/assignments/"+assignmentUUID+"/link"), req)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the assigned influencer can retrieve the link", "ACCESS_DENIED", nil)
		}

		log.Println("Get tracked link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve tracked link", "GET_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tracked link retrieved successfully", result)
}

// SetDestination overrides the product URL an assignment's tracked link resolves to
// @Summary Override Assignment Destination
// @Description Point the assignment's tracked link at a different product URL than the campaign default
// @Tags Assignments
// @Accept json
// @Produce json
// @Param uuid path string true "Assignment UUID"
// @Param request body dto.SetDestinationRequest true "New destination"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentDTO}
// @Failure 400 {object} dto.APIResponse "Validation error or unsupported store URL"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments/{uuid}/destination [patch]
func (h *AssignmentHandler) SetDestination(c fiber.Ctx) error {
	assignmentUUID := c.Params("uuid")
	if assignmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment UUID is required", "MISSING_ASSIGNMENT_UUID", nil)
	}

	var req dto.SetDestinationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = assignmentUUID

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

	result, err := h.assignmentFlow.SetDestination(h.createRequestContext(c, "/api/v1/assignments/"+assignmentUUID+"/destination"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) || businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the campaign's brand can override the destination", "ACCESS_DENIED", nil)
		}
		if businessflow.IsAffiliateURLInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Destination must be an amazon.* or amzn.to link", "INVALID_AFFILIATE_URL", nil)
		}

		log.Println("Destination override failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update assignment destination", "SET_DESTINATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Assignment destination updated successfully", result)
}

func (h *AssignmentHandler) handleActorError(c fiber.Ctx, err error) (error, bool) {
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
func (h *AssignmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
