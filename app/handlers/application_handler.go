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

// ApplicationHandlerInterface defines the contract for application handlers
type ApplicationHandlerInterface interface {
	Apply(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	ListMyApplications(c fiber.Ctx) error
	ListCampaignApplications(c fiber.Ctx) error
}

// ApplicationHandler handles campaign application HTTP requests
type ApplicationHandler struct {
	applicationFlow businessflow.ApplicationFlow
	validator       *validator.Validate
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationFlow businessflow.ApplicationFlow) *ApplicationHandler {
	return &ApplicationHandler{
		applicationFlow: applicationFlow,
		validator:       validator.New(),
	}
}

func (h *ApplicationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ApplicationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Apply handles an influencer applying to a campaign
// @Summary Apply To Campaign
// @Description Submit an application to an open campaign
// @Tags Applications
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.ApplyRequest true "Application data"
// @Success 201 {object} dto.APIResponse{data=dto.ApplyResponse} "Application submitted"
// @Failure 400 {object} dto.APIResponse "Validation error or duplicate application"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - not an influencer account"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign is not open for applications"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/apply [post]
func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	var req dto.ApplyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.CampaignUUID = campaignUUID

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

	result, err := h.applicationFlow.Apply(h.createRequestContext(c, "/api/v1/campaigns/"+campaignUUID+"/apply"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only influencer accounts can apply to campaigns", "ACCESS_DENIED", nil)
		}
		if businessflow.IsCampaignNotOpen(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Campaign is not open for applications", "CAMPAIGN_NOT_OPEN", nil)
		}
		if businessflow.IsAlreadyApplied(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "You have already applied to this campaign", "ALREADY_APPLIED", nil)
		}

		log.Println("Application failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Application failed", "APPLICATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Application submitted successfully", fiber.Map{
		"message":     result.Message,
		"application": result.Application,
	})
}

// UpdateStatus handles a brand's decision on an application
// @Summary Decide Application
// @Description Shortlist, accept, or decline an application. Accepting creates an assignment.
// @Tags Applications
// @Accept json
// @Produce json
// @Param uuid path string true "Application UUID"
// @Param request body dto.UpdateApplicationStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateApplicationStatusResponse} "Application updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Application not found"
// @Failure 409 {object} dto.APIResponse "Transition not allowed from current status"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/applications/{uuid}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	applicationUUID := c.Params("uuid")
	if applicationUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Application UUID is required", "MISSING_APPLICATION_UUID", nil)
	}

	var req dto.UpdateApplicationStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = applicationUUID

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

	result, err := h.applicationFlow.UpdateStatus(h.createRequestContext(c, "/api/v1/applications/"+applicationUUID+"/status"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsApplicationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Application not found", "APPLICATION_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied: application belongs to another brand's campaign", "ACCESS_DENIED", nil)
		}
		if businessflow.IsApplicationStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Application cannot move to the requested status", "APPLICATION_STATE_INVALID", nil)
		}

		log.Println("Application status change failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Application status change failed", "APPLICATION_STATUS_CHANGE_FAILED", nil)
	}

	data := fiber.Map{
		"message":     result.Message,
		"application": result.Application,
	}
	if result.Assignment != nil {
		data["assignment"] = result.Assignment
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Application updated successfully", data)
}

// ListMyApplications returns the authenticated influencer's applications
// @Summary List My Applications
// @Description Retrieve the authenticated influencer's applications with pagination
// @Tags Applications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Param status query string false "Filter by status (applied|shortlisted|accepted|declined)"
// @Success 200 {object} dto.APIResponse{data=dto.ListApplicationsResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/applications [get]
func (h *ApplicationHandler) ListMyApplications(c fiber.Ctx) error {
	return h.list(c, "", "/api/v1/applications")
}

// ListCampaignApplications returns a campaign's applications for its brand
// @Summary List Campaign Applications
// @Description Retrieve applications to a campaign owned by the authenticated brand
// @Tags Applications
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Param status query string false "Filter by status (applied|shortlisted|accepted|declined)"
// @Success 200 {object} dto.APIResponse{data=dto.ListApplicationsResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid}/applications [get]
func (h *ApplicationHandler) ListCampaignApplications(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}
	return h.list(c, campaignUUID, "/api/v1/campaigns/"+campaignUUID+"/applications")
}

func (h *ApplicationHandler) list(c fiber.Ctx, campaignUUID, endpoint string) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.ListApplicationsRequest{
		UserID:       userID,
		CampaignUUID: campaignUUID,
		Page:         parseIntQuery(c, "page", 1),
		PageSize:     parseIntQuery(c, "page_size", 20),
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

	result, err := h.applicationFlow.ListApplications(h.createRequestContext(c, endpoint), req)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "ACCESS_DENIED", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List applications failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list applications", "LIST_APPLICATIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Applications retrieved successfully", fiber.Map{
		"applications": result.Applications,
		"pagination":   result.Pagination,
	})
}

func (h *ApplicationHandler) handleActorError(c fiber.Ctx, err error) (error, bool) {
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
func (h *ApplicationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
