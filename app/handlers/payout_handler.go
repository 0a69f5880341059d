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

// PayoutHandlerInterface defines the contract for payout handlers
type PayoutHandlerInterface interface {
	CreatePayout(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	ListPayouts(c fiber.Ctx) error
	Summary(c fiber.Ctx) error
}

// PayoutHandler handles payout ledger HTTP requests
type PayoutHandler struct {
	payoutFlow businessflow.PayoutFlow
	validator  *validator.Validate
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutFlow businessflow.PayoutFlow) *PayoutHandler {
	return &PayoutHandler{
		payoutFlow: payoutFlow,
		validator:  validator.New(),
	}
}

func (h *PayoutHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PayoutHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatePayout handles manual payout creation
// @Summary Create Payout
// @Description Create a payout for an assignment. At most one payout exists per assignment and type.
// @Tags Payouts
// @Accept json
// @Produce json
// @Param request body dto.CreatePayoutRequest true "Payout data"
// @Success 201 {object} dto.APIResponse{data=dto.CreatePayoutResponse} "Payout created or existing one returned"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid amount"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/payouts [post]
func (h *PayoutHandler) CreatePayout(c fiber.Ctx) error {
	var req dto.CreatePayoutRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

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

	result, err := h.payoutFlow.CreatePayout(h.createRequestContext(c, "/api/v1/payouts"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the campaign's brand or an admin can create payouts", "ACCESS_DENIED", nil)
		}
		if businessflow.IsPayoutAmountInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Payout amount must be greater than zero", "INVALID_PAYOUT_AMOUNT", nil)
		}

		log.Println("Payout creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Payout creation failed", "PAYOUT_CREATION_FAILED", nil)
	}

	status := fiber.StatusCreated
	if result.Created {
		middleware.PayoutsCreated.WithLabelValues(result.Payout.Type).Inc()
	} else {
		status = fiber.StatusOK
	}
	return h.SuccessResponse(c, status, "Payout processed successfully", fiber.Map{
		"message": result.Message,
		"payout":  result.Payout,
		"created": result.Created,
	})
}

// UpdateStatus handles payout settlement state changes
// @Summary Update Payout Status
// @Description Move a payout through its settlement lifecycle
// @Tags Payouts
// @Accept json
// @Produce json
// @Param uuid path string true "Payout UUID"
// @Param request body dto.UpdatePayoutStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.UpdatePayoutStatusResponse} "Payout updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Payout not found"
// @Failure 409 {object} dto.APIResponse "Transition not allowed from current status"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/payouts/{uuid}/status [patch]
func (h *PayoutHandler) UpdateStatus(c fiber.Ctx) error {
	payoutUUID := c.Params("uuid")
	if payoutUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Payout UUID is required", "MISSING_PAYOUT_UUID", nil)
	}

	var req dto.UpdatePayoutStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = payoutUUID

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

	result, err := h.payoutFlow.UpdateStatus(h.createRequestContext(c, "/api/v1/payouts/"+payoutUUID+"/status"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsPayoutNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Payout not found", "PAYOUT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the paying brand or an admin can settle payouts", "ACCESS_DENIED", nil)
		}
		if businessflow.IsPayoutStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Payout cannot move to the requested status", "PAYOUT_STATE_INVALID", nil)
		}

		log.Println("Payout status change failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Payout status change failed", "PAYOUT_STATUS_CHANGE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Payout updated successfully", fiber.Map{
		"message": result.Message,
		"payout":  result.Payout,
	})
}

// ListPayouts returns payouts visible to the caller with pagination
// @Summary List Payouts
// @Description Influencers see payouts owed to them, brands see payouts they owe, admins see all
// @Tags Payouts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page (max 100)" default(20)
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Success 200 {object} dto.APIResponse{data=dto.ListPayoutsResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/payouts [get]
func (h *PayoutHandler) ListPayouts(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.ListPayoutsRequest{
		UserID:   userID,
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if payoutType := c.Query("type"); payoutType != "" {
		req.Type = &payoutType
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.payoutFlow.ListPayouts(h.createRequestContext(c, "/api/v1/payouts"), req)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List payouts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list payouts", "LIST_PAYOUTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Payouts retrieved successfully", fiber.Map{
		"payouts":    result.Payouts,
		"pagination": result.Pagination,
	})
}

// Summary returns ledger totals for the caller
// @Summary Payout Summary
// @Description Aggregate pending and paid totals for the caller's payouts
// @Tags Payouts
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PayoutSummaryResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/payouts/summary [get]
func (h *PayoutHandler) Summary(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.PayoutSummaryRequest{UserID: userID}

	result, err := h.payoutFlow.Summary(h.createRequestContext(c, "/api/v1/payouts/summary"), req)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}

		log.Println("Payout summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute payout summary", "PAYOUT_SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Payout summary retrieved successfully", result)
}

func (h *PayoutHandler) handleActorError(c fiber.Ctx, err error) (error, bool) {
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
func (h *PayoutHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
