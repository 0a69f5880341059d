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
	"github.com/gofiber/fiber/v3"
)

// AdminHandlerInterface defines the contract for platform administration handlers
type AdminHandlerInterface interface {
	ApproveUser(c fiber.Ctx) error
	Dashboard(c fiber.Ctx) error
}

// AdminHandler handles administration HTTP requests
type AdminHandler struct {
	adminFlow businessflow.AdminFlow
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminFlow businessflow.AdminFlow) *AdminHandler {
	return &AdminHandler{
		adminFlow: adminFlow,
	}
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ApproveUser activates a pending account and its role profile
// @Summary Approve Account
// @Description Activate a pending account. Admin only.
// @Tags Admin
// @Produce json
// @Param uuid path string true "Account UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveUserResponse} "Account approved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - not an admin"
// @Failure 404 {object} dto.APIResponse "Account not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/users/{uuid}/approve [patch]
func (h *AdminHandler) ApproveUser(c fiber.Ctx) error {
	userUUID := c.Params("uuid")
	if userUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Account UUID is required", "MISSING_USER_UUID", nil)
	}

	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := &dto.ApproveUserRequest{UUID: userUUID, AdminID: adminID}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.adminFlow.ApproveUser(h.createRequestContext(c, "/api/v1/admin/users/"+userUUID+"/approve"), req, metadata)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only admins can approve accounts", "ACCESS_DENIED", nil)
		}
		if businessflow.IsAccountSuspended(err) || businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin account is not active", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Account approval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Account approval failed", "USER_APPROVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account approved successfully", fiber.Map{
		"message": result.Message,
		"user":    result.User,
	})
}

// Dashboard returns platform-wide counters
// @Summary Admin Dashboard
// @Description Aggregate platform counters. Admin only.
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - not an admin"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c fiber.Ctx) error {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	result, err := h.adminFlow.Dashboard(h.createRequestContext(c, "/api/v1/admin/dashboard"), adminID)
	if err != nil {
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account not found", "USER_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only admins can view the dashboard", "ACCESS_DENIED", nil)
		}

		log.Println("Dashboard aggregation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Dashboard aggregation failed", "DASHBOARD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
