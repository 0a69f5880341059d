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

// PurchaseProofHandlerInterface defines the contract for purchase proof handlers
type PurchaseProofHandlerInterface interface {
	Submit(c fiber.Ctx) error
	Review(c fiber.Ctx) error
}

// PurchaseProofHandler handles purchase evidence HTTP requests
type PurchaseProofHandler struct {
	proofFlow businessflow.PurchaseProofFlow
	validator *validator.Validate
}

// NewPurchaseProofHandler creates a new purchase proof handler
func NewPurchaseProofHandler(proofFlow businessflow.PurchaseProofFlow) *PurchaseProofHandler {
	return &PurchaseProofHandler{
		proofFlow: proofFlow,
		validator: validator.New(),
	}
}

func (h *PurchaseProofHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PurchaseProofHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Submit handles an influencer submitting purchase evidence
// @Summary Submit Purchase Proof
// @Description Submit order evidence for an assignment, moving it to purchase review
// @Tags Purchase Proofs
// @Accept json
// @Produce json
// @Param uuid path string true "Assignment UUID"
// @Param request body dto.SubmitPurchaseProofRequest true "Purchase evidence"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitPurchaseProofResponse} "Proof submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden - assignment belongs to another influencer"
// @Failure 404 {object} dto.APIResponse "Assignment not found"
// @Failure 409 {object} dto.APIResponse "Assignment is not accepting purchase proof"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/assignments/{uuid}/purchase-proof [post]
func (h *PurchaseProofHandler) Submit(c fiber.Ctx) error {
	assignmentUUID := c.Params("uuid")
	if assignmentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment UUID is required", "MISSING_ASSIGNMENT_UUID", nil)
	}

	var req dto.SubmitPurchaseProofRequest
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

	result, err := h.proofFlow.Submit(h.createRequestContext(c, "/api/v1/assignments/"+assignmentUUID+"/purchase-proof"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the assigned influencer can submit proof", "ACCESS_DENIED", nil)
		}
		if businessflow.IsAssignmentStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Assignment is not accepting purchase proof in its current status", "ASSIGNMENT_STATE_INVALID", nil)
		}
		if businessflow.IsProofAlreadyApproved(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "An approved proof cannot be replaced", "PROOF_ALREADY_APPROVED", nil)
		}
		if businessflow.IsPriceInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Price must be greater than zero", "INVALID_PRICE", nil)
		}
		if businessflow.IsScreenshotRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one screenshot is required", "SCREENSHOT_REQUIRED", nil)
		}

		log.Println("Purchase proof submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Purchase proof submission failed", "PROOF_SUBMISSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Purchase proof submitted successfully", fiber.Map{
		"message": result.Message,
		"proof":   result.Proof,
	})
}

// Review handles a brand's verdict on submitted purchase evidence
// @Summary Review Purchase Proof
// @Description Approve or reject purchase evidence. Approval queues the reimbursement payout.
// @Tags Purchase Proofs
// @Accept json
// @Produce json
// @Param uuid path string true "Purchase proof UUID"
// @Param request body dto.ReviewDecisionRequest true "Verdict"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewPurchaseProofResponse} "Proof reviewed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Proof not found"
// @Failure 409 {object} dto.APIResponse "Proof is not awaiting review"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/purchase-proofs/{uuid}/review [patch]
func (h *PurchaseProofHandler) Review(c fiber.Ctx) error {
	proofUUID := c.Params("uuid")
	if proofUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Proof UUID is required", "MISSING_PROOF_UUID", nil)
	}

	var req dto.ReviewDecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = proofUUID

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

	result, err := h.proofFlow.Review(h.createRequestContext(c, "/api/v1/purchase-proofs/"+proofUUID+"/review"), &req, metadata)
	if err != nil {
		if resp, handled := h.handleActorError(c, err); handled {
			return resp
		}
		if businessflow.IsPurchaseProofNotFound(err) || businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Purchase proof not found", "PROOF_NOT_FOUND", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only the campaign's brand can review proofs", "ACCESS_DENIED", nil)
		}
		if businessflow.IsProofNotReviewable(err) || businessflow.IsAssignmentStateInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Proof is not awaiting review", "PROOF_NOT_REVIEWABLE", nil)
		}
		if businessflow.IsInvalidDecision(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Decision must be approved, rejected or changes_requested", "INVALID_DECISION", nil)
		}

		log.Println("Purchase proof review failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Purchase proof review failed", "PROOF_REVIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Purchase proof reviewed successfully", fiber.Map{
		"message":           result.Message,
		"proof":             result.Proof,
		"assignment_status": result.AssignmentStatus,
	})
}

func (h *PurchaseProofHandler) handleActorError(c fiber.Ctx, err error) (error, bool) {
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
func (h *PurchaseProofHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
