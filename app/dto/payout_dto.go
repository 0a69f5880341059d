package dto

import (
	"time"
)

// CreatePayoutRequest represents a manual payout creation by a brand or admin
type CreatePayoutRequest struct {
	UserID         uint    `json:"-"`
	AssignmentUUID string  `json:"assignment_uuid" validate:"required,uuid4"`
	Type           string  `json:"type" validate:"required,oneof=reimbursement commission review_bonus"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Notes          *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CreatePayoutResponse represents the response after creating a payout.
// Created is false when an identical payout already existed and was returned.
type CreatePayoutResponse struct {
	Message string    `json:"message"`
	Payout  PayoutDTO `json:"payout"`
	Created bool      `json:"created"`
}

// UpdatePayoutStatusRequest represents a settlement state change
type UpdatePayoutStatusRequest struct {
	UUID   string  `json:"-"`
	UserID uint    `json:"-"`
	Status string  `json:"status" validate:"required,oneof=pending processing paid failed cancelled"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdatePayoutStatusResponse represents the response after a status change
type UpdatePayoutStatusResponse struct {
	Message string    `json:"message"`
	Payout  PayoutDTO `json:"payout"`
}

// ListPayoutsRequest represents the request to list payouts
type ListPayoutsRequest struct {
	UserID   uint    `json:"-"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=pending processing paid failed cancelled"`
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=reimbursement commission review_bonus"`
	Page     int     `json:"page" validate:"omitempty,gte=1"`
	PageSize int     `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListPayoutsResponse represents the response to list payouts
type ListPayoutsResponse struct {
	Payouts    []PayoutDTO `json:"payouts"`
	Pagination Pagination  `json:"pagination"`
}

// PayoutSummaryRequest represents the request for ledger totals
type PayoutSummaryRequest struct {
	UserID uint `json:"-"`
}

// PayoutSummaryResponse aggregates ledger totals for the caller
type PayoutSummaryResponse struct {
	PendingTotal   float64            `json:"pending_total"`
	PaidTotal      float64            `json:"paid_total"`
	PendingByType  map[string]float64 `json:"pending_by_type"`
	PendingPayouts int64              `json:"pending_payouts"`
	PaidPayouts    int64              `json:"paid_payouts"`
}

// PayoutDTO represents a payout ledger entry in API responses
type PayoutDTO struct {
	UUID           string     `json:"uuid"`
	AssignmentUUID string     `json:"assignment_uuid,omitempty"`
	Type           string     `json:"type"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	Notes          *string    `json:"notes,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
