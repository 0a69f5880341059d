package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Request context keys populated by handlers and read by flows.
const (
	RequestIDKey  ContextKey = "X-Request-ID"
	UserAgentKey  ContextKey = "User-Agent"
	IPAddressKey  ContextKey = "IP-Address"
	EndpointKey   ContextKey = "Endpoint"
	TimeoutKey    ContextKey = "Timeout"
	CancelFuncKey ContextKey = "Cancel-Func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Marketplace constants
const (
	USDCurrency = "USD"

	// RedirectTokenLength is the length of assignment redirect tokens
	RedirectTokenLength = 16

	// MinReviewRating and MaxReviewRating bound product review ratings
	MinReviewRating = 1
	MaxReviewRating = 5
)
