// Package utils provides utility functions for the application.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

func ToPtr[T any](v T) *T {
	return &v
}

// NewRedirectToken returns a fresh opaque redirect token.
// Tokens are the first RedirectTokenLength hex characters of a random UUID.
func NewRedirectToken() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return raw[:RedirectTokenLength]
}

// HashIP returns the salted SHA-256 digest of a visitor IP.
// The raw address is never persisted.
func HashIP(ip, salt string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])
}

// MaskOrderID hides the middle of an order identifier for cross-party reads.
func MaskOrderID(orderID string) string {
	if len(orderID) <= 4 {
		return "****"
	}
	return orderID[:2] + strings.Repeat("*", len(orderID)-4) + orderID[len(orderID)-2:]
}
