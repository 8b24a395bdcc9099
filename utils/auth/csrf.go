package auth

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// CSRF double-submit cookie/header names. The cookie is deliberately
// NOT HTTP-only so the browser client can read it and echo it back in
// the request header.
const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// GenerateCSRFToken returns a fresh random CSRF token value
func GenerateCSRFToken() string {
	return uuid.New().String()
}

// ValidateCSRFToken reports whether the cookie and header values are
// both present and equal, compared in constant time.
func ValidateCSRFToken(cookieValue, headerValue string) bool {
	if cookieValue == "" || headerValue == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieValue), []byte(headerValue)) == 1
}
