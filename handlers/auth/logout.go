package auth

import (
	"log"
	"time"

	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
)

// Logout revokes the presented token and clears the session cookies.
// Revocation is keyed on the token's jti so the same token is rejected
// on every later request, whichever transport carries it.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	userID, _ := middleware.GetUserID(c)

	expiresAt := time.Now().Add(h.jwtManager.Expiry())
	if claims, ok := middleware.GetClaims(c); ok && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.blacklistService.RevokeToken(c.Context(), jti, userID, expiresAt, "logout"); err != nil {
		log.Printf("logout: failed to revoke token: %v", err)
		return response.InternalServerError(c, "Failed to sign out")
	}

	h.ClearSessionCookies(c)

	return response.SuccessWithMessage(c, "Signed out", nil)
}
