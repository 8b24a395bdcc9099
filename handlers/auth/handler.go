package auth

import (
	"time"

	"github.com/cityforge/cityforge/services"
	authutil "github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	mautic               *services.MauticService
	production           bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, mautic *services.MauticService, production bool) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		mautic:               mautic,
		production:           production,
	}
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID            uint       `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	EmailVerified bool       `json:"email_verified"`
	IsSupporter   bool       `json:"is_supporter"`
	CreatedDate   time.Time  `json:"created_date"`
	LastLogin     *time.Time `json:"last_login"`
}

// SetSessionCookies delivers a freshly minted session through both
// transports at once: the caller embeds the token in the JSON body for
// bearer clients, and this helper sets the HTTP-only session cookie
// for browsers plus the CSRF double-submit pair (JS-readable cookie
// echoed in a response header).
func (h *AuthHandler) SetSessionCookies(c *fiber.Ctx, token string) string {
	maxAge := int(h.jwtManager.Expiry().Seconds())

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	csrfToken := authutil.GenerateCSRFToken()
	c.Cookie(&fiber.Cookie{
		Name:     authutil.CSRFCookieName,
		Value:    csrfToken,
		MaxAge:   maxAge,
		HTTPOnly: false,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Set(authutil.CSRFHeaderName, csrfToken)

	return csrfToken
}

// ClearSessionCookies expires the session and CSRF cookies
func (h *AuthHandler) ClearSessionCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  expired,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     authutil.CSRFCookieName,
		Value:    "",
		Expires:  expired,
		HTTPOnly: false,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
