package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SessionCookieName carries the signed token for browser clients.
// Mobile/API clients send the same token as a bearer header instead.
const SessionCookieName = "cityforge_session"

// RevocationChecker is satisfied by auth.BlacklistService
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// UserLoader resolves an authenticated principal by id
type UserLoader interface {
	LoadUser(ctx context.Context, id uint) (*model.User, error)
}

type gormUserLoader struct {
	db *gorm.DB
}

func (l gormUserLoader) LoadUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := l.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// authFailure is an expected authentication failure (401). Anything
// else coming out of the pipeline is an infrastructure error and must
// surface as a 500, never as "anonymous" or "unauthorized".
type authFailure struct {
	message string
}

func (e *authFailure) Error() string {
	return e.message
}

func failAuth(message string) error {
	return &authFailure{message: message}
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	blacklist  RevocationChecker
	users      UserLoader
}

// NewAuthMiddleware creates a new auth middleware backed by the
// database for blacklist and user lookups
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  auth.NewBlacklistService(db),
		users:      gormUserLoader{db: db},
	}
}

// ExtractToken returns the request's token and whether it arrived via
// the Authorization header. The bearer header wins over the session
// cookie; exactly one governs a given request.
func ExtractToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], true
		}
		// A malformed Authorization header still governs the request;
		// never fall through to the cookie.
		return "", true
	}

	return c.Cookies(SessionCookieName), false
}

// authenticate walks the full verification pipeline:
// token present -> signature/expiry valid -> jti present -> not
// blacklisted -> user exists and active. Any failed step returns an
// *authFailure; infrastructure errors come back unwrapped.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.User, *auth.Claims, error) {
	tokenString, _ := ExtractToken(c)
	if tokenString == "" {
		return nil, nil, failAuth("Missing authorization token")
	}

	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, nil, failAuth("Token has expired")
		case errors.Is(err, auth.ErrMissingJTI):
			return nil, nil, failAuth("Invalid token format")
		case errors.Is(err, auth.ErrSecretNotConfigured):
			// Misconfigured server: fail closed as an internal error.
			return nil, nil, err
		default:
			return nil, nil, failAuth("Invalid token")
		}
	}

	if claims.TokenType != "access" {
		return nil, nil, failAuth("Invalid token type")
	}

	isRevoked, err := m.blacklist.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if isRevoked {
		return nil, nil, failAuth("Token has been revoked")
	}

	user, err := m.users.LoadUser(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, failAuth("User not found")
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, failAuth("Account is deactivated")
	}

	return user, claims, nil
}

func storePrincipal(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	c.Locals("user_id", user.ID)
	c.Locals("user_email", user.Email)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
	c.Locals("token_jti", claims.ID)
}

// Required is middleware that requires a valid, non-revoked token
// bound to an active user
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := m.authenticate(c)
		if err != nil {
			var failure *authFailure
			if errors.As(err, &failure) {
				return response.Unauthorized(c, failure.message)
			}
			log.Printf("auth: infrastructure error: %v", err)
			return response.InternalServerError(c, "Failed to verify credentials")
		}

		storePrincipal(c, user, claims)
		return c.Next()
	}
}

// Optional is middleware that treats authentication failure as
// anonymous and proceeds. Infrastructure errors (datastore down,
// missing secret) are NOT downgraded to anonymous.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, _ := ExtractToken(c)
		if tokenString == "" {
			return c.Next()
		}

		user, claims, err := m.authenticate(c)
		if err != nil {
			var failure *authFailure
			if errors.As(err, &failure) {
				return c.Next()
			}
			log.Printf("auth: infrastructure error: %v", err)
			return response.InternalServerError(c, "Failed to verify credentials")
		}

		storePrincipal(c, user, claims)
		return c.Next()
	}
}

// RequireAdmin runs the full authentication pipeline and then rejects
// non-admin principals. The role failure is an authorization error
// (403), distinct from the authentication failures above (401).
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := m.authenticate(c)
		if err != nil {
			var failure *authFailure
			if errors.As(err, &failure) {
				return response.Unauthorized(c, failure.message)
			}
			log.Printf("auth: infrastructure error: %v", err)
			return response.InternalServerError(c, "Failed to verify credentials")
		}

		if !user.IsAdmin() {
			return response.Forbidden(c, "Admin access required")
		}

		storePrincipal(c, user, claims)
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles,
// applied after Required()
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("user_role").(string)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}

		for _, r := range roles {
			if userRole == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email := c.Locals("user_email")
	if email == nil {
		return "", false
	}
	e, ok := email.(string)
	return e, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (string, bool) {
	role := c.Locals("user_role")
	if role == nil {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
