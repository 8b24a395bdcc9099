package auth

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cityforge/cityforge/model"
	authutil "github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := c.IP()

	var user model.User
	err := h.db.WithContext(c.Context()).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.recordFailure(c, ip, email)
			return response.Unauthorized(c, "Invalid email or password")
		}
		log.Printf("login: user lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to sign in")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		h.recordFailure(c, ip, email)
		return response.Unauthorized(c, "Invalid email or password")
	}

	if !user.IsActive {
		return response.Forbidden(c, "This account has been deactivated")
	}

	if h.bruteForceProtection != nil {
		if err := h.bruteForceProtection.RecordSuccessfulAttempt(c, ip); err != nil {
			log.Printf("login: failed to clear attempt counter: %v", err)
		}
	}

	now := time.Now()
	if err := h.db.WithContext(c.Context()).Model(&user).Update("last_login", now).Error; err != nil {
		log.Printf("login: failed to record last login: %v", err)
	}
	user.LastLogin = &now

	token, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("login: token generation failed: %v", err)
		return response.InternalServerError(c, "Failed to create session")
	}

	h.SetSessionCookies(c, token)

	return response.Success(c, fiber.Map{
		"token": token,
		"user":  toUserResponse(&user),
	})
}

func (h *AuthHandler) recordFailure(c *fiber.Ctx, ip, email string) {
	if h.bruteForceProtection == nil {
		return
	}
	if err := h.bruteForceProtection.RecordFailedAttempt(c, ip, email); err != nil {
		log.Printf("login: failed to record attempt: %v", err)
	}
}
