package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	authutil "github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, toUserResponse(user))
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
}

// UpdateProfile updates the authenticated user's name
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{
		"first_name": strings.TrimSpace(req.FirstName),
		"last_name":  strings.TrimSpace(req.LastName),
	}
	if err := h.db.WithContext(c.Context()).Model(user).Updates(updates).Error; err != nil {
		log.Printf("profile: update failed: %v", err)
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(user))
}

// UpdateEmailRequest represents an email change. The current password
// must be re-presented even on an authenticated session.
type UpdateEmailRequest struct {
	Email           string `json:"email" validate:"required,email"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// UpdateEmail changes the authenticated user's email address
func (h *AuthHandler) UpdateEmail(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == user.Email {
		return response.Success(c, toUserResponse(user))
	}

	var existing model.User
	err := h.db.WithContext(c.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("profile: email lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update email")
	}

	// Email changes reset verification until re-confirmed.
	updates := map[string]interface{}{
		"email":          email,
		"email_verified": false,
	}
	if err := h.db.WithContext(c.Context()).Model(user).Updates(updates).Error; err != nil {
		log.Printf("profile: email update failed: %v", err)
		return response.InternalServerError(c, "Failed to update email")
	}

	return response.Success(c, toUserResponse(user))
}

// UpdatePasswordRequest represents a password change
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// UpdatePassword changes the authenticated user's password
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		return response.BadRequest(c, err.Error())
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("profile: password hash failed: %v", err)
		return response.InternalServerError(c, "Failed to update password")
	}

	if err := h.db.WithContext(c.Context()).Model(user).Update("password_hash", hash).Error; err != nil {
		log.Printf("profile: password update failed: %v", err)
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.SuccessWithMessage(c, "Password updated", nil)
}
