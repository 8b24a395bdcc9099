package auth

import (
	"errors"
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	authutil "github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := authutil.ValidatePassword(req.Password); err != nil {
		return response.BadRequest(c, err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing model.User
	err := h.db.WithContext(c.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("register: email lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to create account")
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		log.Printf("register: password hash failed: %v", err)
		return response.InternalServerError(c, "Failed to create account")
	}

	user := model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         model.RoleUser,
		IsActive:     true,
	}

	if err := h.db.WithContext(c.Context()).Create(&user).Error; err != nil {
		log.Printf("register: create user failed: %v", err)
		return response.InternalServerError(c, "Failed to create account")
	}

	if h.mautic != nil {
		h.mautic.SyncRegistration(user.Email, user.FirstName, user.LastName)
	}

	token, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("register: token generation failed: %v", err)
		return response.InternalServerError(c, "Failed to create session")
	}

	h.SetSessionCookies(c, token)

	return response.Created(c, fiber.Map{
		"token": token,
		"user":  toUserResponse(&user),
	})
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		IsSupporter:   u.IsSupporter,
		CreatedDate:   u.CreatedAt,
		LastLogin:     u.LastLogin,
	}
}
