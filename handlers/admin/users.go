package admin

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

// ListUsers returns registered users with pagination and search
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := h.db.WithContext(c.Context()).Model(&model.User{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("admin: user count failed: %v", err)
		return response.InternalServerError(c, "Failed to load users")
	}

	var users []model.User
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error
	if err != nil {
		log.Printf("admin: user list failed: %v", err)
		return response.InternalServerError(c, "Failed to load users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page, perPage, total))
}

// UpdateUserRequest is the admin user-update body
type UpdateUserRequest struct {
	Role        *string `json:"role" validate:"omitempty,oneof=admin supporter user"`
	IsActive    *bool   `json:"is_active"`
	IsSupporter *bool   `json:"is_supporter"`
}

// UpdateUser changes a user's role or flags. An admin cannot
// deactivate or demote their own account.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	err = h.db.WithContext(c.Context()).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		log.Printf("admin: user lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update user")
	}

	if user.ID == adminID {
		demoting := req.Role != nil && *req.Role != model.RoleAdmin
		deactivating := req.IsActive != nil && !*req.IsActive
		if demoting || deactivating {
			return response.BadRequest(c, "You cannot demote or deactivate your own account")
		}
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsSupporter != nil {
		updates["is_supporter"] = *req.IsSupporter
	}
	if len(updates) == 0 {
		return response.Success(c, user)
	}

	if err := h.db.WithContext(c.Context()).Model(&user).Updates(updates).Error; err != nil {
		log.Printf("admin: user update failed: %v", err)
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, user)
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

// ResetUserPassword sets a new password for a user
func (h *AdminHandler) ResetUserPassword(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		return response.BadRequest(c, err.Error())
	}

	var user model.User
	err = h.db.WithContext(c.Context()).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		log.Printf("admin: reset password lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to reset password")
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("admin: password hash failed: %v", err)
		return response.InternalServerError(c, "Failed to reset password")
	}

	if err := h.db.WithContext(c.Context()).Model(&user).Update("password_hash", hash).Error; err != nil {
		log.Printf("admin: reset password failed: %v", err)
		return response.InternalServerError(c, "Failed to reset password")
	}

	return response.SuccessWithMessage(c, "Password reset", nil)
}
