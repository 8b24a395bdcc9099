package admin

import (
	"errors"
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ResourceCategoryRequest is the create/update body for a category
type ResourceCategoryRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	DisplayOrder int    `json:"display_order"`
}

// ResourceItemRequest is the create/update body for a resource item
type ResourceItemRequest struct {
	CategoryID   uint   `json:"category_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Description  string `json:"description" validate:"max=2000"`
	Phone        string `json:"phone" validate:"max=20"`
	URL          string `json:"url" validate:"omitempty,url,max=500"`
	Address      string `json:"address" validate:"max=255"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

// QuickAccessRequest is the create/update body for a quick-access tile
type QuickAccessRequest struct {
	Identifier   string `json:"identifier" validate:"required,min=1,max=50"`
	Title        string `json:"title" validate:"required,min=1,max=100"`
	Subtitle     string `json:"subtitle" validate:"required,min=1,max=100"`
	Phone        string `json:"phone" validate:"required,min=1,max=20"`
	Color        string `json:"color" validate:"max=20"`
	Icon         string `json:"icon" validate:"max=50"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

// CreateResourceCategory adds a resource category
func (h *AdminHandler) CreateResourceCategory(c *fiber.Ctx) error {
	var req ResourceCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	category := model.ResourceCategory{
		Name:         strings.TrimSpace(req.Name),
		DisplayOrder: req.DisplayOrder,
	}
	if err := h.db.WithContext(c.Context()).Create(&category).Error; err != nil {
		log.Printf("admin: resource category create failed: %v", err)
		return response.InternalServerError(c, "Failed to create category")
	}

	h.invalidateCache()
	return response.Created(c, category)
}

// UpdateResourceCategory renames or reorders a category
func (h *AdminHandler) UpdateResourceCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil || categoryID < 1 {
		return response.BadRequest(c, "Invalid category ID")
	}

	var req ResourceCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var category model.ResourceCategory
	err = h.db.WithContext(c.Context()).First(&category, categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Category not found")
		}
		log.Printf("admin: resource category lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update category")
	}

	updates := map[string]interface{}{
		"name":          strings.TrimSpace(req.Name),
		"display_order": req.DisplayOrder,
	}
	if err := h.db.WithContext(c.Context()).Model(&category).Updates(updates).Error; err != nil {
		log.Printf("admin: resource category update failed: %v", err)
		return response.InternalServerError(c, "Failed to update category")
	}

	h.invalidateCache()
	return response.Success(c, category)
}

// DeleteResourceCategory removes a category and its items
func (h *AdminHandler) DeleteResourceCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil || categoryID < 1 {
		return response.BadRequest(c, "Invalid category ID")
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&model.ResourceItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.ResourceCategory{}, categoryID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Category not found")
		}
		log.Printf("admin: resource category delete failed: %v", err)
		return response.InternalServerError(c, "Failed to delete category")
	}

	h.invalidateCache()
	return response.NoContent(c)
}

// CreateResourceItem adds a resource item
func (h *AdminHandler) CreateResourceItem(c *fiber.Ctx) error {
	var req ResourceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var category model.ResourceCategory
	err := h.db.WithContext(c.Context()).First(&category, req.CategoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Category not found")
		}
		log.Printf("admin: resource item category lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to create resource")
	}

	item := model.ResourceItem{
		CategoryID:   req.CategoryID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Phone:        req.Phone,
		URL:          req.URL,
		Address:      req.Address,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Context()).Create(&item).Error; err != nil {
		log.Printf("admin: resource item create failed: %v", err)
		return response.InternalServerError(c, "Failed to create resource")
	}

	h.invalidateCache()
	return response.Created(c, item)
}

// UpdateResourceItem edits a resource item
func (h *AdminHandler) UpdateResourceItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID < 1 {
		return response.BadRequest(c, "Invalid resource ID")
	}

	var req ResourceItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var item model.ResourceItem
	err = h.db.WithContext(c.Context()).First(&item, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Resource not found")
		}
		log.Printf("admin: resource item lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update resource")
	}

	updates := map[string]interface{}{
		"category_id":   req.CategoryID,
		"name":          strings.TrimSpace(req.Name),
		"description":   req.Description,
		"phone":         req.Phone,
		"url":           req.URL,
		"address":       req.Address,
		"display_order": req.DisplayOrder,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := h.db.WithContext(c.Context()).Model(&item).Updates(updates).Error; err != nil {
		log.Printf("admin: resource item update failed: %v", err)
		return response.InternalServerError(c, "Failed to update resource")
	}

	h.invalidateCache()
	return response.Success(c, item)
}

// DeleteResourceItem removes a resource item
func (h *AdminHandler) DeleteResourceItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID < 1 {
		return response.BadRequest(c, "Invalid resource ID")
	}

	result := h.db.WithContext(c.Context()).Delete(&model.ResourceItem{}, itemID)
	if result.Error != nil {
		log.Printf("admin: resource item delete failed: %v", result.Error)
		return response.InternalServerError(c, "Failed to delete resource")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Resource not found")
	}

	h.invalidateCache()
	return response.NoContent(c)
}

// UpsertQuickAccess creates or updates a quick-access tile by its
// identifier
func (h *AdminHandler) UpsertQuickAccess(c *fiber.Ctx) error {
	var req QuickAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	item := model.QuickAccessItem{
		Identifier:   strings.TrimSpace(req.Identifier),
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Phone:        req.Phone,
		Color:        req.Color,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if item.Color == "" {
		item.Color = "blue"
	}
	if item.Icon == "" {
		item.Icon = "building"
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	var existing model.QuickAccessItem
	err := h.db.WithContext(c.Context()).
		Where("identifier = ?", item.Identifier).
		First(&existing).Error
	switch {
	case err == nil:
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
		if err := h.db.WithContext(c.Context()).Save(&item).Error; err != nil {
			log.Printf("admin: quick access update failed: %v", err)
			return response.InternalServerError(c, "Failed to save quick access item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := h.db.WithContext(c.Context()).Create(&item).Error; err != nil {
			log.Printf("admin: quick access create failed: %v", err)
			return response.InternalServerError(c, "Failed to save quick access item")
		}
	default:
		log.Printf("admin: quick access lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to save quick access item")
	}

	h.invalidateCache()
	return response.Success(c, item)
}
