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

// TagRequest is the create/rename body for a tag
type TagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// ListTags returns all tags with usage counts
func (h *AdminHandler) ListTags(c *fiber.Ctx) error {
	type tagWithCount struct {
		model.Tag
		CardCount int64 `json:"card_count"`
	}

	var tags []model.Tag
	if err := h.db.WithContext(c.Context()).Order("name ASC").Find(&tags).Error; err != nil {
		log.Printf("admin: tag list failed: %v", err)
		return response.InternalServerError(c, "Failed to load tags")
	}

	result := make([]tagWithCount, 0, len(tags))
	for _, tag := range tags {
		count := h.db.WithContext(c.Context()).Model(&tag).Association("Cards").Count()
		result = append(result, tagWithCount{Tag: tag, CardCount: count})
	}

	return response.Success(c, result)
}

// CreateTag adds a tag
func (h *AdminHandler) CreateTag(c *fiber.Ctx) error {
	var req TagRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	name := strings.TrimSpace(req.Name)

	var existing model.Tag
	err := h.db.WithContext(c.Context()).
		Where("LOWER(name) = LOWER(?)", name).
		First(&existing).Error
	if err == nil {
		return response.Conflict(c, "A tag with this name already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("admin: tag lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to create tag")
	}

	tag := model.Tag{Name: name}
	if err := h.db.WithContext(c.Context()).Create(&tag).Error; err != nil {
		log.Printf("admin: tag create failed: %v", err)
		return response.InternalServerError(c, "Failed to create tag")
	}

	h.invalidateCache()
	return response.Created(c, tag)
}

// RenameTag changes a tag's name
func (h *AdminHandler) RenameTag(c *fiber.Ctx) error {
	tagID, err := c.ParamsInt("id")
	if err != nil || tagID < 1 {
		return response.BadRequest(c, "Invalid tag ID")
	}

	var req TagRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var tag model.Tag
	err = h.db.WithContext(c.Context()).First(&tag, tagID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Tag not found")
		}
		log.Printf("admin: tag rename lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to rename tag")
	}

	newName := strings.TrimSpace(req.Name)

	// Renaming onto an existing tag merges into it instead of leaving
	// two tags with the same name.
	var existing model.Tag
	err = h.db.WithContext(c.Context()).
		Where("LOWER(name) = LOWER(?) AND id != ?", newName, tagID).
		First(&existing).Error
	if err == nil {
		err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(
				"UPDATE card_tags SET tag_id = ? WHERE tag_id = ? AND card_id NOT IN (SELECT card_id FROM card_tags WHERE tag_id = ?)",
				existing.ID, tag.ID, existing.ID,
			).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM card_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
				return err
			}
			return tx.Delete(&tag).Error
		})
		if err != nil {
			log.Printf("admin: tag merge failed: %v", err)
			return response.InternalServerError(c, "Failed to rename tag")
		}

		h.invalidateCache()
		return response.Success(c, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("admin: tag rename target lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to rename tag")
	}

	if err := h.db.WithContext(c.Context()).Model(&tag).Update("name", newName).Error; err != nil {
		log.Printf("admin: tag rename failed: %v", err)
		return response.InternalServerError(c, "Failed to rename tag")
	}

	h.invalidateCache()
	return response.Success(c, tag)
}

// DeleteTag removes a tag and detaches it from all cards
func (h *AdminHandler) DeleteTag(c *fiber.Ctx) error {
	tagID, err := c.ParamsInt("id")
	if err != nil || tagID < 1 {
		return response.BadRequest(c, "Invalid tag ID")
	}

	var tag model.Tag
	err = h.db.WithContext(c.Context()).First(&tag, tagID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Tag not found")
		}
		log.Printf("admin: tag delete lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to delete tag")
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tag).Association("Cards").Clear(); err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		log.Printf("admin: tag delete failed: %v", err)
		return response.InternalServerError(c, "Failed to delete tag")
	}

	h.invalidateCache()
	return response.NoContent(c)
}
