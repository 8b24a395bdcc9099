package admin

import (
	"log"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

// ListSettings returns all site settings
func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	var settings []model.SiteSetting
	err := h.db.WithContext(c.Context()).Order("key ASC").Find(&settings).Error
	if err != nil {
		log.Printf("admin: settings list failed: %v", err)
		return response.InternalServerError(c, "Failed to load settings")
	}
	return response.Success(c, settings)
}

// SettingsUpdateRequest is a batch of key/value updates
type SettingsUpdateRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

// UpdateSettings upserts site settings in one batch
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	var req SettingsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	for key, value := range req.Settings {
		setting := model.SiteSetting{
			Key:       key,
			Value:     value,
			UpdatedBy: &adminID,
		}
		err := h.db.WithContext(c.Context()).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
			}).
			Create(&setting).Error
		if err != nil {
			log.Printf("admin: setting upsert failed for %s: %v", key, err)
			return response.InternalServerError(c, "Failed to update settings")
		}
	}

	h.invalidateCache()
	return response.SuccessWithMessage(c, "Settings updated", nil)
}
