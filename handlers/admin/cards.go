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

// CardRequest is the admin create/update body for a business card
type CardRequest struct {
	Name               string   `json:"name" validate:"required,min=1,max=255"`
	Description        string   `json:"description" validate:"max=5000"`
	WebsiteURL         string   `json:"website_url" validate:"omitempty,url,max=255"`
	PhoneNumber        string   `json:"phone_number" validate:"max=20"`
	Email              string   `json:"email" validate:"omitempty,email,max=100"`
	Address            string   `json:"address" validate:"max=255"`
	AddressOverrideURL string   `json:"address_override_url" validate:"omitempty,url,max=500"`
	ContactName        string   `json:"contact_name" validate:"max=100"`
	ImageURL           string   `json:"image_url" validate:"max=255"`
	Featured           bool     `json:"featured"`
	Tags               []string `json:"tags" validate:"max=10,dive,min=1,max=100"`
}

// ListCards returns all cards including unapproved ones
func (h *AdminHandler) ListCards(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := h.db.WithContext(c.Context()).Model(&model.Card{})
	if c.Query("approved") == "false" {
		query = query.Where("approved = ?", false)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("admin: card count failed: %v", err)
		return response.InternalServerError(c, "Failed to load businesses")
	}

	var cards []model.Card
	err := query.
		Preload("Tags").
		Preload("Creator").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&cards).Error
	if err != nil {
		log.Printf("admin: card list failed: %v", err)
		return response.InternalServerError(c, "Failed to load businesses")
	}

	return response.Paginated(c, cards, response.CalculatePagination(page, perPage, total))
}

// CreateCard adds a card directly, pre-approved
func (h *AdminHandler) CreateCard(c *fiber.Ctx) error {
	var req CardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	card := model.Card{
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		WebsiteURL:         req.WebsiteURL,
		PhoneNumber:        req.PhoneNumber,
		Email:              req.Email,
		Address:            req.Address,
		AddressOverrideURL: req.AddressOverrideURL,
		ContactName:        req.ContactName,
		ImageURL:           req.ImageURL,
		Featured:           req.Featured,
		Approved:           true,
	}

	tags, err := h.resolveTags(c, req.Tags)
	if err != nil {
		log.Printf("admin: tag resolution failed: %v", err)
		return response.InternalServerError(c, "Failed to create business")
	}
	card.Tags = tags

	if err := h.db.WithContext(c.Context()).Create(&card).Error; err != nil {
		log.Printf("admin: card create failed: %v", err)
		return response.InternalServerError(c, "Failed to create business")
	}

	h.invalidateCache()
	return response.Created(c, card)
}

// UpdateCard edits an existing card
func (h *AdminHandler) UpdateCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var req CardRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var card model.Card
	err = h.db.WithContext(c.Context()).First(&card, cardID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Business not found")
		}
		log.Printf("admin: card lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update business")
	}

	tags, err := h.resolveTags(c, req.Tags)
	if err != nil {
		log.Printf("admin: tag resolution failed: %v", err)
		return response.InternalServerError(c, "Failed to update business")
	}

	updates := map[string]interface{}{
		"name":                 strings.TrimSpace(req.Name),
		"description":          req.Description,
		"website_url":          req.WebsiteURL,
		"phone_number":         req.PhoneNumber,
		"email":                req.Email,
		"address":              req.Address,
		"address_override_url": req.AddressOverrideURL,
		"contact_name":         req.ContactName,
		"image_url":            req.ImageURL,
		"featured":             req.Featured,
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&card).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&card).Association("Tags").Replace(tags)
	})
	if err != nil {
		log.Printf("admin: card update failed: %v", err)
		return response.InternalServerError(c, "Failed to update business")
	}

	h.invalidateCache()
	return response.Success(c, card)
}

// DeleteCard removes a card and its reviews
func (h *AdminHandler) DeleteCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var card model.Card
	err = h.db.WithContext(c.Context()).First(&card, cardID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Business not found")
		}
		log.Printf("admin: card delete lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to delete business")
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", card.ID).Delete(&model.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&card).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&card).Error
	})
	if err != nil {
		log.Printf("admin: card delete failed: %v", err)
		return response.InternalServerError(c, "Failed to delete business")
	}

	h.invalidateCache()
	return response.NoContent(c)
}

// resolveTags finds or creates tags by name, case-insensitively.
func (h *AdminHandler) resolveTags(c *fiber.Ctx, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		var tag model.Tag
		err := h.db.WithContext(c.Context()).
			Where("LOWER(name) = LOWER(?)", name).
			FirstOrCreate(&tag, model.Tag{Name: name}).Error
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
