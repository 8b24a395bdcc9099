package card

import (
	"errors"
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SuggestEditRequest is a proposed change to an existing listing
type SuggestEditRequest struct {
	Name               string   `json:"name" validate:"required,min=1,max=255"`
	Description        string   `json:"description" validate:"max=5000"`
	WebsiteURL         string   `json:"website_url" validate:"omitempty,url,max=255"`
	PhoneNumber        string   `json:"phone_number" validate:"max=20"`
	Email              string   `json:"email" validate:"omitempty,email,max=100"`
	Address            string   `json:"address" validate:"max=255"`
	AddressOverrideURL string   `json:"address_override_url" validate:"omitempty,url,max=500"`
	ContactName        string   `json:"contact_name" validate:"max=100"`
	ImageURL           string   `json:"image_url" validate:"max=255"`
	Tags               []string `json:"tags" validate:"max=10,dive,min=1,max=100"`
}

// SuggestEdit records a user-proposed modification to a card, held
// for admin review
func (h *CardHandler) SuggestEdit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var req SuggestEditRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var card model.Card
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND approved = ?", cardID, true).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Business not found")
		}
		log.Printf("cards: suggest edit lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to submit suggestion")
	}

	mod := model.CardModification{
		CardID:             card.ID,
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		WebsiteURL:         req.WebsiteURL,
		PhoneNumber:        req.PhoneNumber,
		Email:              req.Email,
		Address:            req.Address,
		AddressOverrideURL: req.AddressOverrideURL,
		ContactName:        req.ContactName,
		ImageURL:           req.ImageURL,
		TagsText:           strings.Join(req.Tags, ", "),
		Status:             model.ModificationPending,
		SubmittedBy:        userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&mod).Error; err != nil {
		log.Printf("cards: suggest edit create failed: %v", err)
		return response.InternalServerError(c, "Failed to submit suggestion")
	}

	email, _ := middleware.GetUserEmail(c)

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(model.EventModificationCreated, fiber.Map{
			"modification_id": mod.ID,
			"card_id":         card.ID,
			"business_name":   card.Name,
			"submitted_by":    email,
		})
	}
	if h.email != nil {
		if err := h.email.NotifyModification(card.Name, email); err != nil {
			log.Printf("cards: modification notification failed: %v", err)
		}
	}

	return response.Created(c, mod)
}
