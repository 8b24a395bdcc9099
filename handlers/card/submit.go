package card

import (
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// SubmitRequest is a member-submitted business listing
type SubmitRequest struct {
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

// Submit creates a pending business listing for admin review
func (h *CardHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitRequest
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
		CreatedBy:          &userID,
		Approved:           false,
	}

	tags, err := h.resolveTags(c, req.Tags)
	if err != nil {
		log.Printf("cards: tag resolution failed: %v", err)
		return response.InternalServerError(c, "Failed to submit business")
	}
	card.Tags = tags

	if err := h.db.WithContext(c.Context()).Create(&card).Error; err != nil {
		log.Printf("cards: submission create failed: %v", err)
		return response.InternalServerError(c, "Failed to submit business")
	}

	email, _ := middleware.GetUserEmail(c)

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(model.EventSubmissionCreated, fiber.Map{
			"card_id":       card.ID,
			"business_name": card.Name,
			"submitted_by":  email,
		})
	}
	if h.email != nil {
		if err := h.email.NotifySubmission(card.Name, email); err != nil {
			log.Printf("cards: submission notification failed: %v", err)
		}
	}

	return response.Created(c, card)
}

// MySubmissions lists the authenticated user's submissions, pending
// and approved alike
func (h *CardHandler) MySubmissions(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var cards []model.Card
	err := h.db.WithContext(c.Context()).
		Preload("Tags").
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&cards).Error
	if err != nil {
		log.Printf("cards: my submissions failed: %v", err)
		return response.InternalServerError(c, "Failed to load submissions")
	}

	return response.Success(c, cards)
}

// resolveTags finds or creates tags by name, case-insensitively.
func (h *CardHandler) resolveTags(c *fiber.Ctx, names []string) ([]model.Tag, error) {
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
