package card

import (
	"errors"
	"log"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Get returns a single approved card by ID
func (h *CardHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var card model.Card
	err = h.db.WithContext(c.Context()).
		Preload("Tags").
		Where("id = ? AND approved = ?", id, true).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Business not found")
		}
		log.Printf("cards: get failed: %v", err)
		return response.InternalServerError(c, "Failed to load business")
	}

	return response.Success(c, card)
}

// GetByShareURL resolves a /business/<id>/<slug> share link. The slug
// is canonical: a stale slug redirects the client to the current one
// rather than serving duplicate content.
func (h *CardHandler) GetByShareURL(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}
	slug := c.Params("slug")

	var card model.Card
	err = h.db.WithContext(c.Context()).
		Preload("Tags").
		Where("id = ? AND approved = ?", id, true).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Business not found")
		}
		log.Printf("cards: share lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to load business")
	}

	if slug != card.Slug() {
		return c.Redirect(card.ShareURL(), fiber.StatusMovedPermanently)
	}

	return response.Success(c, card)
}
