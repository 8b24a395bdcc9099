package card

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
)

// List returns approved business cards with pagination and optional
// tag, featured, and search filters. Anonymous listing responses are
// served from the in-memory cache when possible.
func (h *CardHandler) List(c *fiber.Ctx) error {
	cacheKey := c.OriginalURL()
	if h.cache != nil {
		if body, ok := h.cache.Get(cacheKey); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := h.db.WithContext(c.Context()).Model(&model.Card{}).
		Preload("Tags").
		Where("approved = ?", true)

	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		query = query.
			Joins("JOIN card_tags ON card_tags.card_id = cards.id").
			Joins("JOIN tags ON tags.id = card_tags.tag_id").
			Where("LOWER(tags.name) = LOWER(?)", tag)
	}

	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("cards: count failed: %v", err)
		return response.InternalServerError(c, "Failed to load businesses")
	}

	var cards []model.Card
	err := query.
		Order("featured DESC, name ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&cards).Error
	if err != nil {
		log.Printf("cards: list failed: %v", err)
		return response.InternalServerError(c, "Failed to load businesses")
	}

	pagination := response.CalculatePagination(page, perPage, total)

	if h.cache != nil {
		if body, err := json.Marshal(response.PaginatedResponse{
			Success:    true,
			Data:       cards,
			Pagination: pagination,
		}); err == nil {
			h.cache.Set(cacheKey, body)
		}
	}

	return response.Paginated(c, cards, pagination)
}

// ListTags returns all tags in use
func (h *CardHandler) ListTags(c *fiber.Ctx) error {
	cacheKey := c.OriginalURL()
	if h.cache != nil {
		if body, ok := h.cache.Get(cacheKey); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
	}

	var tags []model.Tag
	if err := h.db.WithContext(c.Context()).Order("name ASC").Find(&tags).Error; err != nil {
		log.Printf("cards: list tags failed: %v", err)
		return response.InternalServerError(c, "Failed to load tags")
	}

	if h.cache != nil {
		if body, err := json.Marshal(response.Response{Success: true, Data: tags}); err == nil {
			h.cache.Set(cacheKey, body)
		}
	}

	return response.Success(c, tags)
}
