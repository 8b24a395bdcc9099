package resource

import (
	"encoding/json"
	"log"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/cache"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ResourceHandler serves the public community resources page
type ResourceHandler struct {
	db    *gorm.DB
	cache *cache.MemoryCache
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(db *gorm.DB, memCache *cache.MemoryCache) *ResourceHandler {
	return &ResourceHandler{db: db, cache: memCache}
}

// InvalidateCache drops cached resource page responses
func (h *ResourceHandler) InvalidateCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}

// ResourcePage is the full payload for the resources screen
type ResourcePage struct {
	QuickAccess []model.QuickAccessItem  `json:"quick_access"`
	Categories  []model.ResourceCategory `json:"categories"`
}

// List returns quick-access tiles and categorized resource items in
// display order
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	cacheKey := c.OriginalURL()
	if h.cache != nil {
		if body, ok := h.cache.Get(cacheKey); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
	}

	var quickAccess []model.QuickAccessItem
	err := h.db.WithContext(c.Context()).
		Where("is_active = ?", true).
		Order("display_order ASC").
		Find(&quickAccess).Error
	if err != nil {
		log.Printf("resources: quick access failed: %v", err)
		return response.InternalServerError(c, "Failed to load resources")
	}

	var categories []model.ResourceCategory
	err = h.db.WithContext(c.Context()).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("display_order ASC")
		}).
		Order("display_order ASC").
		Find(&categories).Error
	if err != nil {
		log.Printf("resources: categories failed: %v", err)
		return response.InternalServerError(c, "Failed to load resources")
	}

	page := ResourcePage{QuickAccess: quickAccess, Categories: categories}

	if h.cache != nil {
		if body, err := json.Marshal(response.Response{Success: true, Data: page}); err == nil {
			h.cache.Set(cacheKey, body)
		}
	}

	return response.Success(c, page)
}
