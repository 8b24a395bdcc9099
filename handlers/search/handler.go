package search

import (
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxResultsPerSection = 10

// SearchHandler serves sitewide search across the public surfaces
type SearchHandler struct {
	db *gorm.DB
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{db: db}
}

// Results groups matches by content type
type Results struct {
	Businesses []model.Card           `json:"businesses"`
	Threads    []model.ForumThread    `json:"threads"`
	HelpWanted []model.HelpWantedPost `json:"help_wanted"`
	Resources  []model.ResourceItem   `json:"resources"`
}

// Search runs a case-insensitive substring search across businesses,
// forum threads, help-wanted posts, and resources
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return response.BadRequest(c, "Search query is required")
	}
	if len(q) > 200 {
		return response.BadRequest(c, "Search query is too long")
	}

	pattern := "%" + strings.ToLower(q) + "%"
	results := Results{
		Businesses: []model.Card{},
		Threads:    []model.ForumThread{},
		HelpWanted: []model.HelpWantedPost{},
		Resources:  []model.ResourceItem{},
	}

	err := h.db.WithContext(c.Context()).
		Preload("Tags").
		Where("approved = ? AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", true, pattern, pattern).
		Order("featured DESC, name ASC").
		Limit(maxResultsPerSection).
		Find(&results.Businesses).Error
	if err != nil {
		log.Printf("search: businesses failed: %v", err)
		return response.InternalServerError(c, "Search failed")
	}

	err = h.db.WithContext(c.Context()).
		Where("LOWER(title) LIKE ?", pattern).
		Order("updated_at DESC").
		Limit(maxResultsPerSection).
		Find(&results.Threads).Error
	if err != nil {
		log.Printf("search: threads failed: %v", err)
		return response.InternalServerError(c, "Search failed")
	}

	err = h.db.WithContext(c.Context()).
		Where("status = ? AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", model.HelpWantedOpen, pattern, pattern).
		Order("created_at DESC").
		Limit(maxResultsPerSection).
		Find(&results.HelpWanted).Error
	if err != nil {
		log.Printf("search: help wanted failed: %v", err)
		return response.InternalServerError(c, "Search failed")
	}

	err = h.db.WithContext(c.Context()).
		Where("is_active = ? AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", true, pattern, pattern).
		Order("display_order ASC").
		Limit(maxResultsPerSection).
		Find(&results.Resources).Error
	if err != nil {
		log.Printf("search: resources failed: %v", err)
		return response.InternalServerError(c, "Search failed")
	}

	return response.Success(c, results)
}
