package forum

import (
	"log"
	"strings"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// CategorySummary is a category with its thread count
type CategorySummary struct {
	model.ForumCategory
	ThreadCount int64 `json:"thread_count"`
}

// ListCategories returns active forum categories in display order
func (h *ForumHandler) ListCategories(c *fiber.Ctx) error {
	var categories []model.ForumCategory
	err := h.db.WithContext(c.Context()).
		Where("is_active = ?", true).
		Order("display_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		log.Printf("forum: list categories failed: %v", err)
		return response.InternalServerError(c, "Failed to load categories")
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, cat := range categories {
		var count int64
		if err := h.db.WithContext(c.Context()).Model(&model.ForumThread{}).
			Where("category_id = ?", cat.ID).
			Count(&count).Error; err != nil {
			log.Printf("forum: thread count failed: %v", err)
		}
		summaries = append(summaries, CategorySummary{ForumCategory: cat, ThreadCount: count})
	}

	return response.Success(c, summaries)
}

// CategoryRequestBody is a member proposal for a new category
type CategoryRequestBody struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	Description   string `json:"description" validate:"max=2000"`
	Justification string `json:"justification" validate:"max=2000"`
}

// RequestCategory records a proposal for a new forum category and
// notifies admins
func (h *ForumHandler) RequestCategory(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CategoryRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	request := model.ForumCategoryRequest{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Justification: req.Justification,
		Status:        model.CategoryRequestPending,
		RequestedBy:   userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&request).Error; err != nil {
		log.Printf("forum: category request create failed: %v", err)
		return response.InternalServerError(c, "Failed to submit request")
	}

	if h.dispatcher != nil {
		email, _ := middleware.GetUserEmail(c)
		h.dispatcher.Dispatch(model.EventCategoryRequest, fiber.Map{
			"request_id":   request.ID,
			"name":         request.Name,
			"requested_by": email,
		})
	}

	return response.Created(c, request)
}

// MyCategoryRequests lists the caller's category proposals
func (h *ForumHandler) MyCategoryRequests(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var requests []model.ForumCategoryRequest
	err := h.db.WithContext(c.Context()).
		Where("requested_by = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		log.Printf("forum: my category requests failed: %v", err)
		return response.InternalServerError(c, "Failed to load requests")
	}

	return response.Success(c, requests)
}
