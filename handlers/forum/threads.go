package forum

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

// ListThreads returns threads in a category, pinned first
func (h *ForumHandler) ListThreads(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("id")
	if err != nil || categoryID < 1 {
		return response.BadRequest(c, "Invalid category ID")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var category model.ForumCategory
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND is_active = ?", categoryID, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Category not found")
		}
		log.Printf("forum: category lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to load threads")
	}

	query := h.db.WithContext(c.Context()).Model(&model.ForumThread{}).
		Where("category_id = ?", categoryID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("forum: thread count failed: %v", err)
		return response.InternalServerError(c, "Failed to load threads")
	}

	var threads []model.ForumThread
	err = query.
		Preload("Author").
		Order("is_pinned DESC, updated_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&threads).Error
	if err != nil {
		log.Printf("forum: list threads failed: %v", err)
		return response.InternalServerError(c, "Failed to load threads")
	}

	return response.Paginated(c, threads, response.CalculatePagination(page, perPage, total))
}

// CreateThreadRequest carries a new thread title and opening post
type CreateThreadRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required,min=1,max=20000"`
}

// CreateThread starts a discussion topic in a category. The opening
// post is created in the same transaction as the thread.
func (h *ForumHandler) CreateThread(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	categoryID, err := c.ParamsInt("id")
	if err != nil || categoryID < 1 {
		return response.BadRequest(c, "Invalid category ID")
	}

	var req CreateThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var category model.ForumCategory
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND is_active = ?", categoryID, true).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Category not found")
		}
		log.Printf("forum: category lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to create thread")
	}

	title := strings.TrimSpace(req.Title)
	thread := model.ForumThread{
		CategoryID: uint(categoryID),
		Title:      title,
		Slug:       model.Slugify(title),
		CreatedBy:  userID,
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&thread).Error; err != nil {
			return err
		}
		post := model.ForumPost{
			ThreadID:    thread.ID,
			Content:     req.Content,
			IsFirstPost: true,
			CreatedBy:   userID,
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		log.Printf("forum: create thread failed: %v", err)
		return response.InternalServerError(c, "Failed to create thread")
	}

	return response.Created(c, thread)
}

// GetThread returns a thread with its posts
func (h *ForumHandler) GetThread(c *fiber.Ctx) error {
	threadID, err := c.ParamsInt("id")
	if err != nil || threadID < 1 {
		return response.BadRequest(c, "Invalid thread ID")
	}

	var thread model.ForumThread
	err = h.db.WithContext(c.Context()).
		Preload("Author").
		First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Thread not found")
		}
		log.Printf("forum: get thread failed: %v", err)
		return response.InternalServerError(c, "Failed to load thread")
	}

	var posts []model.ForumPost
	err = h.db.WithContext(c.Context()).
		Preload("Author").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&posts).Error
	if err != nil {
		log.Printf("forum: load posts failed: %v", err)
		return response.InternalServerError(c, "Failed to load thread")
	}

	return response.Success(c, fiber.Map{
		"thread": thread,
		"posts":  posts,
	})
}

// DeleteThread removes the caller's own thread and its posts
func (h *ForumHandler) DeleteThread(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	threadID, err := c.ParamsInt("id")
	if err != nil || threadID < 1 {
		return response.BadRequest(c, "Invalid thread ID")
	}

	var thread model.ForumThread
	err = h.db.WithContext(c.Context()).First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Thread not found")
		}
		log.Printf("forum: delete thread lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to delete thread")
	}

	role, _ := middleware.GetUserRole(c)
	if thread.CreatedBy != userID && role != model.RoleAdmin {
		return response.Forbidden(c, "You can only delete your own threads")
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", thread.ID).Delete(&model.ForumPost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&thread).Error
	})
	if err != nil {
		log.Printf("forum: delete thread failed: %v", err)
		return response.InternalServerError(c, "Failed to delete thread")
	}

	return response.NoContent(c)
}
