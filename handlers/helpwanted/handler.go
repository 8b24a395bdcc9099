package helpwanted

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

// HelpWantedHandler handles community help-wanted board requests
type HelpWantedHandler struct {
	db *gorm.DB
}

// NewHelpWantedHandler creates a new help-wanted handler
func NewHelpWantedHandler(db *gorm.DB) *HelpWantedHandler {
	return &HelpWantedHandler{db: db}
}

// PostRequest is the create/update body for a help-wanted post
type PostRequest struct {
	Title             string `json:"title" validate:"required,min=1,max=255"`
	Description       string `json:"description" validate:"required,min=1,max=10000"`
	Category          string `json:"category" validate:"required,oneof=services goods volunteer other"`
	Location          string `json:"location" validate:"max=255"`
	Budget            string `json:"budget" validate:"max=100"`
	ContactPreference string `json:"contact_preference" validate:"omitempty,oneof=email phone message"`
}

// List returns help-wanted posts, optionally filtered by category and
// status
func (h *HelpWantedHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := h.db.WithContext(c.Context()).Model(&model.HelpWantedPost{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	status := c.Query("status", model.HelpWantedOpen)
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("help wanted: count failed: %v", err)
		return response.InternalServerError(c, "Failed to load posts")
	}

	var posts []model.HelpWantedPost
	err := query.
		Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error
	if err != nil {
		log.Printf("help wanted: list failed: %v", err)
		return response.InternalServerError(c, "Failed to load posts")
	}

	return response.Paginated(c, posts, response.CalculatePagination(page, perPage, total))
}

// Get returns a post with its comments
func (h *HelpWantedHandler) Get(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return response.BadRequest(c, "Invalid post ID")
	}

	var post model.HelpWantedPost
	err = h.db.WithContext(c.Context()).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.Author").
		First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Post not found")
		}
		log.Printf("help wanted: get failed: %v", err)
		return response.InternalServerError(c, "Failed to load post")
	}

	return response.Success(c, post)
}

// Create adds a help-wanted post
func (h *HelpWantedHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	contactPreference := req.ContactPreference
	if contactPreference == "" {
		contactPreference = "message"
	}

	post := model.HelpWantedPost{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Category:          req.Category,
		Status:            model.HelpWantedOpen,
		Location:          req.Location,
		Budget:            req.Budget,
		ContactPreference: contactPreference,
		CreatedBy:         userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&post).Error; err != nil {
		log.Printf("help wanted: create failed: %v", err)
		return response.InternalServerError(c, "Failed to create post")
	}

	return response.Created(c, post)
}

// Close marks the caller's own post as fulfilled
func (h *HelpWantedHandler) Close(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return response.BadRequest(c, "Invalid post ID")
	}

	var post model.HelpWantedPost
	err = h.db.WithContext(c.Context()).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Post not found")
		}
		log.Printf("help wanted: close lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to close post")
	}

	role, _ := middleware.GetUserRole(c)
	if post.CreatedBy != userID && role != model.RoleAdmin {
		return response.Forbidden(c, "You can only close your own posts")
	}

	if err := h.db.WithContext(c.Context()).Model(&post).Update("status", model.HelpWantedClosed).Error; err != nil {
		log.Printf("help wanted: close failed: %v", err)
		return response.InternalServerError(c, "Failed to close post")
	}

	return response.Success(c, post)
}

// Delete removes the caller's own post
func (h *HelpWantedHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return response.BadRequest(c, "Invalid post ID")
	}

	var post model.HelpWantedPost
	err = h.db.WithContext(c.Context()).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Post not found")
		}
		log.Printf("help wanted: delete lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to delete post")
	}

	role, _ := middleware.GetUserRole(c)
	if post.CreatedBy != userID && role != model.RoleAdmin {
		return response.Forbidden(c, "You can only delete your own posts")
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.HelpWantedComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		log.Printf("help wanted: delete failed: %v", err)
		return response.InternalServerError(c, "Failed to delete post")
	}

	return response.NoContent(c)
}

// CommentRequest is the body for a help-wanted comment
type CommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=5000"`
	ParentID *uint  `json:"parent_id"`
}

// Comment replies to a help-wanted post
func (h *HelpWantedHandler) Comment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return response.BadRequest(c, "Invalid post ID")
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var post model.HelpWantedPost
	err = h.db.WithContext(c.Context()).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Post not found")
		}
		log.Printf("help wanted: comment lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to add comment")
	}

	if req.ParentID != nil {
		var parent model.HelpWantedComment
		err = h.db.WithContext(c.Context()).
			Where("id = ? AND post_id = ?", *req.ParentID, post.ID).
			First(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "Parent comment not found")
			}
			log.Printf("help wanted: parent comment lookup failed: %v", err)
			return response.InternalServerError(c, "Failed to add comment")
		}
	}

	comment := model.HelpWantedComment{
		PostID:    post.ID,
		Content:   req.Content,
		ParentID:  req.ParentID,
		CreatedBy: userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&comment).Error; err != nil {
		log.Printf("help wanted: create comment failed: %v", err)
		return response.InternalServerError(c, "Failed to add comment")
	}

	return response.Created(c, comment)
}
