package forum

import (
	"errors"
	"log"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PostRequest is the create/update body for a forum post
type PostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=20000"`
}

// CreatePost replies to a thread. Locked threads accept no replies.
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	threadID, err := c.ParamsInt("id")
	if err != nil || threadID < 1 {
		return response.BadRequest(c, "Invalid thread ID")
	}

	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var thread model.ForumThread
	err = h.db.WithContext(c.Context()).First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Thread not found")
		}
		log.Printf("forum: post thread lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to create post")
	}

	if thread.IsLocked {
		return response.Forbidden(c, "This thread is locked")
	}

	post := model.ForumPost{
		ThreadID:  thread.ID,
		Content:   req.Content,
		CreatedBy: userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&post).Error; err != nil {
		log.Printf("forum: create post failed: %v", err)
		return response.InternalServerError(c, "Failed to create post")
	}

	// Bump the thread so it sorts to the top of its category.
	if err := h.db.WithContext(c.Context()).Model(&thread).Update("updated_at", time.Now()).Error; err != nil {
		log.Printf("forum: thread bump failed: %v", err)
	}

	return response.Created(c, post)
}

// UpdatePost edits the caller's own post
func (h *ForumHandler) UpdatePost(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return response.BadRequest(c, "Invalid post ID")
	}

	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var post model.ForumPost
	err = h.db.WithContext(c.Context()).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Post not found")
		}
		log.Printf("forum: update post lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update post")
	}

	if post.CreatedBy != userID {
		return response.Forbidden(c, "You can only edit your own posts")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"content":     req.Content,
		"edited_by":   userID,
		"edited_date": now,
	}
	if err := h.db.WithContext(c.Context()).Model(&post).Updates(updates).Error; err != nil {
		log.Printf("forum: update post failed: %v", err)
		return response.InternalServerError(c, "Failed to update post")
	}

	return response.Success(c, post)
}

// DeletePost removes the caller's own post. The opening post cannot
// be deleted without deleting the thread.
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return response.BadRequest(c, "Invalid post ID")
	}

	var post model.ForumPost
	err = h.db.WithContext(c.Context()).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Post not found")
		}
		log.Printf("forum: delete post lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to delete post")
	}

	role, _ := middleware.GetUserRole(c)
	if post.CreatedBy != userID && role != model.RoleAdmin {
		return response.Forbidden(c, "You can only delete your own posts")
	}

	if post.IsFirstPost {
		return response.BadRequest(c, "Delete the thread to remove its opening post")
	}

	if err := h.db.WithContext(c.Context()).Delete(&post).Error; err != nil {
		log.Printf("forum: delete post failed: %v", err)
		return response.InternalServerError(c, "Failed to delete post")
	}

	return response.NoContent(c)
}
