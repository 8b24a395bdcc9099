package admin

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

// ListCategoryRequests returns pending forum category proposals
func (h *AdminHandler) ListCategoryRequests(c *fiber.Ctx) error {
	var requests []model.ForumCategoryRequest
	err := h.db.WithContext(c.Context()).
		Preload("Requester").
		Where("status = ?", model.CategoryRequestPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		log.Printf("admin: category requests failed: %v", err)
		return response.InternalServerError(c, "Failed to load requests")
	}
	return response.Success(c, requests)
}

// ApproveCategoryRequest creates the proposed category and marks the
// request approved
func (h *AdminHandler) ApproveCategoryRequest(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var decision ReviewDecision
	_ = c.BodyParser(&decision)

	var request model.ForumCategoryRequest
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND status = ?", requestID, model.CategoryRequestPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Pending request not found")
		}
		log.Printf("admin: category request lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to approve request")
	}

	category := model.ForumCategory{
		Name:        request.Name,
		Description: request.Description,
		Slug:        model.Slugify(request.Name),
		IsActive:    true,
		CreatedBy:   adminID,
	}

	now := time.Now()
	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		return tx.Model(&request).Updates(map[string]interface{}{
			"status":        model.CategoryRequestApproved,
			"reviewed_by":   adminID,
			"reviewed_date": now,
			"review_notes":  decision.Notes,
			"category_id":   category.ID,
		}).Error
	})
	if err != nil {
		log.Printf("admin: approve category request failed: %v", err)
		return response.InternalServerError(c, "Failed to approve request")
	}

	return response.SuccessWithMessage(c, "Category created", category)
}

// RejectCategoryRequest declines a category proposal
func (h *AdminHandler) RejectCategoryRequest(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	requestID, err := c.ParamsInt("id")
	if err != nil || requestID < 1 {
		return response.BadRequest(c, "Invalid request ID")
	}

	var decision ReviewDecision
	_ = c.BodyParser(&decision)

	var request model.ForumCategoryRequest
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND status = ?", requestID, model.CategoryRequestPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Pending request not found")
		}
		log.Printf("admin: reject category request lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to reject request")
	}

	now := time.Now()
	err = h.db.WithContext(c.Context()).Model(&request).Updates(map[string]interface{}{
		"status":        model.CategoryRequestRejected,
		"reviewed_by":   adminID,
		"reviewed_date": now,
		"review_notes":  decision.Notes,
	}).Error
	if err != nil {
		log.Printf("admin: reject category request failed: %v", err)
		return response.InternalServerError(c, "Failed to reject request")
	}

	return response.SuccessWithMessage(c, "Request rejected", nil)
}

// ListForumReports returns pending moderation reports
func (h *AdminHandler) ListForumReports(c *fiber.Ctx) error {
	query := h.db.WithContext(c.Context()).Preload("Reporter")
	status := c.Query("status", model.ReportPending)
	if status != "all" {
		query = query.Where("status = ?", status)
	}

	var reports []model.ForumReport
	err := query.Order("created_at ASC").Find(&reports).Error
	if err != nil {
		log.Printf("admin: forum reports failed: %v", err)
		return response.InternalServerError(c, "Failed to load reports")
	}
	return response.Success(c, reports)
}

// ReportResolution closes out a moderation report
type ReportResolution struct {
	Status string `json:"status" validate:"required,oneof=reviewed resolved"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// ResolveForumReport marks a report reviewed or resolved
func (h *AdminHandler) ResolveForumReport(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	reportID, err := c.ParamsInt("id")
	if err != nil || reportID < 1 {
		return response.BadRequest(c, "Invalid report ID")
	}

	var req ReportResolution
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var report model.ForumReport
	err = h.db.WithContext(c.Context()).First(&report, reportID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Report not found")
		}
		log.Printf("admin: report lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to resolve report")
	}

	now := time.Now()
	err = h.db.WithContext(c.Context()).Model(&report).Updates(map[string]interface{}{
		"status":           req.Status,
		"reviewed_by":      adminID,
		"reviewed_date":    now,
		"resolution_notes": req.Notes,
	}).Error
	if err != nil {
		log.Printf("admin: resolve report failed: %v", err)
		return response.InternalServerError(c, "Failed to resolve report")
	}

	return response.SuccessWithMessage(c, "Report updated", report)
}

// ThreadModerationRequest toggles pin/lock flags
type ThreadModerationRequest struct {
	IsPinned *bool `json:"is_pinned"`
	IsLocked *bool `json:"is_locked"`
}

// ModerateThread pins or locks a thread
func (h *AdminHandler) ModerateThread(c *fiber.Ctx) error {
	threadID, err := c.ParamsInt("id")
	if err != nil || threadID < 1 {
		return response.BadRequest(c, "Invalid thread ID")
	}

	var req ThreadModerationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var thread model.ForumThread
	err = h.db.WithContext(c.Context()).First(&thread, threadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Thread not found")
		}
		log.Printf("admin: moderate thread lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to moderate thread")
	}

	updates := map[string]interface{}{}
	if req.IsPinned != nil {
		updates["is_pinned"] = *req.IsPinned
	}
	if req.IsLocked != nil {
		updates["is_locked"] = *req.IsLocked
	}
	if len(updates) == 0 {
		return response.Success(c, thread)
	}

	if err := h.db.WithContext(c.Context()).Model(&thread).Updates(updates).Error; err != nil {
		log.Printf("admin: moderate thread failed: %v", err)
		return response.InternalServerError(c, "Failed to moderate thread")
	}

	return response.Success(c, thread)
}
