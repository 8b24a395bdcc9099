package forum

import (
	"errors"
	"fmt"
	"log"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ForumReportRequest flags a thread or post for moderation
type ForumReportRequest struct {
	PostID  *uint  `json:"post_id"`
	Reason  string `json:"reason" validate:"required,oneof=spam abuse off_topic other"`
	Details string `json:"details" validate:"max=2000"`
}

// Report flags a thread, or a specific post within it, for moderator
// attention. Admins are notified over webhooks and email.
func (h *ForumHandler) Report(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	threadID, err := c.ParamsInt("id")
	if err != nil || threadID < 1 {
		return response.BadRequest(c, "Invalid thread ID")
	}

	var req ForumReportRequest
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
		log.Printf("forum: report thread lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to submit report")
	}

	target := fmt.Sprintf("thread %q", thread.Title)
	if req.PostID != nil {
		var post model.ForumPost
		err = h.db.WithContext(c.Context()).
			Where("id = ? AND thread_id = ?", *req.PostID, thread.ID).
			First(&post).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "Post not found in this thread")
			}
			log.Printf("forum: report post lookup failed: %v", err)
			return response.InternalServerError(c, "Failed to submit report")
		}
		target = fmt.Sprintf("post #%d in thread %q", post.ID, thread.Title)
	}

	report := model.ForumReport{
		ThreadID:   thread.ID,
		PostID:     req.PostID,
		Reason:     req.Reason,
		Details:    req.Details,
		Status:     model.ReportPending,
		ReportedBy: userID,
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		if req.PostID != nil {
			return tx.Model(&model.ForumPost{}).
				Where("id = ?", *req.PostID).
				UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error
		}
		return tx.Model(&thread).
			UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error
	})
	if err != nil {
		log.Printf("forum: create report failed: %v", err)
		return response.InternalServerError(c, "Failed to submit report")
	}

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(model.EventForumReport, fiber.Map{
			"report_id":   report.ID,
			"thread_id":   thread.ID,
			"post_id":     req.PostID,
			"reason":      req.Reason,
			"reported_by": userID,
		})
	}
	if h.email != nil {
		if err := h.email.NotifyReport(target, req.Reason); err != nil {
			log.Printf("forum: report notification failed: %v", err)
		}
	}

	return response.Created(c, report)
}
