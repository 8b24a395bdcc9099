package review

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

// ReportRequest carries the reason a review was flagged
type ReportRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=1000"`
}

// reportHideThreshold is the report count at which a review is pulled
// from public listings pending admin re-approval.
const reportHideThreshold = 3

// Report flags a review as inappropriate. Repeated reports hide the
// review until an admin re-approves it.
func (h *ReviewHandler) Report(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID < 1 {
		return response.BadRequest(c, "Invalid review ID")
	}

	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var review model.Review
	err = h.db.WithContext(c.Context()).Preload("Card").First(&review, reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Review not found")
		}
		log.Printf("reviews: report lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to report review")
	}

	review.ReportCount++
	updates := map[string]interface{}{
		"report_count": review.ReportCount,
	}
	if review.ReportCount >= reportHideThreshold {
		updates["approved"] = false
	}
	if err := h.db.WithContext(c.Context()).Model(&review).Updates(updates).Error; err != nil {
		log.Printf("reviews: report update failed: %v", err)
		return response.InternalServerError(c, "Failed to report review")
	}

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(model.EventForumReport, fiber.Map{
			"target_type": "review",
			"review_id":   review.ID,
			"card_id":     review.CardID,
			"reason":      req.Reason,
			"reported_by": userID,
		})
	}
	if h.email != nil {
		target := fmt.Sprintf("review #%d on %s", review.ID, review.Card.Name)
		if err := h.email.NotifyReport(target, req.Reason); err != nil {
			log.Printf("reviews: report notification failed: %v", err)
		}
	}

	return response.SuccessWithMessage(c, "Review reported", nil)
}
