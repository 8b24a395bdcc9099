package admin

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReviewDecision carries optional notes for an approve/reject action
type ReviewDecision struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ListSubmissions returns pending business submissions
func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	var cards []model.Card
	err := h.db.WithContext(c.Context()).
		Preload("Tags").
		Preload("Creator").
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&cards).Error
	if err != nil {
		log.Printf("admin: submissions list failed: %v", err)
		return response.InternalServerError(c, "Failed to load submissions")
	}
	return response.Success(c, cards)
}

// ApproveSubmission publishes a pending submission
func (h *AdminHandler) ApproveSubmission(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid submission ID")
	}

	var req ReviewDecision
	_ = c.BodyParser(&req)

	var card model.Card
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND approved = ?", cardID, false).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Pending submission not found")
		}
		log.Printf("admin: approve submission lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to approve submission")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"approved":      true,
		"approved_by":   adminID,
		"approved_date": now,
		"review_notes":  req.Notes,
	}
	if err := h.db.WithContext(c.Context()).Model(&card).Updates(updates).Error; err != nil {
		log.Printf("admin: approve submission failed: %v", err)
		return response.InternalServerError(c, "Failed to approve submission")
	}

	h.invalidateCache()
	return response.SuccessWithMessage(c, "Submission approved", card)
}

// RejectSubmission discards a pending submission
func (h *AdminHandler) RejectSubmission(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid submission ID")
	}

	var req ReviewDecision
	_ = c.BodyParser(&req)

	var card model.Card
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND approved = ?", cardID, false).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Pending submission not found")
		}
		log.Printf("admin: reject submission lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to reject submission")
	}

	if err := h.db.WithContext(c.Context()).Delete(&card).Error; err != nil {
		log.Printf("admin: reject submission failed: %v", err)
		return response.InternalServerError(c, "Failed to reject submission")
	}

	return response.SuccessWithMessage(c, "Submission rejected", nil)
}

// ListModifications returns pending suggested edits
func (h *AdminHandler) ListModifications(c *fiber.Ctx) error {
	var mods []model.CardModification
	err := h.db.WithContext(c.Context()).
		Preload("Submitter").
		Where("status = ?", model.ModificationPending).
		Order("created_at ASC").
		Find(&mods).Error
	if err != nil {
		log.Printf("admin: modifications list failed: %v", err)
		return response.InternalServerError(c, "Failed to load modifications")
	}
	return response.Success(c, mods)
}

// ApproveModification applies a suggested edit to its card
func (h *AdminHandler) ApproveModification(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	modID, err := c.ParamsInt("id")
	if err != nil || modID < 1 {
		return response.BadRequest(c, "Invalid modification ID")
	}

	var req ReviewDecision
	_ = c.BodyParser(&req)

	var mod model.CardModification
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND status = ?", modID, model.ModificationPending).
		First(&mod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Pending modification not found")
		}
		log.Printf("admin: approve modification lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to approve modification")
	}

	var card model.Card
	err = h.db.WithContext(c.Context()).First(&card, mod.CardID).Error
	if err != nil {
		log.Printf("admin: modification card lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to approve modification")
	}

	tags, err := h.resolveTags(c, splitTagsText(mod.TagsText))
	if err != nil {
		log.Printf("admin: modification tag resolution failed: %v", err)
		return response.InternalServerError(c, "Failed to approve modification")
	}

	now := time.Now()
	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		cardUpdates := map[string]interface{}{
			"name":                 mod.Name,
			"description":          mod.Description,
			"website_url":          mod.WebsiteURL,
			"phone_number":         mod.PhoneNumber,
			"email":                mod.Email,
			"address":              mod.Address,
			"address_override_url": mod.AddressOverrideURL,
			"contact_name":         mod.ContactName,
		}
		if mod.ImageURL != "" {
			cardUpdates["image_url"] = mod.ImageURL
		}
		if err := tx.Model(&card).Updates(cardUpdates).Error; err != nil {
			return err
		}
		if mod.TagsText != "" {
			if err := tx.Model(&card).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return tx.Model(&mod).Updates(map[string]interface{}{
			"status":        model.ModificationApproved,
			"reviewed_by":   adminID,
			"reviewed_date": now,
			"review_notes":  req.Notes,
		}).Error
	})
	if err != nil {
		log.Printf("admin: approve modification failed: %v", err)
		return response.InternalServerError(c, "Failed to approve modification")
	}

	h.invalidateCache()
	return response.SuccessWithMessage(c, "Modification applied", card)
}

// RejectModification declines a suggested edit
func (h *AdminHandler) RejectModification(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	modID, err := c.ParamsInt("id")
	if err != nil || modID < 1 {
		return response.BadRequest(c, "Invalid modification ID")
	}

	var req ReviewDecision
	_ = c.BodyParser(&req)

	var mod model.CardModification
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND status = ?", modID, model.ModificationPending).
		First(&mod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Pending modification not found")
		}
		log.Printf("admin: reject modification lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to reject modification")
	}

	now := time.Now()
	err = h.db.WithContext(c.Context()).Model(&mod).Updates(map[string]interface{}{
		"status":        model.ModificationRejected,
		"reviewed_by":   adminID,
		"reviewed_date": now,
		"review_notes":  req.Notes,
	}).Error
	if err != nil {
		log.Printf("admin: reject modification failed: %v", err)
		return response.InternalServerError(c, "Failed to reject modification")
	}

	return response.SuccessWithMessage(c, "Modification rejected", nil)
}

// ListReportedReviews returns reviews hidden or flagged by reports
func (h *AdminHandler) ListReportedReviews(c *fiber.Ctx) error {
	var reviews []model.Review
	err := h.db.WithContext(c.Context()).
		Preload("Card").
		Preload("User").
		Where("report_count > 0").
		Order("report_count DESC, created_at DESC").
		Find(&reviews).Error
	if err != nil {
		log.Printf("admin: reported reviews failed: %v", err)
		return response.InternalServerError(c, "Failed to load reported reviews")
	}
	return response.Success(c, reviews)
}

// RestoreReview re-approves a reported review and clears its count
func (h *AdminHandler) RestoreReview(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID < 1 {
		return response.BadRequest(c, "Invalid review ID")
	}

	var review model.Review
	err = h.db.WithContext(c.Context()).First(&review, reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Review not found")
		}
		log.Printf("admin: restore review lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to restore review")
	}

	now := time.Now()
	err = h.db.WithContext(c.Context()).Model(&review).Updates(map[string]interface{}{
		"approved":      true,
		"report_count":  0,
		"approved_by":   adminID,
		"approved_date": now,
	}).Error
	if err != nil {
		log.Printf("admin: restore review failed: %v", err)
		return response.InternalServerError(c, "Failed to restore review")
	}

	return response.SuccessWithMessage(c, "Review restored", review)
}

// DeleteReview removes a reported review
func (h *AdminHandler) DeleteReview(c *fiber.Ctx) error {
	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID < 1 {
		return response.BadRequest(c, "Invalid review ID")
	}

	result := h.db.WithContext(c.Context()).Delete(&model.Review{}, reviewID)
	if result.Error != nil {
		log.Printf("admin: delete review failed: %v", result.Error)
		return response.InternalServerError(c, "Failed to delete review")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Review not found")
	}

	return response.NoContent(c)
}

func splitTagsText(text string) []string {
	parts := strings.Split(text, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
