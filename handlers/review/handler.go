package review

import (
	"errors"
	"log"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/services"
	"github.com/cityforge/cityforge/services/webhook"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReviewHandler handles business review requests
type ReviewHandler struct {
	db         *gorm.DB
	dispatcher *webhook.Dispatcher
	email      *services.EmailService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(db *gorm.DB, dispatcher *webhook.Dispatcher, email *services.EmailService) *ReviewHandler {
	return &ReviewHandler{db: db, dispatcher: dispatcher, email: email}
}

// ReviewRequest is the create/update body for a review
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"max=200"`
	Comment string `json:"comment" validate:"max=5000"`
}

// List returns approved reviews for a card, newest first
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var reviews []model.Review
	err = h.db.WithContext(c.Context()).
		Preload("User").
		Where("card_id = ? AND approved = ?", cardID, true).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		log.Printf("reviews: list failed: %v", err)
		return response.InternalServerError(c, "Failed to load reviews")
	}

	return response.Success(c, reviews)
}

// Summary returns the average rating and review count for a card
func (h *ReviewHandler) Summary(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var summary struct {
		Average float64 `json:"average_rating"`
		Count   int64   `json:"review_count"`
	}
	err = h.db.WithContext(c.Context()).Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("card_id = ? AND approved = ?", cardID, true).
		Scan(&summary).Error
	if err != nil {
		log.Printf("reviews: summary failed: %v", err)
		return response.InternalServerError(c, "Failed to load review summary")
	}

	var buckets []struct {
		Rating int
		Count  int64
	}
	err = h.db.WithContext(c.Context()).Model(&model.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("card_id = ? AND approved = ?", cardID, true).
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		log.Printf("reviews: summary histogram failed: %v", err)
		return response.InternalServerError(c, "Failed to load review summary")
	}

	histogram := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, b := range buckets {
		if b.Rating >= 1 && b.Rating <= 5 {
			histogram[b.Rating] = b.Count
		}
	}

	return response.Success(c, fiber.Map{
		"average_rating": summary.Average,
		"review_count":   summary.Count,
		"histogram":      histogram,
	})
}

// Create adds a review for a card. A user may review each business
// only once; a second attempt conflicts rather than overwriting.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	cardID, err := c.ParamsInt("id")
	if err != nil || cardID < 1 {
		return response.BadRequest(c, "Invalid business ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var card model.Card
	err = h.db.WithContext(c.Context()).
		Where("id = ? AND approved = ?", cardID, true).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Business not found")
		}
		log.Printf("reviews: card lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to create review")
	}

	var existing model.Review
	err = h.db.WithContext(c.Context()).
		Where("card_id = ? AND user_id = ?", cardID, userID).
		First(&existing).Error
	if err == nil {
		return response.Conflict(c, "You have already reviewed this business")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("reviews: duplicate check failed: %v", err)
		return response.InternalServerError(c, "Failed to create review")
	}

	review := model.Review{
		CardID:   uint(cardID),
		UserID:   userID,
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
		Approved: true,
	}

	if err := h.db.WithContext(c.Context()).Create(&review).Error; err != nil {
		log.Printf("reviews: create failed: %v", err)
		return response.InternalServerError(c, "Failed to create review")
	}

	return response.Created(c, review)
}

// Update edits the caller's own review
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID < 1 {
		return response.BadRequest(c, "Invalid review ID")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var review model.Review
	err = h.db.WithContext(c.Context()).First(&review, reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Review not found")
		}
		log.Printf("reviews: update lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update review")
	}

	if review.UserID != userID {
		return response.Forbidden(c, "You can only edit your own reviews")
	}

	updates := map[string]interface{}{
		"rating":  req.Rating,
		"title":   req.Title,
		"comment": req.Comment,
	}
	if err := h.db.WithContext(c.Context()).Model(&review).Updates(updates).Error; err != nil {
		log.Printf("reviews: update failed: %v", err)
		return response.InternalServerError(c, "Failed to update review")
	}

	return response.Success(c, review)
}

// Delete removes the caller's own review
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

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
		log.Printf("reviews: delete lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to delete review")
	}

	if review.UserID != userID {
		return response.Forbidden(c, "You can only delete your own reviews")
	}

	if err := h.db.WithContext(c.Context()).Delete(&review).Error; err != nil {
		log.Printf("reviews: delete failed: %v", err)
		return response.InternalServerError(c, "Failed to delete review")
	}

	return response.NoContent(c)
}

// MyReviews lists the caller's reviews with their businesses
func (h *ReviewHandler) MyReviews(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var reviews []model.Review
	err := h.db.WithContext(c.Context()).
		Preload("Card").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		log.Printf("reviews: my reviews failed: %v", err)
		return response.InternalServerError(c, "Failed to load reviews")
	}

	return response.Success(c, reviews)
}
