package support

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

// SupportHandler handles member-facing support ticket requests
type SupportHandler struct {
	db *gorm.DB
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(db *gorm.DB) *SupportHandler {
	return &SupportHandler{db: db}
}

// TicketRequest is the create body for a support ticket
type TicketRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required,min=1,max=10000"`
	Category    string `json:"category" validate:"required,oneof=bug account content other"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Create opens a support ticket
func (h *SupportHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	ticket := model.SupportTicket{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		Status:      model.TicketOpen,
		Priority:    "normal",
		IsAnonymous: req.IsAnonymous,
		CreatedBy:   userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&ticket).Error; err != nil {
		log.Printf("support: create ticket failed: %v", err)
		return response.InternalServerError(c, "Failed to open ticket")
	}

	return response.Created(c, ticket)
}

// MyTickets lists the caller's tickets
func (h *SupportHandler) MyTickets(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var tickets []model.SupportTicket
	err := h.db.WithContext(c.Context()).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		log.Printf("support: my tickets failed: %v", err)
		return response.InternalServerError(c, "Failed to load tickets")
	}

	return response.Success(c, tickets)
}

// Get returns one of the caller's tickets with its public messages.
// Internal admin notes are filtered out.
func (h *SupportHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var ticket model.SupportTicket
	err = h.db.WithContext(c.Context()).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_internal_note = ?", false).Order("created_at ASC")
		}).
		Preload("Messages.Author").
		First(&ticket, ticketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		log.Printf("support: get ticket failed: %v", err)
		return response.InternalServerError(c, "Failed to load ticket")
	}

	if ticket.CreatedBy != userID {
		return response.Forbidden(c, "You can only view your own tickets")
	}

	return response.Success(c, ticket)
}

// MessageRequest is a reply on a ticket
type MessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// Reply adds a message to the caller's own ticket
func (h *SupportHandler) Reply(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var ticket model.SupportTicket
	err = h.db.WithContext(c.Context()).First(&ticket, ticketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		log.Printf("support: reply lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to add reply")
	}

	if ticket.CreatedBy != userID {
		return response.Forbidden(c, "You can only reply to your own tickets")
	}

	if ticket.Status == model.TicketClosed {
		return response.BadRequest(c, "This ticket is closed")
	}

	message := model.SupportTicketMessage{
		TicketID:  ticket.ID,
		Content:   req.Content,
		CreatedBy: userID,
	}

	if err := h.db.WithContext(c.Context()).Create(&message).Error; err != nil {
		log.Printf("support: create message failed: %v", err)
		return response.InternalServerError(c, "Failed to add reply")
	}

	return response.Created(c, message)
}
