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

// ListTickets returns support tickets, filterable by status
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := h.db.WithContext(c.Context()).Model(&model.SupportTicket{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("admin: ticket count failed: %v", err)
		return response.InternalServerError(c, "Failed to load tickets")
	}

	var tickets []model.SupportTicket
	err := query.
		Preload("Creator").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&tickets).Error
	if err != nil {
		log.Printf("admin: ticket list failed: %v", err)
		return response.InternalServerError(c, "Failed to load tickets")
	}

	return response.Paginated(c, tickets, response.CalculatePagination(page, perPage, total))
}

// GetTicket returns a ticket with all messages, internal notes
// included
func (h *AdminHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var ticket model.SupportTicket
	err = h.db.WithContext(c.Context()).
		Preload("Creator").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Messages.Author").
		First(&ticket, ticketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		log.Printf("admin: get ticket failed: %v", err)
		return response.InternalServerError(c, "Failed to load ticket")
	}

	return response.Success(c, ticket)
}

// TicketUpdateRequest changes ticket status, priority, or assignment
type TicketUpdateRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority   *string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	AssignedTo *uint   `json:"assigned_to"`
}

// UpdateTicket edits a ticket's workflow fields
func (h *AdminHandler) UpdateTicket(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req TicketUpdateRequest
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
		log.Printf("admin: ticket lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update ticket")
	}

	updates := map[string]interface{}{}
	now := time.Now()
	if req.Status != nil {
		updates["status"] = *req.Status
		switch *req.Status {
		case model.TicketResolved:
			updates["resolved_date"] = now
		case model.TicketClosed:
			updates["closed_date"] = now
		}
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if len(updates) == 0 {
		return response.Success(c, ticket)
	}

	if err := h.db.WithContext(c.Context()).Model(&ticket).Updates(updates).Error; err != nil {
		log.Printf("admin: ticket update failed: %v", err)
		return response.InternalServerError(c, "Failed to update ticket")
	}

	return response.Success(c, ticket)
}

// TicketReplyRequest is an admin reply or internal note
type TicketReplyRequest struct {
	Content        string `json:"content" validate:"required,min=1,max=10000"`
	IsInternalNote bool   `json:"is_internal_note"`
}

// ReplyTicket adds an admin message to a ticket
func (h *AdminHandler) ReplyTicket(c *fiber.Ctx) error {
	adminID, _ := middleware.GetUserID(c)

	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID < 1 {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req TicketReplyRequest
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
		log.Printf("admin: ticket reply lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to add reply")
	}

	message := model.SupportTicketMessage{
		TicketID:       ticket.ID,
		Content:        req.Content,
		IsInternalNote: req.IsInternalNote,
		CreatedBy:      adminID,
	}

	if err := h.db.WithContext(c.Context()).Create(&message).Error; err != nil {
		log.Printf("admin: ticket reply failed: %v", err)
		return response.InternalServerError(c, "Failed to add reply")
	}

	return response.Created(c, message)
}
