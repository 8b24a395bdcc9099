package admin

import (
	"log"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
)

// DirectoryExport is the portable snapshot of directory content
type DirectoryExport struct {
	ExportedAt time.Time                `json:"exported_at"`
	Cards      []model.Card             `json:"cards"`
	Tags       []model.Tag              `json:"tags"`
	Categories []model.ResourceCategory `json:"resource_categories"`
	Settings   []model.SiteSetting      `json:"settings"`
}

// ExportData returns a full JSON snapshot of directory content for
// backup or migration
func (h *AdminHandler) ExportData(c *fiber.Ctx) error {
	export := DirectoryExport{ExportedAt: time.Now().UTC()}

	if err := h.db.WithContext(c.Context()).Preload("Tags").Find(&export.Cards).Error; err != nil {
		log.Printf("admin: export cards failed: %v", err)
		return response.InternalServerError(c, "Failed to export data")
	}
	if err := h.db.WithContext(c.Context()).Find(&export.Tags).Error; err != nil {
		log.Printf("admin: export tags failed: %v", err)
		return response.InternalServerError(c, "Failed to export data")
	}
	if err := h.db.WithContext(c.Context()).Preload("Items").Find(&export.Categories).Error; err != nil {
		log.Printf("admin: export resources failed: %v", err)
		return response.InternalServerError(c, "Failed to export data")
	}
	if err := h.db.WithContext(c.Context()).Find(&export.Settings).Error; err != nil {
		log.Printf("admin: export settings failed: %v", err)
		return response.InternalServerError(c, "Failed to export data")
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="cityforge-export.json"`)
	return c.JSON(export)
}

// ImportRequest wraps an uploaded snapshot
type ImportRequest struct {
	Cards []ImportCard `json:"cards" validate:"required,min=1,dive"`
}

// ImportCard is one business row in an import payload
type ImportCard struct {
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	Description string   `json:"description"`
	WebsiteURL  string   `json:"website_url"`
	PhoneNumber string   `json:"phone_number"`
	Email       string   `json:"email"`
	Address     string   `json:"address"`
	ContactName string   `json:"contact_name"`
	Featured    bool     `json:"featured"`
	Tags        []string `json:"tags"`
}

// ImportData bulk-creates businesses from an uploaded snapshot. Rows
// whose name already exists are skipped, not overwritten.
func (h *AdminHandler) ImportData(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid import payload")
	}
	if len(req.Cards) == 0 {
		return response.BadRequest(c, "Import payload contains no businesses")
	}

	imported := 0
	skipped := 0
	for _, row := range req.Cards {
		if row.Name == "" {
			skipped++
			continue
		}

		var count int64
		err := h.db.WithContext(c.Context()).Model(&model.Card{}).
			Where("LOWER(name) = LOWER(?)", row.Name).
			Count(&count).Error
		if err != nil {
			log.Printf("admin: import duplicate check failed: %v", err)
			return response.InternalServerError(c, "Import failed")
		}
		if count > 0 {
			skipped++
			continue
		}

		tags, err := h.resolveTags(c, row.Tags)
		if err != nil {
			log.Printf("admin: import tag resolution failed: %v", err)
			return response.InternalServerError(c, "Import failed")
		}

		card := model.Card{
			Name:        row.Name,
			Description: row.Description,
			WebsiteURL:  row.WebsiteURL,
			PhoneNumber: row.PhoneNumber,
			Email:       row.Email,
			Address:     row.Address,
			ContactName: row.ContactName,
			Featured:    row.Featured,
			Approved:    true,
			Tags:        tags,
		}
		if err := h.db.WithContext(c.Context()).Create(&card).Error; err != nil {
			log.Printf("admin: import create failed for %q: %v", row.Name, err)
			return response.InternalServerError(c, "Import failed")
		}
		imported++
	}

	h.invalidateCache()
	return response.Success(c, fiber.Map{
		"imported": imported,
		"skipped":  skipped,
	})
}

// ListAuditLogs returns recent admin actions, newest first
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := h.db.WithContext(c.Context()).Model(&model.AdminAuditLog{})
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("admin: audit log count failed: %v", err)
		return response.InternalServerError(c, "Failed to load audit logs")
	}

	var logs []model.AdminAuditLog
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error
	if err != nil {
		log.Printf("admin: audit log list failed: %v", err)
		return response.InternalServerError(c, "Failed to load audit logs")
	}

	return response.Paginated(c, logs, response.CalculatePagination(page, perPage, total))
}

// Stats returns headline counts for the admin dashboard
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	counts := map[string]int64{}
	tables := map[string]interface{}{
		"users":               &model.User{},
		"businesses":          &model.Card{},
		"reviews":             &model.Review{},
		"forum_threads":       &model.ForumThread{},
		"open_tickets":        &model.SupportTicket{},
		"pending_submissions": &model.Card{},
	}
	for name, m := range tables {
		query := h.db.WithContext(c.Context()).Model(m)
		switch name {
		case "pending_submissions":
			query = query.Where("approved = ?", false)
		case "open_tickets":
			query = query.Where("status IN ?", []string{model.TicketOpen, model.TicketInProgress})
		case "businesses":
			query = query.Where("approved = ?", true)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			log.Printf("admin: stats count for %s failed: %v", name, err)
			return response.InternalServerError(c, "Failed to load stats")
		}
		counts[name] = count
	}

	var pendingMods int64
	if err := h.db.WithContext(c.Context()).Model(&model.CardModification{}).
		Where("status = ?", model.ModificationPending).
		Count(&pendingMods).Error; err == nil {
		counts["pending_modifications"] = pendingMods
	}

	return response.Success(c, counts)
}
