package handlers

import (
	"github.com/cityforge/cityforge/database"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports service liveness
type HealthHandler struct {
	store database.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check pings the database and reports overall health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database is unreachable")
	}
	return response.Success(c, fiber.Map{"status": "healthy"})
}
