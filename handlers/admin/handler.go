package admin

import (
	"github.com/cityforge/cityforge/services/webhook"
	"github.com/cityforge/cityforge/utils/cache"
	"gorm.io/gorm"
)

// AdminHandler handles the admin moderation and configuration surface.
// All routes behind it require the admin role and are audit-logged.
type AdminHandler struct {
	db         *gorm.DB
	cache      *cache.MemoryCache
	dispatcher *webhook.Dispatcher
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, memCache *cache.MemoryCache, dispatcher *webhook.Dispatcher) *AdminHandler {
	return &AdminHandler{
		db:         db,
		cache:      memCache,
		dispatcher: dispatcher,
	}
}

// invalidateCache drops cached public responses after a change that
// affects what anonymous endpoints serve.
func (h *AdminHandler) invalidateCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}
