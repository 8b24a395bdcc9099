package card

import (
	"github.com/cityforge/cityforge/services"
	"github.com/cityforge/cityforge/services/webhook"
	"github.com/cityforge/cityforge/utils/cache"
	"gorm.io/gorm"
)

// CardHandler handles business directory requests
type CardHandler struct {
	db         *gorm.DB
	cache      *cache.MemoryCache
	dispatcher *webhook.Dispatcher
	email      *services.EmailService
}

// NewCardHandler creates a new card handler
func NewCardHandler(db *gorm.DB, memCache *cache.MemoryCache, dispatcher *webhook.Dispatcher, email *services.EmailService) *CardHandler {
	return &CardHandler{
		db:         db,
		cache:      memCache,
		dispatcher: dispatcher,
		email:      email,
	}
}

// InvalidateCache drops all cached listing responses. Called after any
// write that changes what the public listing endpoints would return.
func (h *CardHandler) InvalidateCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}
