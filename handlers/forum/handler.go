package forum

import (
	"github.com/cityforge/cityforge/services"
	"github.com/cityforge/cityforge/services/webhook"
	"gorm.io/gorm"
)

// ForumHandler handles discussion forum requests
type ForumHandler struct {
	db         *gorm.DB
	dispatcher *webhook.Dispatcher
	email      *services.EmailService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(db *gorm.DB, dispatcher *webhook.Dispatcher, email *services.EmailService) *ForumHandler {
	return &ForumHandler{db: db, dispatcher: dispatcher, email: email}
}
