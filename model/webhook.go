package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Webhook event types dispatched by the notification pipeline
const (
	EventSubmissionCreated   = "submission.created"
	EventModificationCreated = "modification.created"
	EventForumReport         = "forum.report"
	EventCategoryRequest     = "category.request"
)

// KnownEvents lists every event type an endpoint may subscribe to.
var KnownEvents = []string{
	EventSubmissionCreated,
	EventModificationCreated,
	EventForumReport,
	EventCategoryRequest,
}

// WebhookEndpoint is an admin-configured HTTP callback. Events holds
// the subscribed event types, Headers any extra request headers; both
// are stored as JSON columns.
type WebhookEndpoint struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	Name               string         `gorm:"not null;size:100" json:"name"`
	URL                string         `gorm:"not null;size:500" json:"url"`
	Secret             string         `gorm:"size:255" json:"-"`
	Enabled            bool           `gorm:"default:true;index" json:"enabled"`
	Events             datatypes.JSON `gorm:"type:jsonb" json:"events"`
	Headers            datatypes.JSON `gorm:"type:jsonb" json:"headers"`
	MaxRetries         int            `gorm:"default:3" json:"max_retries"`
	RetryDelaySecs     int            `gorm:"default:5" json:"retry_delay_secs"`
	ExponentialBackoff bool           `gorm:"default:true" json:"exponential_backoff"`
	TimeoutSecs        int            `gorm:"default:10" json:"timeout_secs"`
	CreatedAt          time.Time      `json:"created_date"`
	UpdatedAt          time.Time      `json:"updated_date"`
}

func (WebhookEndpoint) TableName() string {
	return "webhook_endpoints"
}

// EventTypes decodes the subscribed event list.
func (w *WebhookEndpoint) EventTypes() []string {
	var events []string
	if len(w.Events) > 0 {
		_ = json.Unmarshal(w.Events, &events)
	}
	return events
}

// SubscribesTo reports whether the endpoint listens for the event type.
func (w *WebhookEndpoint) SubscribesTo(event string) bool {
	for _, e := range w.EventTypes() {
		if e == event {
			return true
		}
	}
	return false
}

// CustomHeaders decodes the extra request headers.
func (w *WebhookEndpoint) CustomHeaders() map[string]string {
	headers := make(map[string]string)
	if len(w.Headers) > 0 {
		_ = json.Unmarshal(w.Headers, &headers)
	}
	return headers
}

// WebhookDelivery records the outcome of one dispatch to one endpoint
type WebhookDelivery struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EndpointID uint      `gorm:"not null;index" json:"endpoint_id"`
	Event      string    `gorm:"type:varchar(50);not null;index" json:"event"`
	Success    bool      `gorm:"not null" json:"success"`
	Attempts   int       `gorm:"not null" json:"attempts"`
	StatusCode int       `json:"status_code"`
	Error      string    `gorm:"type:text" json:"error"`
	CreatedAt  time.Time `gorm:"index" json:"created_date"`

	Endpoint WebhookEndpoint `gorm:"foreignKey:EndpointID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WebhookDelivery) TableName() string {
	return "webhook_deliveries"
}
