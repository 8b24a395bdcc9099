package admin

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/response"
	"github.com/cityforge/cityforge/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookRequest is the create/update body for a webhook endpoint
type WebhookRequest struct {
	Name               string            `json:"name" validate:"required,min=1,max=100"`
	URL                string            `json:"url" validate:"required,url,max=500"`
	Secret             string            `json:"secret" validate:"max=255"`
	Enabled            *bool             `json:"enabled"`
	Events             []string          `json:"events" validate:"required,min=1"`
	Headers            map[string]string `json:"headers"`
	MaxRetries         *int              `json:"max_retries" validate:"omitempty,min=0,max=10"`
	RetryDelaySecs     *int              `json:"retry_delay_secs" validate:"omitempty,min=1,max=300"`
	ExponentialBackoff *bool             `json:"exponential_backoff"`
	TimeoutSecs        *int              `json:"timeout_secs" validate:"omitempty,min=1,max=60"`
}

func validateEvents(events []string) error {
	for _, event := range events {
		known := false
		for _, k := range model.KnownEvents {
			if event == k {
				known = true
				break
			}
		}
		if !known {
			return errors.New("unknown event type: " + event)
		}
	}
	return nil
}

// ListWebhooks returns all configured webhook endpoints
func (h *AdminHandler) ListWebhooks(c *fiber.Ctx) error {
	var endpoints []model.WebhookEndpoint
	err := h.db.WithContext(c.Context()).Order("name ASC").Find(&endpoints).Error
	if err != nil {
		log.Printf("admin: webhook list failed: %v", err)
		return response.InternalServerError(c, "Failed to load webhooks")
	}
	return response.Success(c, endpoints)
}

// CreateWebhook registers a new webhook endpoint
func (h *AdminHandler) CreateWebhook(c *fiber.Ctx) error {
	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if err := validateEvents(req.Events); err != nil {
		return response.BadRequest(c, err.Error())
	}

	endpoint := model.WebhookEndpoint{
		Name:               strings.TrimSpace(req.Name),
		URL:                req.URL,
		Secret:             req.Secret,
		Enabled:            true,
		MaxRetries:         3,
		RetryDelaySecs:     5,
		ExponentialBackoff: true,
		TimeoutSecs:        10,
	}
	applyWebhookOptions(&endpoint, &req)

	if err := h.db.WithContext(c.Context()).Create(&endpoint).Error; err != nil {
		log.Printf("admin: webhook create failed: %v", err)
		return response.InternalServerError(c, "Failed to create webhook")
	}

	return response.Created(c, endpoint)
}

// UpdateWebhook edits a webhook endpoint. An empty secret in the
// request keeps the stored one.
func (h *AdminHandler) UpdateWebhook(c *fiber.Ctx) error {
	endpointID, err := c.ParamsInt("id")
	if err != nil || endpointID < 1 {
		return response.BadRequest(c, "Invalid webhook ID")
	}

	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	validator := validation.NewValidator()
	if err := validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if err := validateEvents(req.Events); err != nil {
		return response.BadRequest(c, err.Error())
	}

	var endpoint model.WebhookEndpoint
	err = h.db.WithContext(c.Context()).First(&endpoint, endpointID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Webhook not found")
		}
		log.Printf("admin: webhook lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to update webhook")
	}

	endpoint.Name = strings.TrimSpace(req.Name)
	endpoint.URL = req.URL
	if req.Secret != "" {
		endpoint.Secret = req.Secret
	}
	applyWebhookOptions(&endpoint, &req)

	if err := h.db.WithContext(c.Context()).Save(&endpoint).Error; err != nil {
		log.Printf("admin: webhook update failed: %v", err)
		return response.InternalServerError(c, "Failed to update webhook")
	}

	return response.Success(c, endpoint)
}

// DeleteWebhook removes a webhook endpoint and its delivery history
func (h *AdminHandler) DeleteWebhook(c *fiber.Ctx) error {
	endpointID, err := c.ParamsInt("id")
	if err != nil || endpointID < 1 {
		return response.BadRequest(c, "Invalid webhook ID")
	}

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint_id = ?", endpointID).Delete(&model.WebhookDelivery{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.WebhookEndpoint{}, endpointID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Webhook not found")
		}
		log.Printf("admin: webhook delete failed: %v", err)
		return response.InternalServerError(c, "Failed to delete webhook")
	}

	return response.NoContent(c)
}

// TestWebhook fires a synthetic event at one endpoint so admins can
// verify connectivity and signature handling
func (h *AdminHandler) TestWebhook(c *fiber.Ctx) error {
	endpointID, err := c.ParamsInt("id")
	if err != nil || endpointID < 1 {
		return response.BadRequest(c, "Invalid webhook ID")
	}

	var endpoint model.WebhookEndpoint
	err = h.db.WithContext(c.Context()).First(&endpoint, endpointID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Webhook not found")
		}
		log.Printf("admin: webhook test lookup failed: %v", err)
		return response.InternalServerError(c, "Failed to test webhook")
	}

	events := endpoint.EventTypes()
	if len(events) == 0 {
		return response.BadRequest(c, "Webhook has no subscribed events")
	}

	h.dispatcher.DispatchTo(endpoint, events[0], fiber.Map{
		"test":      true,
		"timestamp": time.Now().UTC(),
	})

	return response.SuccessWithMessage(c, "Test delivery queued", nil)
}

// ListWebhookDeliveries returns recent delivery outcomes for an
// endpoint, newest first
func (h *AdminHandler) ListWebhookDeliveries(c *fiber.Ctx) error {
	endpointID, err := c.ParamsInt("id")
	if err != nil || endpointID < 1 {
		return response.BadRequest(c, "Invalid webhook ID")
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var deliveries []model.WebhookDelivery
	err = h.db.WithContext(c.Context()).
		Where("endpoint_id = ?", endpointID).
		Order("created_at DESC").
		Limit(limit).
		Find(&deliveries).Error
	if err != nil {
		log.Printf("admin: webhook deliveries failed: %v", err)
		return response.InternalServerError(c, "Failed to load deliveries")
	}

	return response.Success(c, deliveries)
}

func applyWebhookOptions(endpoint *model.WebhookEndpoint, req *WebhookRequest) {
	if events, err := marshalJSON(req.Events); err == nil {
		endpoint.Events = events
	}
	if req.Headers != nil {
		if headers, err := marshalJSON(req.Headers); err == nil {
			endpoint.Headers = headers
		}
	}
	if req.Enabled != nil {
		endpoint.Enabled = *req.Enabled
	}
	if req.MaxRetries != nil {
		endpoint.MaxRetries = *req.MaxRetries
	}
	if req.RetryDelaySecs != nil {
		endpoint.RetryDelaySecs = *req.RetryDelaySecs
	}
	if req.ExponentialBackoff != nil {
		endpoint.ExponentialBackoff = *req.ExponentialBackoff
	}
	if req.TimeoutSecs != nil {
		endpoint.TimeoutSecs = *req.TimeoutSecs
	}
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
