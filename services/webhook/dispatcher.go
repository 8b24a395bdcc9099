package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

const (
	// SignatureHeader carries the HMAC of the request body so
	// receivers can authenticate the payload origin
	SignatureHeader = "X-Webhook-Signature"
	// EventHeader names the event type being delivered
	EventHeader = "X-Webhook-Event"

	defaultTimeout = 10 * time.Second
	defaultDelay   = 5 * time.Second
)

// EndpointSource yields the enabled endpoints subscribed to an event
type EndpointSource interface {
	EndpointsForEvent(ctx context.Context, event string) ([]model.WebhookEndpoint, error)
}

// DeliveryRecorder persists per-endpoint dispatch outcomes
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, delivery *model.WebhookDelivery) error
}

type gormEndpointSource struct {
	db *gorm.DB
}

func (s gormEndpointSource) EndpointsForEvent(ctx context.Context, event string) ([]model.WebhookEndpoint, error) {
	var endpoints []model.WebhookEndpoint
	err := s.db.WithContext(ctx).Where("enabled = ?", true).Find(&endpoints).Error
	if err != nil {
		return nil, err
	}

	// Event subscriptions live in a JSON column; filter in process.
	matched := endpoints[:0]
	for _, ep := range endpoints {
		if ep.SubscribesTo(event) {
			matched = append(matched, ep)
		}
	}
	return matched, nil
}

type gormDeliveryRecorder struct {
	db *gorm.DB
}

func (r gormDeliveryRecorder) RecordDelivery(ctx context.Context, delivery *model.WebhookDelivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

// Payload is the JSON body POSTed to each endpoint
type Payload struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Dispatcher fans domain events out to admin-configured webhook
// endpoints. Delivery is best-effort: failures are retried per
// endpoint policy, then logged and dropped. A broken endpoint never
// affects the others or the action that triggered the event.
type Dispatcher struct {
	source   EndpointSource
	recorder DeliveryRecorder
	client   *http.Client
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher backed by the database
func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{
		source:   gormEndpointSource{db: db},
		recorder: gormDeliveryRecorder{db: db},
		client:   &http.Client{},
	}
}

// Dispatch notifies every enabled endpoint subscribed to the event.
// It returns immediately; deliveries run concurrently, one goroutine
// per endpoint. Errors never propagate to the caller.
func (d *Dispatcher) Dispatch(event string, data interface{}) {
	ctx := context.Background()

	endpoints, err := d.source.EndpointsForEvent(ctx, event)
	if err != nil {
		log.Printf("webhook: failed to load endpoints for %s: %v", event, err)
		return
	}
	if len(endpoints) == 0 {
		return
	}

	body, err := json.Marshal(Payload{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		log.Printf("webhook: failed to encode payload for %s: %v", event, err)
		return
	}

	for _, endpoint := range endpoints {
		ep := endpoint
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(ctx, ep, event, body)
		}()
	}
}

// DispatchTo sends an event to a single endpoint regardless of its
// subscriptions or enabled flag. Used by the admin test-fire action.
func (d *Dispatcher) DispatchTo(ep model.WebhookEndpoint, event string, data interface{}) {
	body, err := json.Marshal(Payload{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		log.Printf("webhook: failed to encode payload for %s: %v", event, err)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(context.Background(), ep, event, body)
	}()
}

// Wait blocks until all in-flight deliveries finish. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// deliver attempts delivery to a single endpoint honoring its retry
// policy: maxRetries=N means exactly N+1 attempts.
func (d *Dispatcher) deliver(ctx context.Context, ep model.WebhookEndpoint, event string, body []byte) {
	delay := time.Duration(ep.RetryDelaySecs) * time.Second
	if delay <= 0 {
		delay = defaultDelay
	}

	var backoff retry.Backoff
	if ep.ExponentialBackoff {
		backoff = retry.NewExponential(delay)
	} else {
		backoff = retry.NewConstant(delay)
	}
	if ep.MaxRetries < 0 {
		ep.MaxRetries = 0
	}
	backoff = retry.WithMaxRetries(uint64(ep.MaxRetries), backoff)

	attempts := 0
	lastStatus := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		status, err := d.attempt(ctx, ep, event, body)
		lastStatus = status
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	delivery := &model.WebhookDelivery{
		EndpointID: ep.ID,
		Event:      event,
		Success:    err == nil,
		Attempts:   attempts,
		StatusCode: lastStatus,
	}

	if err != nil {
		delivery.Error = err.Error()
		log.Printf("webhook: giving up on endpoint %d (%s) after %d attempts: %v", ep.ID, ep.URL, attempts, err)
	}

	if d.recorder != nil {
		if recErr := d.recorder.RecordDelivery(ctx, delivery); recErr != nil {
			log.Printf("webhook: failed to record delivery for endpoint %d: %v", ep.ID, recErr)
		}
	}
}

// attempt performs one POST to the endpoint, bounded by its timeout
func (d *Dispatcher) attempt(ctx context.Context, ep model.WebhookEndpoint, event string, body []byte) (int, error) {
	timeout := time.Duration(ep.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, event)
	for key, value := range ep.CustomHeaders() {
		req.Header.Set(key, value)
	}
	if ep.Secret != "" {
		req.Header.Set(SignatureHeader, ComputeSignature(ep.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	return resp.StatusCode, nil
}

// ComputeSignature returns the signature header value for a payload:
// "sha256=" followed by the hex HMAC-SHA256 of the body.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature header against the body
// in constant time. Exposed for receiver implementations and tests.
func VerifySignature(secret string, body []byte, header string) bool {
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(header))
}
