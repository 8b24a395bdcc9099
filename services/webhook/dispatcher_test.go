package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cityforge/cityforge/model"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type staticSource struct {
	endpoints []model.WebhookEndpoint
}

func (s staticSource) EndpointsForEvent(_ context.Context, event string) ([]model.WebhookEndpoint, error) {
	var matched []model.WebhookEndpoint
	for _, ep := range s.endpoints {
		if ep.Enabled && ep.SubscribesTo(event) {
			matched = append(matched, ep)
		}
	}
	return matched, nil
}

type memoryRecorder struct {
	mu         sync.Mutex
	deliveries []model.WebhookDelivery
}

func (r *memoryRecorder) RecordDelivery(_ context.Context, delivery *model.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, *delivery)
	return nil
}

func (r *memoryRecorder) byEndpoint(id uint) (model.WebhookDelivery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.EndpointID == id {
			return d, true
		}
	}
	return model.WebhookDelivery{}, false
}

func mustJSON(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(data)
}

func testEndpoint(t *testing.T, id uint, url string, events ...string) model.WebhookEndpoint {
	t.Helper()
	return model.WebhookEndpoint{
		ID:             id,
		Name:           "test endpoint",
		URL:            url,
		Enabled:        true,
		Events:         mustJSON(t, events),
		MaxRetries:     0,
		RetryDelaySecs: 1,
		TimeoutSecs:    5,
	}
}

func newTestDispatcher(source EndpointSource, recorder DeliveryRecorder) *Dispatcher {
	return &Dispatcher{
		source:   source,
		recorder: recorder,
		client:   &http.Client{},
	}
}

func TestDispatch_DeliversSignedPayload(t *testing.T) {
	var (
		mu       sync.Mutex
		gotBody  []byte
		gotEvent string
		gotSig   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotBody = body
		gotEvent = r.Header.Get(EventHeader)
		gotSig = r.Header.Get(SignatureHeader)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ep := testEndpoint(t, 1, server.URL, model.EventSubmissionCreated)
	ep.Secret = "hook-secret"

	recorder := &memoryRecorder{}
	d := newTestDispatcher(staticSource{endpoints: []model.WebhookEndpoint{ep}}, recorder)

	d.Dispatch(model.EventSubmissionCreated, map[string]interface{}{"card_id": 7})
	d.Wait()

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, model.EventSubmissionCreated, gotEvent)
	require.True(t, VerifySignature("hook-secret", gotBody, gotSig))
	require.False(t, VerifySignature("wrong-secret", gotBody, gotSig))

	var payload Payload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Equal(t, model.EventSubmissionCreated, payload.Event)
	require.False(t, payload.Timestamp.IsZero())

	delivery, ok := recorder.byEndpoint(1)
	require.True(t, ok)
	require.True(t, delivery.Success)
	require.Equal(t, 1, delivery.Attempts)
	require.Equal(t, http.StatusOK, delivery.StatusCode)
}

func TestDispatch_RetriesUntilBudgetExhausted(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ep := testEndpoint(t, 1, server.URL, model.EventForumReport)
	ep.MaxRetries = 3

	recorder := &memoryRecorder{}
	d := newTestDispatcher(staticSource{endpoints: []model.WebhookEndpoint{ep}}, recorder)

	d.Dispatch(model.EventForumReport, nil)
	d.Wait()

	mu.Lock()
	got := attempts
	mu.Unlock()

	// maxRetries=3 means exactly 4 attempts: the initial one plus
	// three retries.
	require.Equal(t, 4, got)

	delivery, ok := recorder.byEndpoint(1)
	require.True(t, ok)
	require.False(t, delivery.Success)
	require.Equal(t, 4, delivery.Attempts)
	require.Equal(t, http.StatusBadGateway, delivery.StatusCode)
	require.NotEmpty(t, delivery.Error)
}

func TestDispatch_SucceedsAfterTransientFailure(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ep := testEndpoint(t, 1, server.URL, model.EventCategoryRequest)
	ep.MaxRetries = 5

	recorder := &memoryRecorder{}
	d := newTestDispatcher(staticSource{endpoints: []model.WebhookEndpoint{ep}}, recorder)

	d.Dispatch(model.EventCategoryRequest, nil)
	d.Wait()

	delivery, ok := recorder.byEndpoint(1)
	require.True(t, ok)
	require.True(t, delivery.Success)
	require.Equal(t, 2, delivery.Attempts)
}

func TestDispatch_BrokenEndpointDoesNotAffectHealthyOne(t *testing.T) {
	var (
		mu      sync.Mutex
		healthy int
	)
	healthyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		healthy++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer healthyServer.Close()

	broken := testEndpoint(t, 1, "http://127.0.0.1:9/unreachable", model.EventModificationCreated)
	good := testEndpoint(t, 2, healthyServer.URL, model.EventModificationCreated)

	recorder := &memoryRecorder{}
	d := newTestDispatcher(staticSource{endpoints: []model.WebhookEndpoint{broken, good}}, recorder)

	d.Dispatch(model.EventModificationCreated, nil)
	d.Wait()

	mu.Lock()
	require.Equal(t, 1, healthy)
	mu.Unlock()

	brokenDelivery, ok := recorder.byEndpoint(1)
	require.True(t, ok)
	require.False(t, brokenDelivery.Success)

	goodDelivery, ok := recorder.byEndpoint(2)
	require.True(t, ok)
	require.True(t, goodDelivery.Success)
}

func TestDispatch_FiltersByEventSubscription(t *testing.T) {
	var (
		mu   sync.Mutex
		hits int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ep := testEndpoint(t, 1, server.URL, model.EventSubmissionCreated)

	recorder := &memoryRecorder{}
	d := newTestDispatcher(staticSource{endpoints: []model.WebhookEndpoint{ep}}, recorder)

	d.Dispatch(model.EventForumReport, nil)
	d.Wait()

	mu.Lock()
	require.Zero(t, hits)
	mu.Unlock()
}

func TestDispatch_CustomHeaders(t *testing.T) {
	var (
		mu        sync.Mutex
		gotHeader string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotHeader = r.Header.Get("X-Custom-Auth")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ep := testEndpoint(t, 1, server.URL, model.EventSubmissionCreated)
	ep.Headers = mustJSON(t, map[string]string{"X-Custom-Auth": "token123"})

	d := newTestDispatcher(staticSource{endpoints: []model.WebhookEndpoint{ep}}, &memoryRecorder{})
	d.Dispatch(model.EventSubmissionCreated, nil)
	d.Wait()

	mu.Lock()
	require.Equal(t, "token123", gotHeader)
	mu.Unlock()
}

func TestComputeSignatureFormat(t *testing.T) {
	t.Parallel()

	sig := ComputeSignature("secret", []byte(`{"event":"x"}`))
	require.Regexp(t, `^sha256=[0-9a-f]{64}$`, sig)
	require.True(t, VerifySignature("secret", []byte(`{"event":"x"}`), sig))
	require.False(t, VerifySignature("secret", []byte(`{"event":"y"}`), sig))
}
