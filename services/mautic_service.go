package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// MauticService syncs registered users into a Mautic marketing
// instance. Contact sync is best-effort: failures are logged and
// dropped, never surfaced to the registering user.
type MauticService struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewMauticService creates a Mautic client from environment config
func NewMauticService() *MauticService {
	return &MauticService{
		baseURL:  os.Getenv("MAUTIC_URL"),
		username: os.Getenv("MAUTIC_USERNAME"),
		password: os.Getenv("MAUTIC_PASSWORD"),
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// IsEnabled reports whether Mautic integration is configured
func (m *MauticService) IsEnabled() bool {
	return m.baseURL != "" && m.username != "" && m.password != ""
}

// UpsertContact creates or updates a Mautic contact for the email.
// Safe to call in a goroutine from the registration path.
func (m *MauticService) UpsertContact(ctx context.Context, email, firstName, lastName string, tags []string) error {
	if !m.IsEnabled() {
		return nil
	}

	payload := map[string]interface{}{
		"email":     email,
		"firstname": firstName,
		"lastname":  lastName,
	}
	if len(tags) > 0 {
		payload["tags"] = tags
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/contacts/new", m.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(m.username, m.password)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mautic request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mautic returned status %d", resp.StatusCode)
	}

	return nil
}

// SyncRegistration fires a background contact upsert for a new user
func (m *MauticService) SyncRegistration(email, firstName, lastName string) {
	if !m.IsEnabled() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := m.UpsertContact(ctx, email, firstName, lastName, []string{"cityforge-member"}); err != nil {
			log.Printf("mautic: contact sync failed for %s: %v", email, err)
		}
	}()
}
