package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cityforge/cityforge/utils/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestIsCSRFExempt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		authHeader string
		want       bool
	}{
		{"GET", http.MethodGet, "", true},
		{"HEAD", http.MethodHead, "", true},
		{"OPTIONS", http.MethodOptions, "", true},
		{"POST without bearer", http.MethodPost, "", false},
		{"POST with bearer", http.MethodPost, "Bearer sometoken", true},
		{"DELETE with basic auth", http.MethodDelete, "Basic Zm9v", false},
		{"PUT without bearer", http.MethodPut, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsCSRFExempt(tt.method, tt.authHeader); got != tt.want {
				t.Fatalf("IsCSRFExempt(%s, %q) = %v, want %v", tt.method, tt.authHeader, got, tt.want)
			}
		})
	}
}

func csrfApp() *fiber.App {
	app := fiber.New()
	app.Use(CSRFProtection())
	app.Post("/mutate", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/read", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestCSRFProtection_MatchingPairPasses(t *testing.T) {
	app := csrfApp()
	token := auth.GenerateCSRFToken()

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-token"})
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: token})
	req.Header.Set(auth.CSRFHeaderName, token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCSRFProtection_MissingHeaderRejected(t *testing.T) {
	app := csrfApp()

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-token"})
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: auth.GenerateCSRFToken()})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCSRFProtection_MismatchRejected(t *testing.T) {
	app := csrfApp()

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-token"})
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: auth.GenerateCSRFToken()})
	req.Header.Set(auth.CSRFHeaderName, auth.GenerateCSRFToken())

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCSRFProtection_BearerRequestExempt(t *testing.T) {
	app := csrfApp()

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer sometoken")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCSRFProtection_NoSessionCookiePasses(t *testing.T) {
	// Login and register arrive before any session exists; with no
	// cookie credential there is nothing for an attacker to ride.
	app := csrfApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/mutate", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCSRFProtection_SafeMethodExempt(t *testing.T) {
	app := csrfApp()

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-token"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
