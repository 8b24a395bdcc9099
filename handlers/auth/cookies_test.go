package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authutil "github.com/cityforge/cityforge/utils/auth"
	"github.com/cityforge/cityforge/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func cookieByName(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestSetSessionCookies(t *testing.T) {
	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret",
		Issuer: "test",
		Expiry: time.Hour,
	})
	h := NewAuthHandler(nil, jwtManager, nil, nil, false)

	app := fiber.New()
	app.Post("/session", func(c *fiber.Ctx) error {
		h.SetSessionCookies(c, "token-value")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	session := cookieByName(t, resp, middleware.SessionCookieName)
	require.NotNil(t, session, "session cookie missing")
	require.Equal(t, "token-value", session.Value)
	require.True(t, session.HttpOnly, "session cookie must not be readable by scripts")
	require.Equal(t, "/", session.Path)
	require.Equal(t, int(time.Hour.Seconds()), session.MaxAge)

	csrf := cookieByName(t, resp, authutil.CSRFCookieName)
	require.NotNil(t, csrf, "csrf cookie missing")
	require.NotEmpty(t, csrf.Value)
	require.False(t, csrf.HttpOnly, "csrf cookie must be readable by scripts")

	// The double-submit token is echoed in the response header so SPA
	// clients can pick it up without parsing cookies.
	require.Equal(t, csrf.Value, resp.Header.Get(authutil.CSRFHeaderName))
}

func TestSetSessionCookies_SecureInProduction(t *testing.T) {
	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{Secret: "test-secret"})
	h := NewAuthHandler(nil, jwtManager, nil, nil, true)

	app := fiber.New()
	app.Post("/session", func(c *fiber.Ctx) error {
		h.SetSessionCookies(c, "token-value")
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	session := cookieByName(t, resp, middleware.SessionCookieName)
	require.NotNil(t, session)
	require.True(t, session.Secure)

	csrf := cookieByName(t, resp, authutil.CSRFCookieName)
	require.NotNil(t, csrf)
	require.True(t, csrf.Secure)
}

func TestClearSessionCookies(t *testing.T) {
	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{Secret: "test-secret"})
	h := NewAuthHandler(nil, jwtManager, nil, nil, false)

	app := fiber.New()
	app.Post("/logout", func(c *fiber.Ctx) error {
		h.ClearSessionCookies(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/logout", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	for _, name := range []string{middleware.SessionCookieName, authutil.CSRFCookieName} {
		cookie := cookieByName(t, resp, name)
		require.NotNil(t, cookie, "cookie %s missing", name)
		require.Empty(t, cookie.Value)
		require.True(t, cookie.Expires.Before(time.Now()), "cookie %s should be expired", name)
	}
}
