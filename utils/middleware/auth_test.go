package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

type fakeUserLoader struct {
	users map[uint]*model.User
	err   error
}

func (f *fakeUserLoader) LoadUser(_ context.Context, id uint) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func newTestMiddleware(expiry time.Duration) (*AuthMiddleware, *auth.JWTManager, *fakeBlacklist, *fakeUserLoader) {
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: "middleware-test-secret",
		Expiry: expiry,
		Issuer: "cityforge-test",
	})
	blacklist := &fakeBlacklist{revoked: map[string]bool{}}
	users := &fakeUserLoader{users: map[uint]*model.User{}}
	m := &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
		users:      users,
	}
	return m, jwtManager, blacklist, users
}

func activeUser(id uint, role string) *model.User {
	return &model.User{
		ID:       id,
		Email:    "user@example.com",
		Role:     role,
		IsActive: true,
	}
}

func protectedApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/protected", handler, func(c *fiber.Ctx) error {
		id, _ := GetUserID(c)
		return c.JSON(fiber.Map{"user_id": id})
	})
	return app
}

func TestRequired_MissingToken(t *testing.T) {
	m, _, _, _ := newTestMiddleware(time.Hour)
	app := protectedApp(m.Required())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_ValidBearerToken(t *testing.T) {
	m, jwtManager, _, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequired_ValidSessionCookie(t *testing.T) {
	m, jwtManager, _, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequired_MalformedBearerIgnoresCookie(t *testing.T) {
	m, jwtManager, _, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "NotBearer "+token)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	// The malformed header governs the request. The valid cookie must
	// not rescue it.
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_ExpiredToken(t *testing.T) {
	m, jwtManager, blacklist, users := newTestMiddleware(-time.Minute)
	users.users[1] = activeUser(1, model.RoleUser)

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	// Expiry must short-circuit before any revocation lookup.
	blacklist.err = errors.New("blacklist should not be consulted")

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_TokenWithoutID(t *testing.T) {
	m, _, _, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)

	// Well-signed but missing the jti claim, so revocation could never
	// be checked against it.
	claims := auth.Claims{
		UserID: 1,
		Email:  "user@example.com",
		Role:   model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("middleware-test-secret"))
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_RevokedToken(t *testing.T) {
	m, jwtManager, blacklist, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)

	token, jti, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)
	blacklist.revoked[jti] = true

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_InactiveUser(t *testing.T) {
	m, jwtManager, _, users := newTestMiddleware(time.Hour)
	user := activeUser(1, model.RoleUser)
	user.IsActive = false
	users.users[1] = user

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_UnknownUser(t *testing.T) {
	m, jwtManager, _, _ := newTestMiddleware(time.Hour)

	token, _, err := jwtManager.GenerateAccessToken(99, "ghost@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequired_InfrastructureErrorIs500(t *testing.T) {
	m, jwtManager, blacklist, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)
	blacklist.err = errors.New("datastore down")

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Required())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestOptional_AnonymousPasses(t *testing.T) {
	m, _, _, _ := newTestMiddleware(time.Hour)
	app := protectedApp(m.Optional())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptional_BadTokenTreatedAsAnonymous(t *testing.T) {
	m, _, _, _ := newTestMiddleware(time.Hour)
	app := protectedApp(m.Optional())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptional_InfrastructureErrorNotDowngraded(t *testing.T) {
	m, jwtManager, blacklist, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)
	blacklist.err = errors.New("datastore down")

	token, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	app := protectedApp(m.Optional())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	m, jwtManager, _, users := newTestMiddleware(time.Hour)
	users.users[1] = activeUser(1, model.RoleUser)
	users.users[2] = activeUser(2, model.RoleAdmin)

	app := protectedApp(m.RequireAdmin())

	userToken, _, err := jwtManager.GenerateAccessToken(1, "user@example.com", model.RoleUser)
	require.NoError(t, err)
	adminToken, _, err := jwtManager.GenerateAccessToken(2, "admin@example.com", model.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+userToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
