package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"butik/internal/middleware"
	"butik/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newGateApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()

	authService := services.NewAuthService(nil, "gate-test-secret", time.Hour)
	app := fiber.New()
	gate := middleware.SessionGate(authService)

	app.Get("/api/whoami", gate, func(c *fiber.Ctx) error {
		id, ok := middleware.IdentityFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{
			"userId": id.UserID(),
			"header": c.Get(middleware.IdentityHeader),
		})
	})
	app.Get("/cart", gate, func(c *fiber.Ctx) error {
		return c.SendString("cart page")
	})

	return app, authService
}

func decodeJSON(resp *http.Response, dest interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(dest)
}

func TestSessionGate_APIWithoutCookie(t *testing.T) {
	app, _ := newGateApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGate_APIWithValidCookie(t *testing.T) {
	app, authService := newGateApp(t)

	token, err := authService.IssueToken("user-42")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID string `json:"userId"`
		Header string `json:"header"`
	}
	assert.NoError(t, decodeJSON(resp, &body))
	assert.Equal(t, "user-42", body.UserID)
	assert.Equal(t, "user-42", body.Header)
}

func TestSessionGate_StripsClientIdentityHeader(t *testing.T) {
	app, _ := newGateApp(t)

	// A forged identity header without a cookie must not grant access.
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set(middleware.IdentityHeader, "user-1")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGate_ForgedHeaderIsReplaced(t *testing.T) {
	app, authService := newGateApp(t)

	token, err := authService.IssueToken("user-42")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	req.Header.Set(middleware.IdentityHeader, "user-999")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID string `json:"userId"`
		Header string `json:"header"`
	}
	assert.NoError(t, decodeJSON(resp, &body))
	assert.Equal(t, "user-42", body.UserID)
	assert.Equal(t, "user-42", body.Header)
}

func TestSessionGate_PageWithoutCookieRedirects(t *testing.T) {
	app, _ := newGateApp(t)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	// No cookie came in, so none is cleared.
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
}

func TestSessionGate_PageWithStaleCookieClearsIt(t *testing.T) {
	app, _ := newGateApp(t)

	expired := services.NewAuthService(nil, "gate-test-secret", time.Nanosecond)
	token, err := expired.IssueToken("user-42")
	assert.NoError(t, err)

	time.Sleep(2 * time.Second)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	cookies := resp.Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, middleware.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}

func TestSessionGate_APIWithTamperedToken(t *testing.T) {
	app, _ := newGateApp(t)

	other := services.NewAuthService(nil, "a-different-secret", time.Hour)
	token, err := other.IssueToken("user-42")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
