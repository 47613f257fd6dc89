package middleware

import (
	"strings"
	"time"

	"butik/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the identity cookie the auth handlers set and the gate reads.
const CookieName = "token"

// IdentityHeader is the trusted header the gate injects for downstream
// handlers. Any client-supplied value is stripped before verification, so a
// populated header always originates from a verified token.
const IdentityHeader = "X-User-Id"

const identityLocal = "identity"

// Identity is the capability a verified token resolves to. Handlers must
// obtain the acting user exclusively through IdentityFrom, never from a
// request field.
type Identity struct {
	userID string
}

// UserID returns the verified user id.
func (id Identity) UserID() string {
	return id.userID
}

// IdentityFrom returns the verified identity the gate attached to this
// request. The boolean is false on routes the gate does not protect.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityLocal).(Identity)
	return id, ok
}

// SessionGate verifies the identity cookie on protected routes. Requests
// under /api fail closed with 401; page requests are redirected to the
// login entry point, clearing a stale cookie when one was presented.
// Signature, payload and expiry failures are indistinguishable to clients.
func SessionGate(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Never trust an inbound identity header.
		c.Request().Header.Del(IdentityHeader)

		token := c.Cookies(CookieName)
		if token == "" {
			return reject(c, false)
		}

		userID, err := authService.ValidateToken(token)
		if err != nil {
			return reject(c, true)
		}

		c.Request().Header.Set(IdentityHeader, userID)
		c.Locals(identityLocal, Identity{userID: userID})
		return c.Next()
	}
}

func reject(c *fiber.Ctx, clearCookie bool) error {
	if isAPIPath(c.Path()) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}
	if clearCookie {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			HTTPOnly: true,
			SameSite: "Lax",
			Expires:  time.Now().Add(-time.Hour),
		})
	}
	return c.Redirect("/login", fiber.StatusFound)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
