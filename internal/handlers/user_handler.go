package handlers

import (
	"log"

	"butik/internal/middleware"
	"butik/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for the user profile.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/user", h.HandleGetUser)
}

// HandleGetUser returns the profile of the verified user. A valid token
// whose user row has gone missing yields 404, not 401.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	user, err := h.authService.GetUser(identity.UserID())
	if err != nil {
		log.Printf("User lookup failed for %s: %v", identity.UserID(), err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"email": user.Email,
	})
}
