package handlers

import (
	"errors"
	"log"

	"butik/internal/middleware"
	"butik/internal/models"
	"butik/internal/repositories"
	"butik/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart ledger. Every route is
// behind the session gate; the acting user comes only from the verified
// identity, never from the request body.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Post("/remove", h.HandleRemoveItem)
	cartRoutes.Post("/sync", h.HandleSyncCart)
}

// HandleGetCart returns the user's cart with joined display data.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	view, err := h.cartService.GetCart(identity.UserID())
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", identity.UserID(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
		})
	}
	return c.JSON(view)
}

// AddItemRequest is the request body for adding or updating a cart line.
type AddItemRequest struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
	SizeID    uint `json:"sizeId" validate:"required,gt=0"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// HandleAddItem overwrites or inserts the cart line for the given key.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "productId, sizeId and quantity are required",
		})
	}

	if err := h.cartService.AddItem(identity.UserID(), req.ProductID, req.SizeID, req.Quantity); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		if errors.Is(err, repositories.ErrCartConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Cart was modified concurrently, please retry",
			})
		}
		log.Printf("Error adding cart item for user %s: %v", identity.UserID(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to add item to cart",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item added to cart",
	})
}

// RemoveItemRequest is the request body for removing a cart line.
type RemoveItemRequest struct {
	ProductID uint `json:"productId" validate:"required,gt=0"`
	SizeID    uint `json:"sizeId" validate:"required,gt=0"`
}

// HandleRemoveItem deletes the matching cart line; removing a line that is
// not there still succeeds.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	var req RemoveItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing remove-from-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "productId and sizeId are required",
		})
	}

	if err := h.cartService.RemoveItem(identity.UserID(), req.ProductID, req.SizeID); err != nil {
		log.Printf("Error removing cart item for user %s: %v", identity.UserID(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to remove item from cart",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}

// HandleSyncCart merges the client's offline cart into the ledger. The
// batch is applied all-or-nothing: one malformed item rejects the request
// before any row is written.
func (h *CartHandler) HandleSyncCart(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	var items []models.SyncItem
	if err := c.BodyParser(&items); err != nil {
		log.Printf("Error parsing cart sync request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.cartService.SyncCart(identity.UserID(), items); err != nil {
		if errors.Is(err, services.ErrInvalidCartItem) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid cart item: productId or sizeId is missing",
			})
		}
		log.Printf("Cart synchronization error for user %s: %v", identity.UserID(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Cart synchronization failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cart synchronized successfully",
	})
}
