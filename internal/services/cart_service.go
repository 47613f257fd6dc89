package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"butik/internal/models"
	"butik/internal/repositories"
	"butik/pkg/rabbitmq"
)

// ErrInvalidCartItem is returned when a sync batch contains an item with a
// missing product or size reference. The whole batch is rejected before
// any row is written.
var ErrInvalidCartItem = errors.New("cart item is missing productId or sizeId")

// CartService handles business logic for the server-side cart ledger and
// the sync half of offline-cart reconciliation.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	mqClient    *rabbitmq.Client
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, mqClient *rabbitmq.Client) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		mqClient:    mqClient,
	}
}

// GetCart returns the user's cart joined with display data.
func (s *CartService) GetCart(userID string) ([]models.CartLineView, error) {
	return s.cartRepo.GetView(userID)
}

// AddItem overwrites or inserts the cart line for (userID, productID,
// sizeID). The product must exist; quantity validation happens at the
// handler boundary.
func (s *CartService) AddItem(userID string, productID, sizeID uint, quantity int) error {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return err
	}

	if err := s.cartRepo.Upsert(userID, productID, sizeID, quantity); err != nil {
		return err
	}

	s.publishEvent("cart.updated", map[string]interface{}{
		"userID":    userID,
		"productID": productID,
		"sizeID":    sizeID,
		"quantity":  quantity,
	})
	return nil
}

// RemoveItem deletes the matching cart line. Removing a line that is not
// in the ledger succeeds without effect.
func (s *CartService) RemoveItem(userID string, productID, sizeID uint) error {
	if err := s.cartRepo.Remove(userID, productID, sizeID); err != nil {
		return err
	}

	s.publishEvent("cart.removed", map[string]interface{}{
		"userID":    userID,
		"productID": productID,
		"sizeID":    sizeID,
	})
	return nil
}

// SyncCart merges a client's offline cart into the ledger. Every item is
// validated before any write; a single bad item rejects the whole batch.
// Quantities are overwritten, never summed, so the client value wins per
// line and replaying the same batch is a no-op.
func (s *CartService) SyncCart(userID string, items []models.SyncItem) error {
	for _, item := range items {
		if item.ProductID == 0 || item.SizeID == 0 {
			return fmt.Errorf("invalid sync batch: %w", ErrInvalidCartItem)
		}
	}

	if len(items) == 0 {
		return nil
	}

	if err := s.cartRepo.UpsertBatch(userID, items); err != nil {
		return fmt.Errorf("failed to synchronize cart for user %s: %w", userID, err)
	}

	s.publishEvent("cart.synced", map[string]interface{}{
		"userID": userID,
		"items":  len(items),
	})
	return nil
}

// publishEvent sends a cart event to RabbitMQ best-effort. A missing
// client or a publish failure is logged and never fails the request.
func (s *CartService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal cart event to JSON: %v", err)
		return
	}
	if err := s.mqClient.Publish("cart", routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
	}
}
