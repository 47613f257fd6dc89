package repositories

import (
	"errors"

	"butik/internal/models"
)

// ErrCartConflict is returned when a concurrent upsert for the same
// (user, product, size) key loses the race against the unique index.
// Callers should treat it as retryable rather than as a store failure.
var ErrCartConflict = errors.New("cart line already exists for this key")

// CartRepository defines the interface for cart ledger data access.
type CartRepository interface {
	GetLines(userID string) ([]models.CartLine, error)
	GetView(userID string) ([]models.CartLineView, error)
	Upsert(userID string, productID, sizeID uint, quantity int) error
	UpsertBatch(userID string, items []models.SyncItem) error
	Remove(userID string, productID, sizeID uint) error
}
