package repositories

import (
	"sync"
	"time"

	"butik/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
// Lines are keyed by (user, product, size) so the at-most-one-row-per-key
// invariant holds by construction, mirroring the unique index.
type MockCartRepository struct {
	lines map[cartKey]models.CartLine
	mu    sync.RWMutex
}

type cartKey struct {
	userID    string
	productID uint
	sizeID    uint
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		lines: make(map[cartKey]models.CartLine),
	}
}

// GetLines returns the cart rows for a user.
func (r *MockCartRepository) GetLines(userID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lineList := make([]models.CartLine, 0)
	for key, line := range r.lines {
		if key.userID == userID {
			lineList = append(lineList, line)
		}
	}
	return lineList, nil
}

// GetView returns the cart rows for a user without display joins; the mock
// has no catalog, so display fields stay at their zero values.
func (r *MockCartRepository) GetView(userID string) ([]models.CartLineView, error) {
	lines, err := r.GetLines(userID)
	if err != nil {
		return nil, err
	}
	view := make([]models.CartLineView, 0, len(lines))
	for _, line := range lines {
		view = append(view, models.CartLineView{
			ProductID: line.ProductID,
			SizeID:    line.SizeID,
			Quantity:  line.Quantity,
		})
	}
	return view, nil
}

// Upsert overwrites or inserts the line for the key.
func (r *MockCartRepository) Upsert(userID string, productID, sizeID uint, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.upsertLocked(userID, productID, sizeID, quantity)
	return nil
}

// UpsertBatch applies every item under one lock acquisition.
func (r *MockCartRepository) UpsertBatch(userID string, items []models.SyncItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.upsertLocked(userID, item.ProductID, item.SizeID, item.Quantity)
	}
	return nil
}

func (r *MockCartRepository) upsertLocked(userID string, productID, sizeID uint, quantity int) {
	key := cartKey{userID: userID, productID: productID, sizeID: sizeID}
	line, ok := r.lines[key]
	if !ok {
		line = models.CartLine{
			ID:        uuid.New().String(),
			UserID:    userID,
			ProductID: productID,
			SizeID:    sizeID,
			CreatedAt: time.Now(),
		}
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	r.lines[key] = line
}

// Remove deletes the line for the key if present.
func (r *MockCartRepository) Remove(userID string, productID, sizeID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lines, cartKey{userID: userID, productID: productID, sizeID: sizeID})
	return nil
}
