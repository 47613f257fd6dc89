package repositories

import (
	"errors"
	"fmt"
	"strings"

	"butik/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetLines retrieves the raw cart rows for a user.
func (r *GORMCartRepository) GetLines(userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.Find(&lines, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart lines for user %s: %w", userID, err)
	}
	return lines, nil
}

// GetView retrieves the cart rows for a user joined with product name,
// cheapest size price, first image and size label. A line whose product or
// size has gone missing keeps its row with zero-valued display fields.
func (r *GORMCartRepository) GetView(userID string) ([]models.CartLineView, error) {
	lines, err := r.GetLines(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []models.CartLineView{}, nil
	}

	productIDs := make([]uint, 0, len(lines))
	sizeIDs := make([]uint, 0, len(lines))
	for _, line := range lines {
		productIDs = append(productIDs, line.ProductID)
		sizeIDs = append(sizeIDs, line.SizeID)
	}

	var products []models.Product
	if err := r.db.Preload("Sizes").Preload("Medias").Find(&products, productIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load products for cart view: %w", err)
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	var sizes []models.Size
	if err := r.db.Find(&sizes, sizeIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load sizes for cart view: %w", err)
	}
	sizeByID := make(map[uint]models.Size, len(sizes))
	for _, s := range sizes {
		sizeByID[s.ID] = s
	}

	view := make([]models.CartLineView, 0, len(lines))
	for _, line := range lines {
		row := models.CartLineView{
			ProductID: line.ProductID,
			SizeID:    line.SizeID,
			Quantity:  line.Quantity,
		}
		if p, ok := productByID[line.ProductID]; ok {
			row.Name = p.Name
			row.Price = cheapestPrice(p.Sizes)
			for _, m := range p.Medias {
				if m.Type == "image" {
					row.Image = m.URL
					break
				}
			}
		}
		if s, ok := sizeByID[line.SizeID]; ok {
			row.Size = s.Label
		}
		view = append(view, row)
	}
	return view, nil
}

// cheapestPrice returns the lowest discounted price among sizes, or 0 when
// the product has none.
func cheapestPrice(sizes []models.Size) int {
	price := 0
	for i, s := range sizes {
		sell := s.SellPrice()
		if i == 0 || sell < price {
			price = sell
		}
	}
	return price
}

// Upsert overwrites the quantity of an existing (user, product, size) row
// or inserts a new one. Two concurrent inserts for the same key resolve to
// a unique-index violation on the loser, surfaced as ErrCartConflict.
func (r *GORMCartRepository) Upsert(userID string, productID, sizeID uint, quantity int) error {
	return r.upsertTx(r.db, userID, productID, sizeID, quantity)
}

// UpsertBatch applies a batch of sync items in a single transaction so a
// store failure mid-batch rolls back the lines already written.
func (r *GORMCartRepository) UpsertBatch(userID string, items []models.SyncItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := r.upsertTx(tx, userID, item.ProductID, item.SizeID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GORMCartRepository) upsertTx(tx *gorm.DB, userID string, productID, sizeID uint, quantity int) error {
	var existing models.CartLine
	err := tx.First(&existing, "user_id = ? AND product_id = ? AND size_id = ?", userID, productID, sizeID).Error
	if err == nil {
		if err := tx.Model(&existing).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart line %s: %w", existing.ID, err)
		}
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to look up cart line: %w", err)
	}

	line := models.CartLine{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		SizeID:    sizeID,
		Quantity:  quantity,
	}
	if err := tx.Create(&line).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("concurrent cart upsert for user %s: %w", userID, ErrCartConflict)
		}
		return fmt.Errorf("failed to insert cart line: %w", err)
	}
	return nil
}

// isDuplicateKey detects unique-constraint violations across the sqlite and
// postgres drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// Remove deletes the matching cart line. Deleting a line that does not
// exist is not an error.
func (r *GORMCartRepository) Remove(userID string, productID, sizeID uint) error {
	res := r.db.Delete(&models.CartLine{}, "user_id = ? AND product_id = ? AND size_id = ?", userID, productID, sizeID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", res.Error)
	}
	return nil
}
