package repositories

import (
	"errors"

	"butik/internal/models"
)

// ErrProductNotFound is returned when a referenced product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	CreateBrands(brands []models.Brand) ([]models.Brand, error)
	FilterOptions() (*models.FilterOptions, error)
	DeleteAll() error
}
