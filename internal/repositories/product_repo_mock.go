package repositories

import (
	"fmt"
	"sort"
	"sync"

	"butik/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[uint]models.Product
	brands   map[uint]models.Brand
	nextID   uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		brands:   make(map[uint]models.Brand),
		nextID:   1,
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].ID < productList[j].ID })
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
	} else if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	if brand, ok := r.brands[product.BrandID]; ok {
		product.Brand = brand
	}
	r.products[product.ID] = *product
	return nil
}

// CreateBrands inserts the given brands, assigning sequential IDs.
func (r *MockProductRepository) CreateBrands(brands []models.Brand) ([]models.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range brands {
		if brands[i].ID == 0 {
			brands[i].ID = r.nextID
			r.nextID++
		}
		r.brands[brands[i].ID] = brands[i]
	}
	return brands, nil
}

// FilterOptions collects the distinct filter values from the stored data.
func (r *MockProductRepository) FilterOptions() (*models.FilterOptions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brandSet := make(map[string]bool)
	categorySet := make(map[string]bool)
	genderSet := make(map[string]bool)
	for _, b := range r.brands {
		brandSet[b.Name] = true
	}
	for _, p := range r.products {
		if p.Analytic != nil {
			categorySet[p.Analytic.ArticleType] = true
			genderSet[p.Analytic.Gender] = true
		}
	}
	return &models.FilterOptions{
		Brands:     sortedKeys(brandSet),
		Categories: sortedKeys(categorySet),
		Genders:    sortedKeys(genderSet),
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeleteAll clears the whole catalog.
func (r *MockProductRepository) DeleteAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[uint]models.Product)
	r.brands = make(map[uint]models.Brand)
	r.nextID = 1
	return nil
}
