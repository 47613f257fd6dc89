package repositories

import (
	"fmt"

	"butik/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products with their brand, sizes, media and facets.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Preload("Brand").
		Preload("Sizes").
		Preload("Medias").
		Preload("Analytic").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product together with its associations.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// CreateBrands inserts the given brands and returns them with assigned IDs.
func (r *GORMProductRepository) CreateBrands(brands []models.Brand) ([]models.Brand, error) {
	if len(brands) == 0 {
		return brands, nil
	}
	if err := r.db.Create(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to create brands: %w", err)
	}
	return brands, nil
}

// FilterOptions collects the distinct brand names, article types and
// genders present in the catalog.
func (r *GORMProductRepository) FilterOptions() (*models.FilterOptions, error) {
	opts := &models.FilterOptions{}
	if err := r.db.Model(&models.Brand{}).Distinct("name").Order("name").Pluck("name", &opts.Brands).Error; err != nil {
		return nil, fmt.Errorf("failed to get distinct brands: %w", err)
	}
	if err := r.db.Model(&models.ProductFacets{}).Distinct("article_type").Pluck("article_type", &opts.Categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get distinct article types: %w", err)
	}
	if err := r.db.Model(&models.ProductFacets{}).Distinct("gender").Pluck("gender", &opts.Genders).Error; err != nil {
		return nil, fmt.Errorf("failed to get distinct genders: %w", err)
	}
	return opts, nil
}

// DeleteAll clears the whole catalog, children first to satisfy the
// foreign keys.
func (r *GORMProductRepository) DeleteAll() error {
	tables := []interface{}{
		&models.ProductFacets{},
		&models.Media{},
		&models.Size{},
		&models.Product{},
		&models.Brand{},
	}
	for _, table := range tables {
		if err := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	}
	return nil
}
