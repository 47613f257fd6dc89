package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"butik/internal/models"
	"butik/internal/repositories"
	"butik/pkg/cache"
)

// ListFilter narrows a catalog listing. Zero values mean "no constraint".
type ListFilter struct {
	Brands   []string
	MinPrice int
	MaxPrice int
	Page     int
	Limit    int
}

// ListResult is one page of the catalog plus the filtered total.
type ListResult struct {
	Data  []models.ListedProduct `json:"data"`
	Total int                    `json:"total"`
}

// CatalogService handles product browsing and dataset seeding. Listing
// fetches the whole catalog and filters and slices in memory; the full
// projection is kept in a Redis cache between dataset mutations.
type CatalogService struct {
	repo  repositories.ProductRepository
	cache *cache.Cache
}

// NewCatalogService creates a new CatalogService. cache may be nil, in
// which case every read goes to the repository.
func NewCatalogService(repo repositories.ProductRepository, c *cache.Cache) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: c,
	}
}

const (
	listCacheKey    = "catalog:items"
	optionsCacheKey = "catalog:filter-options"
)

// ListProducts returns the filtered, paginated catalog listing.
func (s *CatalogService) ListProducts(ctx context.Context, filter ListFilter) (*ListResult, error) {
	all, err := s.listedProducts(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.ListedProduct, 0, len(all))
	for _, item := range all {
		if len(filter.Brands) > 0 && !containsString(filter.Brands, item.Brand.Name) {
			continue
		}
		if filter.MinPrice > 0 && item.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && item.Price > filter.MaxPrice {
			continue
		}
		filtered = append(filtered, item)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	end := page * limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return &ListResult{
		Data:  filtered[start:end],
		Total: len(filtered),
	}, nil
}

// listedProducts builds the listing projection, via the cache when one is
// configured. Cache errors fall through to the repository.
func (s *CatalogService) listedProducts(ctx context.Context) ([]models.ListedProduct, error) {
	if s.cache != nil {
		var cached []models.ListedProduct
		hit, err := s.cache.Get(ctx, listCacheKey, &cached)
		if err != nil {
			log.Printf("Catalog cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	listed := make([]models.ListedProduct, 0, len(products))
	for _, p := range products {
		item := models.ListedProduct{
			ID:         p.ID,
			Name:       p.Name,
			Price:      cheapestListedPrice(p.Sizes),
			Images:     make([]string, 0, len(p.Medias)),
			BaseColour: p.BaseColour,
		}
		if item.BaseColour == "" {
			item.BaseColour = "N/A"
		}
		item.Brand.Name = p.Brand.Name
		if item.Brand.Name == "" {
			item.Brand.Name = "N/A"
		}
		for _, m := range p.Medias {
			item.Images = append(item.Images, m.URL)
		}
		listed = append(listed, item)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, listed); err != nil {
			log.Printf("Catalog cache write failed: %v", err)
		}
	}
	return listed, nil
}

func cheapestListedPrice(sizes []models.Size) int {
	price := 0
	for i, size := range sizes {
		sell := size.SellPrice()
		if i == 0 || sell < price {
			price = sell
		}
	}
	return price
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FilterOptions returns the distinct filterable values of the catalog.
func (s *CatalogService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	if s.cache != nil {
		var cached models.FilterOptions
		hit, err := s.cache.Get(ctx, optionsCacheKey, &cached)
		if err != nil {
			log.Printf("Filter options cache read failed: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	opts, err := s.repo.FilterOptions()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, optionsCacheKey, opts); err != nil {
			log.Printf("Filter options cache write failed: %v", err)
		}
	}
	return opts, nil
}

// datasetProduct mirrors one entry of the products dataset file.
type datasetProduct struct {
	Name            string `json:"name"`
	Manufacturer    string `json:"manufacturer"`
	CountryOfOrigin string `json:"countryOfOrigin"`
	BaseColour      string `json:"baseColour"`
	Brand           struct {
		Name string `json:"name"`
	} `json:"brand"`
	ProductDetails struct {
		Description     string `json:"description"`
		MaterialAndCare string `json:"materialAndCare"`
	} `json:"productDetails"`
	Images []string `json:"images"`
	Sizes  []struct {
		Label     string `json:"label"`
		Available bool   `json:"available"`
		Price     int    `json:"price"`
	} `json:"sizes"`
	Discounts []struct {
		Percent int `json:"percent"`
	} `json:"discounts"`
	Analytics struct {
		Gender      string `json:"gender"`
		ArticleType string `json:"articleType"`
		SubCategory string `json:"subCategory"`
	} `json:"analytics"`
}

type datasetFile struct {
	Data []datasetProduct `json:"data"`
}

// LoadDataset seeds the catalog from the products dataset JSON file and
// drops any cached projections.
func (s *CatalogService) LoadDataset(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}

	var dataset datasetFile
	if err := json.Unmarshal(raw, &dataset); err != nil {
		return fmt.Errorf("failed to parse dataset file %s: %w", path, err)
	}

	// Brands first, so products can reference their IDs.
	seen := make(map[string]bool)
	brands := make([]models.Brand, 0)
	for _, p := range dataset.Data {
		if p.Brand.Name == "" || seen[p.Brand.Name] {
			continue
		}
		seen[p.Brand.Name] = true
		brands = append(brands, models.Brand{
			Name:        p.Brand.Name,
			Description: "A Good Brand",
		})
	}
	inserted, err := s.repo.CreateBrands(brands)
	if err != nil {
		return err
	}
	brandID := make(map[string]uint, len(inserted))
	for _, b := range inserted {
		brandID[b.Name] = b.ID
	}

	for _, p := range dataset.Data {
		discount := 0
		if len(p.Discounts) > 0 {
			discount = p.Discounts[0].Percent
		}

		product := models.Product{
			Name:            p.Name,
			Manufacturer:    p.Manufacturer,
			CountryOfOrigin: p.CountryOfOrigin,
			BaseColour:      p.BaseColour,
			BrandID:         brandID[p.Brand.Name],
			Description:     p.ProductDetails.Description,
			MaterialAndCare: p.ProductDetails.MaterialAndCare,
			Analytic: &models.ProductFacets{
				Gender:      p.Analytics.Gender,
				ArticleType: p.Analytics.ArticleType,
				Category:    p.Analytics.SubCategory,
			},
		}
		for _, size := range p.Sizes {
			mrp := 2999
			if size.Price > 0 {
				mrp = findMRP(size.Price, discount)
			}
			product.Sizes = append(product.Sizes, models.Size{
				Label:              size.Label,
				Available:          size.Available,
				MRP:                mrp,
				DiscountPercentage: discount,
			})
		}
		for _, url := range p.Images {
			product.Medias = append(product.Medias, models.Media{
				Type: "image",
				URL:  url,
			})
		}
		if err := s.repo.Create(&product); err != nil {
			return err
		}
	}

	s.invalidate(ctx)
	return nil
}

// findMRP back-computes a list price from a sell price and discount, then
// rounds the unit digit up to 9.
func findMRP(price, discountPercentage int) int {
	if discountPercentage >= 100 {
		discountPercentage = 0
	}
	mrp := price * 100 / (100 - discountPercentage)
	return mrp + (9 - mrp%10)
}

// ClearDataset removes the whole catalog and drops cached projections.
func (s *CatalogService) ClearDataset(ctx context.Context) error {
	if err := s.repo.DeleteAll(); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "catalog:*"); err != nil {
		log.Printf("Catalog cache invalidation failed: %v", err)
	}
}
