package models

import "time"

// Brand groups products under a manufacturer label.
type Brand struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Description string `json:"description"`
}

// Product is a catalog entry. Sizes, media and analytics hang off it the
// same way the storefront schema lays them out.
type Product struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"not null" validate:"required,min=3,max=200"`
	Manufacturer    string    `json:"manufacturer"`
	CountryOfOrigin string    `json:"countryOfOrigin"`
	BaseColour      string    `json:"baseColour"`
	BrandID         uint      `json:"brandId" gorm:"not null;index"`
	Description     string    `json:"description"`
	MaterialAndCare string    `json:"materialAndCare"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Brand    Brand          `json:"brand" gorm:"foreignKey:BrandID"`
	Sizes    []Size         `json:"sizes" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Medias   []Media        `json:"medias" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Analytic *ProductFacets `json:"analytic" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// Size is one purchasable variant of a product. MRP is stored in whole
// currency units; the sell price is MRP minus the discount percentage.
type Size struct {
	ID                 uint   `json:"id" gorm:"primaryKey"`
	ProductID          uint   `json:"productId" gorm:"not null;index"`
	Label              string `json:"label" gorm:"not null"`
	Available          bool   `json:"available"`
	MRP                int    `json:"mrp" gorm:"not null" validate:"required,gt=0"`
	DiscountPercentage int    `json:"discountPercentage" gorm:"default:0" validate:"gte=0,lte=100"`
}

// SellPrice applies the discount to the MRP.
func (s Size) SellPrice() int {
	return s.MRP - s.MRP*s.DiscountPercentage/100
}

// Media is an image or video attached to a product.
type Media struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"productId" gorm:"not null;index"`
	Type      string `json:"type" gorm:"default:image;not null"`
	URL       string `json:"url" gorm:"not null"`
}

// ProductFacets carries the browse/filter attributes of a product
// (gender, article type, category).
type ProductFacets struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ProductID   uint   `json:"productId" gorm:"not null;uniqueIndex"`
	Gender      string `json:"gender"`
	ArticleType string `json:"articleType"`
	Category    string `json:"category"`
}

// TableName keeps the original analytics table name.
func (ProductFacets) TableName() string {
	return "analytics"
}

// ListedProduct is the catalog listing projection: id, name, cheapest
// discounted price, image URLs and brand name.
type ListedProduct struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	Price      int      `json:"price"`
	Images     []string `json:"images"`
	BaseColour string   `json:"baseColour"`
	Brand      struct {
		Name string `json:"name"`
	} `json:"brand"`
}

// FilterOptions are the distinct values the storefront offers as filters.
type FilterOptions struct {
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
	Genders    []string `json:"genders"`
}
