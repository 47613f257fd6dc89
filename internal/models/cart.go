package models

import "time"

// CartLine is a single row of a user's persisted cart. The composite unique
// index is the backstop against concurrent upserts creating duplicate rows
// for the same (user, product, size) key.
type CartLine struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_cart_user_product_size;type:varchar(36);not null"`
	ProductID uint      `json:"product_id" gorm:"uniqueIndex:idx_cart_user_product_size;not null"`
	SizeID    uint      `json:"size_id" gorm:"uniqueIndex:idx_cart_user_product_size;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name aligned with the carts schema.
func (CartLine) TableName() string {
	return "carts"
}

// CartLineView is a cart row joined with its display data, in the shape the
// client renders. Prices come from the cheapest available size; a broken
// join degrades to zero values instead of failing the read.
type CartLineView struct {
	ProductID uint   `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
	SizeID    uint   `json:"sizeId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// SyncItem is one entry of the offline cart a client submits for
// reconciliation after login or signup.
type SyncItem struct {
	ProductID uint `json:"productId"`
	SizeID    uint `json:"sizeId"`
	Quantity  int  `json:"quantity"`
}
