// Package clientcart is the client-side cart cache: the working cart the
// UI mutates, persisted locally so it survives restarts, and reconciled
// with the server ledger once a session exists. The Cart type is a value;
// every mutation returns a new Cart plus the outbound write (if any) that
// would mirror it to the ledger.
package clientcart

import "butik/internal/models"

// Item is one line of the client cart, including the denormalized display
// fields the UI renders while offline.
type Item struct {
	ProductID uint   `json:"productId"`
	SizeID    uint   `json:"sizeId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
	Size      string `json:"size"`
}

// Cart is an immutable snapshot of the client cart.
type Cart struct {
	items []Item
}

// New builds a cart from the given items.
func New(items ...Item) Cart {
	copied := make([]Item, len(items))
	copy(copied, items)
	return Cart{items: copied}
}

// Items returns a copy of the cart lines in insertion order.
func (c Cart) Items() []Item {
	copied := make([]Item, len(c.items))
	copy(copied, c.items)
	return copied
}

// Len returns the number of cart lines.
func (c Cart) Len() int {
	return len(c.items)
}

// SyncItems projects the cart into the payload of the sync operation.
func (c Cart) SyncItems() []models.SyncItem {
	items := make([]models.SyncItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, models.SyncItem{
			ProductID: item.ProductID,
			SizeID:    item.SizeID,
			Quantity:  item.Quantity,
		})
	}
	return items
}

// OpKind distinguishes the outbound writes a mutation can produce.
type OpKind int

// Outbound write kinds.
const (
	OpUpsert OpKind = iota
	OpRemove
)

// Op describes the remote write mirroring a local mutation. A nil Op means
// the mutation needs no server call.
type Op struct {
	Kind      OpKind
	ProductID uint
	SizeID    uint
	Quantity  int
}

// Add puts an item into the cart, or bumps its quantity by one when the
// (product, size) key is already present.
func (c Cart) Add(item Item) (Cart, *Op) {
	items := c.Items()
	for i, existing := range items {
		if existing.ProductID == item.ProductID && existing.SizeID == item.SizeID {
			items[i].Quantity++
			return Cart{items: items}, &Op{Kind: OpUpsert, ProductID: item.ProductID, SizeID: item.SizeID, Quantity: items[i].Quantity}
		}
	}
	item.Quantity = 1
	items = append(items, item)
	return Cart{items: items}, &Op{Kind: OpUpsert, ProductID: item.ProductID, SizeID: item.SizeID, Quantity: 1}
}

// Remove drops the line for the key. Removing an absent key returns the
// cart unchanged and no write.
func (c Cart) Remove(productID, sizeID uint) (Cart, *Op) {
	items := make([]Item, 0, len(c.items))
	found := false
	for _, item := range c.items {
		if item.ProductID == productID && item.SizeID == sizeID {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return c, nil
	}
	return Cart{items: items}, &Op{Kind: OpRemove, ProductID: productID, SizeID: sizeID}
}

// Increase bumps the quantity of the line for the key by one.
func (c Cart) Increase(productID, sizeID uint) (Cart, *Op) {
	items := c.Items()
	for i, item := range items {
		if item.ProductID == productID && item.SizeID == sizeID {
			items[i].Quantity++
			return Cart{items: items}, &Op{Kind: OpUpsert, ProductID: productID, SizeID: sizeID, Quantity: items[i].Quantity}
		}
	}
	return c, nil
}

// Decrease lowers the quantity of the line for the key by one, with a
// floor of one. At the floor the cart is unchanged and no write is issued;
// removal is a distinct explicit action.
func (c Cart) Decrease(productID, sizeID uint) (Cart, *Op) {
	items := c.Items()
	for i, item := range items {
		if item.ProductID == productID && item.SizeID == sizeID {
			if item.Quantity <= 1 {
				return c, nil
			}
			items[i].Quantity--
			return Cart{items: items}, &Op{Kind: OpUpsert, ProductID: productID, SizeID: sizeID, Quantity: items[i].Quantity}
		}
	}
	return c, nil
}
