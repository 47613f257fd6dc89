package clientcart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Namespace is the fixed name of the persisted cart record.
const Namespace = "cart-storage"

// Store is the persistence port of the client cart: a single durable
// record holding the whole cart array.
type Store interface {
	Load() (Cart, error)
	Save(Cart) error
}

// FileStore persists the cart as one JSON document under a directory,
// keyed by the fixed namespace.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, Namespace+".json"),
	}
}

type storedCart struct {
	Cart []Item `json:"cart"`
}

// Load reads the persisted cart. A missing record yields an empty cart.
func (s *FileStore) Load() (Cart, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return New(), fmt.Errorf("failed to read cart record: %w", err)
	}

	var record storedCart
	if err := json.Unmarshal(raw, &record); err != nil {
		return New(), fmt.Errorf("failed to parse cart record: %w", err)
	}
	return New(record.Cart...), nil
}

// Save writes the cart wholesale, replacing the previous record.
func (s *FileStore) Save(cart Cart) error {
	raw, err := json.Marshal(storedCart{Cart: cart.Items()})
	if err != nil {
		return fmt.Errorf("failed to encode cart record: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write cart record: %w", err)
	}
	return nil
}
