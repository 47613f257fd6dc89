package clientcart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"butik/internal/models"
)

// Remote is the network port of the client cart: the best-effort mirror
// writes and the reconciliation calls against the cart API.
type Remote interface {
	Upsert(ctx context.Context, productID, sizeID uint, quantity int) error
	Remove(ctx context.Context, productID, sizeID uint) error
	Sync(ctx context.Context, items []models.SyncItem) error
	Fetch(ctx context.Context) ([]Item, error)
}

// HTTPRemote talks to the storefront API over HTTP. The cookie jar carries
// the identity cookie set by login/signup, so authenticated calls need no
// extra headers.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRemote creates an HTTPRemote for the given base URL.
func NewHTTPRemote(baseURL string) (*HTTPRemote, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &HTTPRemote{
		baseURL: baseURL,
		client:  &http.Client{Jar: jar},
	}, nil
}

// Signup registers a new account; the identity cookie lands in the jar.
func (r *HTTPRemote) Signup(ctx context.Context, email, password string) error {
	return r.postJSON(ctx, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
}

// Login authenticates; the identity cookie lands in the jar.
func (r *HTTPRemote) Login(ctx context.Context, email, password string) error {
	return r.postJSON(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
}

// Upsert mirrors a local add/increase/decrease to the ledger.
func (r *HTTPRemote) Upsert(ctx context.Context, productID, sizeID uint, quantity int) error {
	return r.postJSON(ctx, "/api/cart", map[string]interface{}{
		"productId": productID,
		"sizeId":    sizeID,
		"quantity":  quantity,
	}, nil)
}

// Remove mirrors a local removal to the ledger.
func (r *HTTPRemote) Remove(ctx context.Context, productID, sizeID uint) error {
	return r.postJSON(ctx, "/api/cart/remove", map[string]interface{}{
		"productId": productID,
		"sizeId":    sizeID,
	}, nil)
}

// Sync submits the offline cart wholesale for reconciliation.
func (r *HTTPRemote) Sync(ctx context.Context, items []models.SyncItem) error {
	return r.postJSON(ctx, "/api/cart/sync", items, nil)
}

// Fetch reads the authoritative ledger state.
func (r *HTTPRemote) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/cart", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cart fetch request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cart fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cart fetch returned status %d", resp.StatusCode)
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode cart response: %w", err)
	}
	return items, nil
}

func (r *HTTPRemote) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}
