package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"butik/internal/handlers"
	"butik/internal/middleware"
	"butik/internal/models"
	"butik/internal/repositories"
	"butik/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestApp wires the full HTTP surface against a throwaway sqlite
// database, with messaging and caching disabled.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CartLine{},
		&models.Brand{},
		&models.Product{},
		&models.Size{},
		&models.Media{},
		&models.ProductFacets{},
	))

	userRepo := repositories.NewGORMUserRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	authService := services.NewAuthService(userRepo, "integration-test-secret", time.Hour)
	cartService := services.NewCartService(cartRepo, productRepo, nil)
	catalogService := services.NewCatalogService(productRepo, nil)

	app := fiber.New()
	api := app.Group("/api")

	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewCatalogHandler(catalogService, "").RegisterRoutes(api)

	gate := middleware.SessionGate(authService)
	protected := api.Group("", gate)
	handlers.NewCartHandler(cartService).RegisterRoutes(protected)
	handlers.NewUserHandler(authService).RegisterRoutes(protected)

	app.Get("/cart", gate, func(c *fiber.Ctx) error {
		return c.SendString("Your cart")
	})

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func parseMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Message
}

func identityCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	t.Fatal("no identity cookie in response")
	return nil
}

func signup(t *testing.T, app *fiber.App, email string) *http.Cookie {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	return identityCookie(t, resp)
}

func seedProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{
		Name:    "Linen Shirt",
		BrandID: 1,
		Brand:   models.Brand{ID: 1, Name: "Aurora"},
		Sizes: []models.Size{
			{Label: "M", Available: true, MRP: 1000, DiscountPercentage: 10},
			{Label: "L", Available: true, MRP: 1200, DiscountPercentage: 50},
		},
		Medias: []models.Media{{Type: "image", URL: "https://cdn.example/shirt.jpg"}},
	}
	assert.NoError(t, db.Create(&product).Error)
	return product
}

func TestSignupSetsCookieAndRejectsDuplicates(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := identityCookie(t, resp)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "Signup successful", parseMessage(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "ada@example.com",
		"password": "another-secret",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User already exists", parseMessage(t, resp))
}

func TestSignupValidation(t *testing.T) {
	app, _ := newTestApp(t)

	for name, body := range map[string]map[string]string{
		"missing email":    {"password": "secret123"},
		"malformed email":  {"email": "not-an-email", "password": "secret123"},
		"missing password": {"email": "ada@example.com"},
		"short password":   {"email": "ada@example.com", "password": "abc"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", body, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "ada@example.com")

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, identityCookie(t, resp).Value)
	assert.Equal(t, "Login successful", parseMessage(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", parseMessage(t, resp))

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartRequiresSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", parseMessage(t, resp))

	// Page navigation redirects instead.
	resp = doJSON(t, app, http.MethodGet, "/cart", nil, nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestCartAddGetRemove(t *testing.T) {
	app, db := newTestApp(t)
	product := seedProduct(t, db)
	cookie := signup(t, app, "ada@example.com")

	sizeID := product.Sizes[0].ID
	resp := doJSON(t, app, http.MethodPost, "/api/cart", map[string]interface{}{
		"productId": product.ID,
		"sizeId":    sizeID,
		"quantity":  2,
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Item added to cart", parseMessage(t, resp))

	// The view joins name, cheapest discounted price, image and size label.
	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var view []models.CartLineView
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 1)
	assert.Equal(t, "Linen Shirt", view[0].Name)
	assert.Equal(t, 600, view[0].Price)
	assert.Equal(t, "https://cdn.example/shirt.jpg", view[0].Image)
	assert.Equal(t, "M", view[0].Size)
	assert.Equal(t, 2, view[0].Quantity)

	// Writing the same key again overwrites the quantity, never sums.
	resp = doJSON(t, app, http.MethodPost, "/api/cart", map[string]interface{}{
		"productId": product.ID,
		"sizeId":    sizeID,
		"quantity":  5,
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, cookie)
	view = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 1)
	assert.Equal(t, 5, view[0].Quantity)

	resp = doJSON(t, app, http.MethodPost, "/api/cart/remove", map[string]interface{}{
		"productId": product.ID,
		"sizeId":    sizeID,
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Item removed from cart", parseMessage(t, resp))

	// Removing it again is still a success.
	resp = doJSON(t, app, http.MethodPost, "/api/cart/remove", map[string]interface{}{
		"productId": product.ID,
		"sizeId":    sizeID,
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, cookie)
	view = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 0)
}

func TestCartAddValidation(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := signup(t, app, "ada@example.com")

	resp := doJSON(t, app, http.MethodPost, "/api/cart", map[string]interface{}{
		"productId": 1,
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/cart", map[string]interface{}{
		"productId": 999,
		"sizeId":    1,
		"quantity":  1,
	}, cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", parseMessage(t, resp))
}

func TestCartSync(t *testing.T) {
	app, db := newTestApp(t)
	product := seedProduct(t, db)
	cookie := signup(t, app, "ada@example.com")

	sizeID := product.Sizes[0].ID

	// A malformed item rejects the whole batch before any write.
	resp := doJSON(t, app, http.MethodPost, "/api/cart/sync", []models.SyncItem{
		{ProductID: product.ID, SizeID: sizeID, Quantity: 2},
		{ProductID: 7, SizeID: 0, Quantity: 1},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid cart item: productId or sizeId is missing", parseMessage(t, resp))

	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, cookie)
	var view []models.CartLineView
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 0)

	// A well-formed batch lands, even for keys the catalog no longer has.
	resp = doJSON(t, app, http.MethodPost, "/api/cart/sync", []models.SyncItem{
		{ProductID: product.ID, SizeID: sizeID, Quantity: 2},
		{ProductID: 7, SizeID: 2, Quantity: 3},
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cart synchronized successfully", parseMessage(t, resp))

	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, cookie)
	view = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 2)

	byProduct := make(map[uint]models.CartLineView)
	for _, line := range view {
		byProduct[line.ProductID] = line
	}
	assert.Equal(t, 2, byProduct[product.ID].Quantity)
	assert.Equal(t, "Linen Shirt", byProduct[product.ID].Name)
	// The orphan line keeps its quantity with zero-valued display fields.
	assert.Equal(t, 3, byProduct[7].Quantity)
	assert.Empty(t, byProduct[7].Name)
	assert.Zero(t, byProduct[7].Price)

	// Replaying the same batch overwrites in place.
	resp = doJSON(t, app, http.MethodPost, "/api/cart/sync", []models.SyncItem{
		{ProductID: product.ID, SizeID: sizeID, Quantity: 2},
		{ProductID: 7, SizeID: 2, Quantity: 3},
	}, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, cookie)
	view = nil
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 2)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	app, db := newTestApp(t)
	product := seedProduct(t, db)
	ada := signup(t, app, "ada@example.com")
	grace := signup(t, app, "grace@example.com")

	resp := doJSON(t, app, http.MethodPost, "/api/cart", map[string]interface{}{
		"productId": product.ID,
		"sizeId":    product.Sizes[0].ID,
		"quantity":  1,
	}, ada)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/cart", nil, grace)
	var view []models.CartLineView
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	assert.Len(t, view, 0)
}

func TestGetUser(t *testing.T) {
	app, _ := newTestApp(t)
	cookie := signup(t, app, "ada@example.com")

	resp := doJSON(t, app, http.MethodGet, "/api/user", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Email string `json:"email"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "ada@example.com", body.Email)

	resp = doJSON(t, app, http.MethodGet, "/api/user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogEndpoints(t *testing.T) {
	app, db := newTestApp(t)
	seedProduct(t, db)

	resp := doJSON(t, app, http.MethodGet, "/api/items", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Data  []models.ListedProduct `json:"data"`
		Total int                    `json:"total"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	assert.Equal(t, 1, listing.Total)
	assert.Equal(t, "Linen Shirt", listing.Data[0].Name)
	assert.Equal(t, 600, listing.Data[0].Price)

	resp = doJSON(t, app, http.MethodGet, "/api/filter-options", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var opts models.FilterOptions
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&opts))
	resp.Body.Close()
	assert.Equal(t, []string{"Aurora"}, opts.Brands)
}
