package handlers

import (
	"log"
	"strconv"
	"strings"

	"butik/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles the public product browsing and dataset routes.
type CatalogHandler struct {
	catalogService *services.CatalogService
	datasetPath    string
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *services.CatalogService, datasetPath string) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		datasetPath:    datasetPath,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/items", h.HandleListItems)
	router.Get("/filter-options", h.HandleFilterOptions)
	datasetRoutes := router.Group("/dataset")
	datasetRoutes.Get("/load", h.HandleLoadDataset)
	datasetRoutes.Get("/clear", h.HandleClearDataset)
}

// HandleListItems returns a filtered, paginated page of the catalog.
func (h *CatalogHandler) HandleListItems(c *fiber.Ctx) error {
	filter := services.ListFilter{
		MinPrice: queryInt(c, "minPrice", 0),
		MaxPrice: queryInt(c, "maxPrice", 0),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}
	if brands := c.Query("brands"); brands != "" {
		filter.Brands = strings.Split(brands, ",")
	}

	result, err := h.catalogService.ListProducts(c.UserContext(), filter)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
		})
	}
	return c.JSON(result)
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// HandleFilterOptions returns the distinct filterable catalog values.
func (h *CatalogHandler) HandleFilterOptions(c *fiber.Ctx) error {
	opts, err := h.catalogService.FilterOptions(c.UserContext())
	if err != nil {
		log.Printf("Error getting filter options: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve filter options",
		})
	}
	return c.JSON(opts)
}

// HandleLoadDataset seeds the catalog from the configured dataset file.
func (h *CatalogHandler) HandleLoadDataset(c *fiber.Ctx) error {
	if err := h.catalogService.LoadDataset(c.UserContext(), h.datasetPath); err != nil {
		log.Printf("Error loading dataset: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load dataset.",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Dataset loaded successfully.",
	})
}

// HandleClearDataset removes the whole catalog.
func (h *CatalogHandler) HandleClearDataset(c *fiber.Ctx) error {
	if err := h.catalogService.ClearDataset(c.UserContext()); err != nil {
		log.Printf("Error clearing dataset: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to clear dataset.",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Dataset cleared successfully.",
	})
}
