package handlers

import (
	"organica/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles read-only catalog requests.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/top", h.HandleTopProducts)
	router.Get("/top-products", h.HandleTopProducts)
	router.Get("/categories", h.HandleListCategories)
}

// HandleListProducts lists active products, optionally by category slug.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(),
		c.Query("category"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to load products")
	}
	return c.JSON(products)
}

// HandleTopProducts lists the curated top products.
func (h *ProductHandler) HandleTopProducts(c *fiber.Ctx) error {
	products, err := h.service.TopProducts(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err, "Failed to load top products")
	}
	return c.JSON(products)
}

// HandleListCategories lists categories.
func (h *ProductHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err, "Failed to load categories")
	}
	return c.JSON(categories)
}
