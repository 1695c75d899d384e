package handlers

import (
	"time"

	"organica/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthHandler reports whether the storage backend is reachable.
type HealthHandler struct {
	products *services.ProductService
	backend  string
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(products *services.ProductService, backend string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{products: products, backend: backend, logger: logger}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth counts the catalog as a round trip to storage.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	stats, err := h.products.Stats(c.UserContext())
	if err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"ok":         true,
		"db":         h.backend,
		"products":   stats.Products,
		"categories": stats.Categories,
		"time":       time.Now().Format(time.RFC3339),
	})
}
