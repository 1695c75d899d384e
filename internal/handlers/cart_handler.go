package handlers

import (
	"organica/internal/middleware"
	"organica/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartRequest is the body of cart add and update requests.
type CartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAdd)
	cartRoutes.Patch("/update", h.HandleUpdate)
	cartRoutes.Delete("/remove/:productId", h.HandleRemove)
	cartRoutes.Delete("/clear", h.HandleClear)
}

// HandleGetCart returns the priced cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	summary, err := h.service.Get(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to load cart")
	}
	return c.JSON(summary)
}

// HandleAdd adds a product to the cart.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	var req CartRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(c, h.logger, services.ErrMissingProductID, "Invalid cart request")
	}

	summary, err := h.service.Add(c.UserContext(), middleware.SessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to add to cart")
	}
	return c.JSON(summary)
}

// HandleUpdate sets the quantity of a cart line.
func (h *CartHandler) HandleUpdate(c *fiber.Ctx) error {
	var req CartRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(c, h.logger, services.ErrMissingProductID, "Invalid cart request")
	}

	summary, err := h.service.SetQuantity(c.UserContext(), middleware.SessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to update cart")
	}
	return c.JSON(summary)
}

// HandleRemove removes a product from the cart.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	summary, err := h.service.Remove(c.UserContext(), middleware.SessionID(c), c.Params("productId"))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to remove item")
	}
	return c.JSON(summary)
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	summary, err := h.service.Clear(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to clear cart")
	}
	return c.JSON(summary)
}
