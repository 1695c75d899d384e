package handlers

import (
	"organica/internal/middleware"
	"organica/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WishlistRequest is the body of a wishlist add request.
type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// WishlistHandler handles HTTP requests for the session wishlist.
type WishlistHandler struct {
	service  *services.WishlistService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(service *services.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the wishlist routes.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router) {
	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Get("/", h.HandleGetWishlist)
	wishlistRoutes.Post("/add", h.HandleAdd)
	wishlistRoutes.Delete("/remove/:productId", h.HandleRemove)
	wishlistRoutes.Delete("/clear", h.HandleClear)
}

func (h *WishlistHandler) HandleGetWishlist(c *fiber.Ctx) error {
	summary, err := h.service.Get(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to load wishlist")
	}
	return c.JSON(summary)
}

func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	var req WishlistRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return writeError(c, h.logger, services.ErrMissingProductID, "Invalid wishlist request")
	}

	summary, err := h.service.Add(c.UserContext(), middleware.SessionID(c), req.ProductID)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to add to wishlist")
	}
	return c.JSON(summary)
}

func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	summary, err := h.service.Remove(c.UserContext(), middleware.SessionID(c), c.Params("productId"))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to remove from wishlist")
	}
	return c.JSON(summary)
}

func (h *WishlistHandler) HandleClear(c *fiber.Ctx) error {
	summary, err := h.service.Clear(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to clear wishlist")
	}
	return c.JSON(summary)
}
