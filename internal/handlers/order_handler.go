package handlers

import (
	"errors"
	"fmt"

	"organica/internal/middleware"
	"organica/internal/models"
	"organica/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Get("/:id", h.HandleGetOrder)
}

// HandlePlaceOrder checks out the session cart.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var contact models.ContactFields
	if err := parseBody(c, &contact); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validate.Struct(contact); err != nil {
		return validationFailed(c, err)
	}

	receipt, err := h.service.PlaceOrder(c.UserContext(), middleware.SessionID(c), contact)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to place order")
	}
	return c.JSON(receipt)
}

// HandleGetOrder returns an order placed from the caller's session.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.SessionID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to load order")
	}
	return c.JSON(order)
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badRequest(c, err.Error())
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"errors": errorMessages,
	})
}
