package handlers

import (
	"errors"

	"organica/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// parseBody decodes the request body into out. An empty body leaves out
// untouched so that missing fields are reported by validation instead.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// writeError maps service errors to HTTP responses. Anything unrecognised is
// logged and reported as a 500 with the generic message msg.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return badRequest(c, validationMessage(err))
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	case errors.Is(err, services.ErrEmptyCart):
		return badRequest(c, "Cart is empty")
	}

	logger.Error(msg,
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Bool("storage_failure", services.IsStorageFailure(err)),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

func validationMessage(err error) string {
	if errors.Is(err, services.ErrMissingProductID) {
		return "productId required"
	}
	return err.Error()
}
