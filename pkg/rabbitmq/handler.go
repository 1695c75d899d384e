package rabbitmq

import (
	"encoding/json"
	"fmt"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// OrderEvent is the part of an order event the audit consumer reads.
type OrderEvent struct {
	OrderID     string  `json:"orderId"`
	OrderNumber string  `json:"orderNumber"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
	Items       int     `json:"items"`
}

// NewOrderEventLogger returns a consumer handler that records every order
// event in the log. Malformed messages are rejected.
func NewOrderEventLogger(logger *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event OrderEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("malformed order event: %w", err)
		}
		if event.OrderID == "" {
			return fmt.Errorf("order event without orderId")
		}

		logger.Info("order event",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("order_id", event.OrderID),
			zap.String("order_number", event.OrderNumber),
			zap.String("status", event.Status),
			zap.Float64("total", event.Total),
			zap.String("currency", event.Currency),
			zap.Int("items", event.Items))
		return nil
	}
}
