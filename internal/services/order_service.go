package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"organica/internal/models"
	"organica/internal/repositories"
	"organica/internal/sessions"

	"go.uber.org/zap"
)

// OrderPlacedRoutingKey is the routing key of the event published after checkout.
const OrderPlacedRoutingKey = "order.placed"

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderService handles checkout.
type OrderService struct {
	storage   repositories.Storage
	sessions  sessions.Store
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are published.
func NewOrderService(storage repositories.Storage, store sessions.Store, publisher EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		storage:   storage,
		sessions:  store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// NewOrderNumber derives a short shareable order number from t. Two orders
// placed in the same millisecond get the same number; nothing checks for that.
func NewOrderNumber(t time.Time) string {
	return "ORD-" + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}

// PlaceOrder turns the session cart into a stored order and then clears the
// cart. The cart is only cleared after the order is stored; if storing fails
// the cart is left as it was.
//
// Placing the same cart (same token and version) twice returns the first order.
func (s *OrderService) PlaceOrder(ctx context.Context, sessionID string, contact models.ContactFields) (*models.OrderReceipt, error) {
	cart, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, storageErr("load cart", err)
	}

	if !cart.IsEmpty() {
		existing, err := s.storage.FindOrderByCheckout(ctx, cart.Token, cart.Version)
		if err == nil {
			s.clearCart(ctx, sessionID, cart, existing)
			return existing.Receipt(), nil
		}
		if !errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, storageErr("find checkout order", err)
		}
	}

	summary, err := PriceCart(ctx, s.storage, cart)
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := buildOrder(sessionID, cart, summary, contact, s.now())
	if err := s.storage.InsertOrderAtomic(ctx, order); err != nil {
		if !errors.Is(err, repositories.ErrDuplicateCheckout) {
			return nil, storageErr("insert order", err)
		}
		// A concurrent checkout of the same cart won the race.
		existing, findErr := s.storage.FindOrderByCheckout(ctx, cart.Token, cart.Version)
		if findErr != nil {
			return nil, storageErr("find checkout order", findErr)
		}
		order = existing
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))

	s.clearCart(ctx, sessionID, cart, order)
	s.publishPlaced(ctx, order)

	return order.Receipt(), nil
}

// GetOrder returns an order placed from sessionID. Orders of other sessions
// are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, sessionID, id string) (*models.Order, error) {
	order, err := s.storage.GetOrderByID(ctx, id)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storageErr("get order", err)
	}
	if order.SessionID != sessionID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// clearCart resets the cart the order was placed from. The order is already
// durable, so a failure here is only logged: the next cart read sees the
// stored order for this cart version and clears the cart then.
func (s *OrderService) clearCart(ctx context.Context, sessionID string, cart *models.CartState, order *models.Order) {
	cleared, err := s.sessions.ClearCartIfVersion(ctx, sessionID, cart.Token, cart.Version)
	if err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return
	}
	if !cleared {
		s.logger.Info("cart changed during checkout, left in place",
			zap.String("order_number", order.OrderNumber),
			zap.Int64("cart_version", cart.Version))
	}
}

type orderPlacedEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	Currency    string    `json:"currency"`
	Items       int       `json:"items"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(orderPlacedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total,
		Currency:    order.Currency,
		Items:       len(order.Items),
		CreatedAt:   order.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, OrderPlacedRoutingKey, body); err != nil {
		s.logger.Warn("failed to publish order placed event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}

func buildOrder(sessionID string, cart *models.CartState, summary *models.CartSummary, contact models.ContactFields, now time.Time) *models.Order {
	items := make([]models.OrderItem, 0, len(summary.Items))
	for _, it := range summary.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		})
	}

	return &models.Order{
		OrderNumber: NewOrderNumber(now),
		SessionID:   sessionID,
		CartToken:   cart.Token,
		CartVersion: cart.Version,
		Status:      models.OrderStatusPending,
		Subtotal:    summary.Subtotal,
		Shipping:    summary.Shipping,
		Total:       summary.Total,
		Currency:    models.DefaultCurrency,
		Customer: models.Customer{
			Name:  strings.TrimSpace(contact.FirstName + " " + contact.LastName),
			Email: optional(contact.Email),
			Phone: optional(contact.Phone),
		},
		Address: models.Address{
			Street: optional(contact.Address),
			City:   optional(contact.City),
			Zip:    optional(contact.Zip),
		},
		Items:     items,
		CreatedAt: now.UTC(),
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
