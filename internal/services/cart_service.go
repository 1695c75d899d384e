package services

import (
	"context"
	"errors"

	"organica/internal/models"
	"organica/internal/repositories"
	"organica/internal/sessions"

	"go.uber.org/zap"
)

// CartService handles the session cart. Every operation returns the cart
// freshly priced so callers never need a second read.
type CartService struct {
	storage  repositories.Storage
	sessions sessions.Store
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(storage repositories.Storage, store sessions.Store, logger *zap.Logger) *CartService {
	return &CartService{
		storage:  storage,
		sessions: store,
		logger:   logger,
	}
}

// Get prices the current cart.
func (s *CartService) Get(ctx context.Context, sessionID string) (*models.CartSummary, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return PriceCart(ctx, s.storage, cart)
}

// Add increases the quantity of productID by qty. A qty of 0 counts as 1 and
// the stored quantity never drops below 1. The product must exist.
func (s *CartService) Add(ctx context.Context, sessionID, productID string, qty int) (*models.CartSummary, error) {
	if productID == "" {
		return nil, ErrMissingProductID
	}
	if _, err := s.storage.LookupProduct(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("look up product", err)
	}
	if qty == 0 {
		qty = 1
	}

	return s.mutate(ctx, sessionID, func(cart *models.CartState) {
		current, _ := cart.Quantity(productID)
		cart.Set(productID, current+qty)
	})
}

// SetQuantity stores qty for productID, clamped to at least 1. Quantities of
// zero or below do not remove the line; Remove does.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, productID string, qty int) (*models.CartSummary, error) {
	if productID == "" {
		return nil, ErrMissingProductID
	}
	return s.mutate(ctx, sessionID, func(cart *models.CartState) {
		cart.Set(productID, qty)
	})
}

// Remove deletes productID from the cart. Removing an absent product is a no-op.
func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (*models.CartSummary, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.Delete(productID) {
		if err := s.sessions.SaveCart(ctx, sessionID, cart); err != nil {
			return nil, storageErr("save cart", err)
		}
	}
	return PriceCart(ctx, s.storage, cart)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*models.CartSummary, error) {
	return s.mutate(ctx, sessionID, func(cart *models.CartState) {
		cart.Reset()
	})
}

func (s *CartService) mutate(ctx context.Context, sessionID string, change func(*models.CartState)) (*models.CartSummary, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	change(cart)
	if err := s.sessions.SaveCart(ctx, sessionID, cart); err != nil {
		return nil, storageErr("save cart", err)
	}
	return PriceCart(ctx, s.storage, cart)
}

// load reads the session cart. If an order was already stored for this exact
// cart version, the checkout was interrupted before the cart was cleared;
// load finishes it by clearing the cart now.
func (s *CartService) load(ctx context.Context, sessionID string) (*models.CartState, error) {
	cart, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, storageErr("load cart", err)
	}
	if cart.IsEmpty() {
		return cart, nil
	}

	order, err := s.storage.FindOrderByCheckout(ctx, cart.Token, cart.Version)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		return cart, nil
	}
	if err != nil {
		return nil, storageErr("find checkout order", err)
	}

	if _, err := s.sessions.ClearCartIfVersion(ctx, sessionID, cart.Token, cart.Version); err != nil {
		return nil, storageErr("clear checked out cart", err)
	}
	s.logger.Info("cleared cart left over from completed checkout",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("cart_version", cart.Version))

	cart, err = s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, storageErr("load cart", err)
	}
	return cart, nil
}
