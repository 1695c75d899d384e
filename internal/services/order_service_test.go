package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"organica/internal/models"
	"organica/internal/services"
	"organica/internal/sessions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

// flakyStore fails every ClearCartIfVersion, as if the session store went
// away right after the order was written.
type flakyStore struct {
	*sessions.MemoryStore
}

func (f flakyStore) ClearCartIfVersion(context.Context, string, string, int64) (bool, error) {
	return false, errors.New("session store unavailable")
}

var contact = models.ContactFields{
	FirstName: "Ada",
	LastName:  "Lovelace",
	Email:     "ada@example.com",
	Address:   "1 Analytical Way",
	City:      "London",
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 2)
	require.NoError(t, err)
	_, err = carts.Add(ctx, testSession, "B", 1)
	require.NoError(t, err)

	receipt, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderID)
	assert.True(t, strings.HasPrefix(receipt.OrderNumber, "ORD-"))
	assert.Equal(t, 24.0, receipt.Total)

	cart, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	order, err := orders.GetOrder(ctx, testSession, receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.DefaultCurrency, order.Currency)
	assert.Equal(t, "Ada Lovelace", order.Customer.Name)
	require.NotNil(t, order.Customer.Email)
	assert.Equal(t, "ada@example.com", *order.Customer.Email)
	assert.Nil(t, order.Customer.Phone)
	assert.Nil(t, order.Address.Zip)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 7.0, order.Items[0].LineTotal)
}

func TestOrderService_EmptyCart(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())

	_, err := orders.PlaceOrder(ctx, testSession, contact)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Zero(t, storage.OrderCount())
}

func TestOrderService_CartWithOnlyStaleProductsIsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 1)
	require.NoError(t, err)
	require.NoError(t, storage.DeleteProduct("A"))

	_, err = orders.PlaceOrder(ctx, testSession, contact)
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	cart, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty(), "cart is left unchanged")
}

func TestOrderService_InsertFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 2)
	require.NoError(t, err)
	before, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)

	storage.FailInserts = errors.New("disk full")
	_, err = orders.PlaceOrder(ctx, testSession, contact)
	require.Error(t, err)
	assert.True(t, services.IsStorageFailure(err))
	assert.Zero(t, storage.OrderCount())

	after, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// The same cart can be checked out once storage recovers.
	storage.FailInserts = nil
	receipt, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.Equal(t, 17.0, receipt.Total)
	assert.Equal(t, 1, storage.OrderCount())
}

func TestOrderService_InterruptedCheckoutIsNotDuplicated(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "B", 3)
	require.NoError(t, err)

	// The order is written but the cart is never cleared.
	broken := services.NewOrderService(storage, flakyStore{store}, nil, zap.NewNop())
	first, err := broken.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)

	cart, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	require.False(t, cart.IsEmpty())

	// A retry returns the stored order instead of placing a second one.
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())
	second, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, storage.OrderCount())

	cart, err = store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_ReadAfterInterruptedCheckoutClearsCart(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 1)
	require.NoError(t, err)

	broken := services.NewOrderService(storage, flakyStore{store}, nil, zap.NewNop())
	_, err = broken.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)

	summary, err := carts.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, summary.Items, "cart of a stored order must not show again")

	// New items after reconciliation form a new checkout.
	_, err = carts.Add(ctx, testSession, "B", 1)
	require.NoError(t, err)
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())
	receipt, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.Equal(t, 17.0, receipt.Total)
	assert.Equal(t, 2, storage.OrderCount())
}

func TestOrderService_CheckoutAfterSessionStateLost(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)

	// First cart is checked out, then the session store restarts while the
	// shopper keeps the same cookie, so the next cart starts at version 0.
	before := sessions.NewMemoryStore(time.Hour)
	_, err := services.NewCartService(storage, before, zap.NewNop()).Add(ctx, testSession, "A", 1)
	require.NoError(t, err)
	first, err := services.NewOrderService(storage, before, nil, zap.NewNop()).PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.Equal(t, 13.5, first.Total)

	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())

	_, err = carts.Add(ctx, testSession, "B", 3)
	require.NoError(t, err)

	summary, err := carts.Get(ctx, testSession)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1, "new cart must not be taken for the placed one")
	assert.Equal(t, "B", summary.Items[0].ProductID)
	assert.Equal(t, 3, summary.Items[0].Quantity)

	second, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID, second.OrderID)
	assert.Equal(t, 31.0, second.Total)
	assert.Equal(t, 2, storage.OrderCount())

	order, err := orders.GetOrder(ctx, testSession, second.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "B", order.Items[0].ProductID)
}

func TestOrderService_PublishesOrderPlaced(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())

	publisher := new(MockPublisher)
	var body []byte
	publisher.On("Publish", mock.Anything, services.OrderPlacedRoutingKey, mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(2).([]byte) }).
		Return(nil).Once()
	orders := services.NewOrderService(storage, store, publisher, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 1)
	require.NoError(t, err)
	receipt, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)

	publisher.AssertExpectations(t)
	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, receipt.OrderID, event["orderId"])
	assert.Equal(t, receipt.OrderNumber, event["orderNumber"])
	assert.Equal(t, 13.5, event["total"])
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	orders := services.NewOrderService(storage, store, publisher, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 1)
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)
	assert.Equal(t, 1, storage.OrderCount())
}

func TestOrderService_GetOrderOfOtherSession(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	carts := services.NewCartService(storage, store, zap.NewNop())
	orders := services.NewOrderService(storage, store, nil, zap.NewNop())

	_, err := carts.Add(ctx, testSession, "A", 1)
	require.NoError(t, err)
	receipt, err := orders.PlaceOrder(ctx, testSession, contact)
	require.NoError(t, err)

	_, err = orders.GetOrder(ctx, "someone-else", receipt.OrderID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	_, err = orders.GetOrder(ctx, testSession, "missing")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestNewOrderNumber(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	assert.Equal(t, "ORD-LOYW3V28", services.NewOrderNumber(ts))
}
