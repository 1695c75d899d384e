package services_test

import (
	"context"
	"errors"
	"testing"

	"organica/internal/models"
	"organica/internal/repositories"
	"organica/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductLookup is a mock implementation of repositories.ProductLookup
type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) LookupProduct(ctx context.Context, productID string) (*models.ProductSnapshot, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductSnapshot), args.Error(1)
}

func snapshot(id string, price float64) *models.ProductSnapshot {
	return &models.ProductSnapshot{ProductID: id, Name: "Product " + id, Slug: "product-" + id, Price: price, ImageRef: models.DefaultProductImage}
}

func TestPriceCart_TwoLines(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "A").Return(snapshot("A", 3.50), nil)
	lookup.On("LookupProduct", mock.Anything, "B").Return(snapshot("B", 7.00), nil)

	cart := models.NewCartState()
	cart.Set("A", 2)
	cart.Set("B", 1)

	summary, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)

	require.Len(t, summary.Items, 2)
	assert.Equal(t, "A", summary.Items[0].ProductID)
	assert.Equal(t, 7.0, summary.Items[0].LineTotal)
	assert.Equal(t, "B", summary.Items[1].ProductID)
	assert.Equal(t, 7.0, summary.Items[1].LineTotal)
	assert.Equal(t, 14.0, summary.Subtotal)
	assert.Equal(t, 10.0, summary.Shipping)
	assert.Equal(t, 24.0, summary.Total)
	lookup.AssertExpectations(t)
}

func TestPriceCart_EmptyCart(t *testing.T) {
	lookup := new(MockProductLookup)

	summary, err := services.PriceCart(context.Background(), lookup, models.NewCartState())
	require.NoError(t, err)

	assert.NotNil(t, summary.Items)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.Subtotal)
	assert.Zero(t, summary.Shipping)
	assert.Zero(t, summary.Total)
	lookup.AssertNotCalled(t, "LookupProduct", mock.Anything, mock.Anything)
}

func TestPriceCart_SkipsMissingProducts(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "gone").Return(nil, repositories.ErrProductNotFound)
	lookup.On("LookupProduct", mock.Anything, "B").Return(snapshot("B", 7.00), nil)

	cart := models.NewCartState()
	cart.Set("gone", 3)
	cart.Set("B", 1)

	summary, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, "B", summary.Items[0].ProductID)
	assert.Equal(t, 17.0, summary.Total)

	q, ok := cart.Quantity("gone")
	assert.True(t, ok, "pricing must not remove stale lines")
	assert.Equal(t, 3, q)
}

func TestPriceCart_OnlyMissingProductsHasNoShipping(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "gone").Return(nil, repositories.ErrProductNotFound)

	cart := models.NewCartState()
	cart.Set("gone", 1)

	summary, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.Shipping)
	assert.Zero(t, summary.Total)
}

func TestPriceCart_RoundsLinesBeforeSumming(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "A").Return(snapshot("A", 0.333), nil)
	lookup.On("LookupProduct", mock.Anything, "B").Return(snapshot("B", 1.005), nil)

	cart := models.NewCartState()
	cart.Set("A", 3)
	cart.Set("B", 2)

	summary, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)

	assert.Equal(t, 1.0, summary.Items[0].LineTotal)
	assert.Equal(t, 2.01, summary.Items[1].LineTotal)
	assert.Equal(t, 3.01, summary.Subtotal)
	assert.Equal(t, 13.01, summary.Total)
}

func TestPriceCart_ClampsQuantity(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "A").Return(snapshot("A", 4.25), nil)

	cart := &models.CartState{Lines: []models.CartLine{{ProductID: "A", Quantity: 0}}}

	summary, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)
	assert.Equal(t, 4.25, summary.Items[0].LineTotal)
}

func TestPriceCart_StorageFailure(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "A").Return(nil, errors.New("connection reset"))

	cart := models.NewCartState()
	cart.Set("A", 1)

	summary, err := services.PriceCart(context.Background(), lookup, cart)
	assert.Nil(t, summary)
	assert.True(t, services.IsStorageFailure(err))
}

func TestPriceCart_Idempotent(t *testing.T) {
	lookup := new(MockProductLookup)
	lookup.On("LookupProduct", mock.Anything, "A").Return(snapshot("A", 2.99), nil)

	cart := models.NewCartState()
	cart.Set("A", 7)
	before := cart.Clone()

	first, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)
	second, err := services.PriceCart(context.Background(), lookup, cart)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, cart)
}
