package services_test

import (
	"context"
	"testing"
	"time"

	"organica/internal/models"
	"organica/internal/repositories"
	"organica/internal/services"
	"organica/internal/sessions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSession = "session-1"

// newCatalog returns a memory storage holding products "A" (3.50) and "B" (7.00).
func newCatalog(t *testing.T) *repositories.MemoryStorage {
	t.Helper()
	storage := repositories.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.CreateProduct(ctx, &models.Product{ID: "A", Name: "Apple", Slug: "apple", Price: 3.50}))
	require.NoError(t, storage.CreateProduct(ctx, &models.Product{ID: "B", Name: "Banana", Slug: "banana", Price: 7.00}))
	return storage
}

func TestCartService_AddAccumulates(t *testing.T) {
	ctx := context.Background()
	service := services.NewCartService(newCatalog(t), sessions.NewMemoryStore(time.Hour), zap.NewNop())

	_, err := service.Add(ctx, testSession, "A", 2)
	require.NoError(t, err)
	summary, err := service.Add(ctx, testSession, "B", 1)
	require.NoError(t, err)

	assert.Equal(t, 14.0, summary.Subtotal)
	assert.Equal(t, 24.0, summary.Total)

	summary, err = service.Add(ctx, testSession, "A", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Items[0].Quantity, "qty 0 counts as 1")
}

func TestCartService_AddNeverDropsBelowOne(t *testing.T) {
	ctx := context.Background()
	service := services.NewCartService(newCatalog(t), sessions.NewMemoryStore(time.Hour), zap.NewNop())

	summary, err := service.Add(ctx, testSession, "A", -5)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)
}

func TestCartService_AddValidation(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore(time.Hour)
	service := services.NewCartService(newCatalog(t), store, zap.NewNop())

	_, err := service.Add(ctx, testSession, "", 1)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.Add(ctx, testSession, "nope", 1)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	cart, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty(), "failed adds must not touch the cart")
	assert.Zero(t, cart.Version)
}

func TestCartService_SetQuantityClamps(t *testing.T) {
	ctx := context.Background()
	service := services.NewCartService(newCatalog(t), sessions.NewMemoryStore(time.Hour), zap.NewNop())

	_, err := service.Add(ctx, testSession, "A", 4)
	require.NoError(t, err)

	summary, err := service.SetQuantity(ctx, testSession, "A", 0)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)

	summary, err = service.SetQuantity(ctx, testSession, "A", 6)
	require.NoError(t, err)
	assert.Equal(t, 21.0, summary.Items[0].LineTotal)

	_, err = service.SetQuantity(ctx, testSession, "", 2)
	assert.ErrorIs(t, err, services.ErrMissingProductID)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore(time.Hour)
	service := services.NewCartService(newCatalog(t), store, zap.NewNop())

	_, err := service.Add(ctx, testSession, "A", 1)
	require.NoError(t, err)
	_, err = service.Add(ctx, testSession, "B", 1)
	require.NoError(t, err)

	summary, err := service.Remove(ctx, testSession, "A")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "B", summary.Items[0].ProductID)

	before, _ := store.LoadCart(ctx, testSession)
	_, err = service.Remove(ctx, testSession, "A")
	require.NoError(t, err)
	after, _ := store.LoadCart(ctx, testSession)
	assert.Equal(t, before.Version, after.Version, "removing an absent line is a no-op")

	summary, err = service.Clear(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Zero(t, summary.Total)
}

func TestCartService_StaleProductStaysInCart(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	store := sessions.NewMemoryStore(time.Hour)
	service := services.NewCartService(storage, store, zap.NewNop())

	_, err := service.Add(ctx, testSession, "A", 2)
	require.NoError(t, err)
	require.NoError(t, storage.DeleteProduct("A"))

	summary, err := service.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	cart, err := store.LoadCart(ctx, testSession)
	require.NoError(t, err)
	q, ok := cart.Quantity("A")
	assert.True(t, ok)
	assert.Equal(t, 2, q)
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	service := services.NewCartService(newCatalog(t), sessions.NewMemoryStore(time.Hour), zap.NewNop())

	_, err := service.Add(ctx, "s1", "A", 1)
	require.NoError(t, err)

	summary, err := service.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestWishlistService(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	service := services.NewWishlistService(storage, sessions.NewMemoryStore(time.Hour))

	_, err := service.Add(ctx, testSession, "A")
	require.NoError(t, err)
	summary, err := service.Add(ctx, testSession, "A")
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3.50, summary.Items[0].Price)

	_, err = service.Add(ctx, testSession, "nope")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	_, err = service.Add(ctx, testSession, "")
	assert.ErrorIs(t, err, services.ErrMissingProductID)

	_, err = service.Add(ctx, testSession, "B")
	require.NoError(t, err)
	require.NoError(t, storage.DeleteProduct("B"))
	summary, err = service.Get(ctx, testSession)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 1, "deleted products are left out")

	summary, err = service.Remove(ctx, testSession, "A")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	summary, err = service.Clear(ctx, testSession)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestCartService_PricesAtCurrentCatalogPrice(t *testing.T) {
	ctx := context.Background()
	storage := newCatalog(t)
	service := services.NewCartService(storage, sessions.NewMemoryStore(time.Hour), zap.NewNop())

	summary, err := service.Add(ctx, testSession, "A", 2)
	require.NoError(t, err)
	assert.Equal(t, 3.50, summary.Items[0].Price)
	assert.Equal(t, 7.0, summary.Subtotal)

	require.NoError(t, storage.UpdateProduct(&models.Product{
		ID:     "A",
		Name:   "Apple",
		Slug:   "apple",
		Price:  4.00,
		Status: models.ProductStatusActive,
	}))

	summary, err = service.Get(ctx, testSession)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 4.00, summary.Items[0].Price)
	assert.Equal(t, 8.0, summary.Items[0].LineTotal)
	assert.Equal(t, 8.0, summary.Subtotal)
	assert.Equal(t, 18.0, summary.Total)
}
