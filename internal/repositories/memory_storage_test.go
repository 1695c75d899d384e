package repositories_test

import (
	"context"
	"errors"
	"testing"

	"organica/internal/models"
	"organica/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_ListProducts(t *testing.T) {
	ctx := context.Background()
	storage := repositories.NewMemoryStorage()

	for _, slug := range []string{"a", "b", "c", "d"} {
		require.NoError(t, storage.CreateProduct(ctx, &models.Product{ID: slug, Slug: slug, CategorySlug: "fruits"}))
	}
	require.NoError(t, storage.CreateProduct(ctx, &models.Product{ID: "e", Slug: "e", CategorySlug: "veg"}))
	require.NoError(t, storage.CreateProduct(ctx, &models.Product{ID: "f", Slug: "f", CategorySlug: "fruits", Status: models.ProductStatusInactive}))

	page, err := storage.ListProducts(ctx, models.ProductQuery{CategorySlug: "fruits", Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].ID, "newest first")
	assert.Equal(t, "b", page[1].ID)

	page, err = storage.ListProducts(ctx, models.ProductQuery{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryStorage_LookupProduct(t *testing.T) {
	ctx := context.Background()
	storage := repositories.NewMemoryStorage()

	product := &models.Product{ID: "a", Name: "Apple", Price: 1}
	require.NoError(t, storage.CreateProduct(ctx, product))

	product.Price = 2
	require.NoError(t, storage.UpdateProduct(product))
	snap, err := storage.LookupProduct(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.Price)

	require.NoError(t, storage.DeleteProduct("a"))
	_, err = storage.LookupProduct(ctx, "a")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.ErrorIs(t, storage.DeleteProduct("a"), repositories.ErrProductNotFound)
}

func TestMemoryStorage_InsertOrderAtomic(t *testing.T) {
	ctx := context.Background()
	storage := repositories.NewMemoryStorage()

	order := sampleOrder("cart-1", 1)
	require.NoError(t, storage.InsertOrderAtomic(ctx, order))

	found, err := storage.FindOrderByCheckout(ctx, "cart-1", 1)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	for _, item := range found.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}

	assert.ErrorIs(t, storage.InsertOrderAtomic(ctx, sampleOrder("cart-1", 1)), repositories.ErrDuplicateCheckout)

	storage.FailInserts = errors.New("boom")
	assert.Error(t, storage.InsertOrderAtomic(ctx, sampleOrder("cart-1", 2)))
	assert.Equal(t, 1, storage.OrderCount())
}

func TestMemoryStorage_GetOrderByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	storage := repositories.NewMemoryStorage()

	order := sampleOrder("cart-1", 1)
	require.NoError(t, storage.InsertOrderAtomic(ctx, order))

	first, err := storage.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	originalName := first.Items[0].Name
	first.Items[0].Name = "changed"
	first.Items[0].Quantity = 99

	again, err := storage.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, originalName, again.Items[0].Name)
	assert.NotEqual(t, 99, again.Items[0].Quantity)
}
