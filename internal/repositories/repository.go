package repositories

import (
	"context"

	"organica/internal/models"
)

// ProductLookup reads a single product for pricing. Implementations return
// ErrProductNotFound for unknown or inactive products.
type ProductLookup interface {
	LookupProduct(ctx context.Context, productID string) (*models.ProductSnapshot, error)
}

// CatalogRepository defines read access to products and categories, plus the
// writes used for seeding.
type CatalogRepository interface {
	ProductLookup
	ListProducts(ctx context.Context, query models.ProductQuery) ([]models.Product, error)
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	CreateCategory(ctx context.Context, category *models.Category) error
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// OrderRepository defines order persistence.
type OrderRepository interface {
	// InsertOrderAtomic stores the order header and all of its items, or
	// nothing. It assigns order.ID. A second order for the same
	// (CartToken, CartVersion) fails with ErrDuplicateCheckout.
	InsertOrderAtomic(ctx context.Context, order *models.Order) error
	FindOrderByCheckout(ctx context.Context, cartToken string, cartVersion int64) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
}

// Storage is the contract both persistence backends implement. Callers never
// branch on which backend is behind it.
type Storage interface {
	CatalogRepository
	OrderRepository
	Name() string
	Close(ctx context.Context) error
}
