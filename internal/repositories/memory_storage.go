package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"organica/internal/models"

	"github.com/google/uuid"
)

type checkoutKey struct {
	cartToken   string
	cartVersion int64
}

// MemoryStorage is an in-memory implementation of Storage, used for local
// development and tests.
type MemoryStorage struct {
	mu         sync.RWMutex
	products   map[string]models.Product
	categories []models.Category
	orders     map[string]models.Order
	checkouts  map[checkoutKey]string
	seq        int64

	// FailInserts makes InsertOrderAtomic fail, for exercising error paths.
	FailInserts error
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		products:  make(map[string]models.Product),
		orders:    make(map[string]models.Order),
		checkouts: make(map[checkoutKey]string),
	}
}

func (s *MemoryStorage) Name() string { return "memory" }

func (s *MemoryStorage) Close(_ context.Context) error { return nil }

// LookupProduct returns an active product by its ID.
func (s *MemoryStorage) LookupProduct(_ context.Context, productID string) (*models.ProductSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok || product.Status != models.ProductStatusActive {
		return nil, ErrProductNotFound
	}
	return product.Snapshot(), nil
}

// ListProducts returns one page of active products, newest first.
func (s *MemoryStorage) ListProducts(ctx context.Context, query models.ProductQuery) ([]models.Product, error) {
	all, _ := s.ListActiveProducts(ctx)

	filtered := make([]models.Product, 0, len(all))
	for _, p := range all {
		if query.CategorySlug == "" || p.CategorySlug == query.CategorySlug {
			filtered = append(filtered, p)
		}
	}
	if query.Offset >= len(filtered) {
		return []models.Product{}, nil
	}
	end := len(filtered)
	if query.Limit > 0 && query.Offset+query.Limit < end {
		end = query.Offset + query.Limit
	}
	return filtered[query.Offset:end], nil
}

// ListActiveProducts returns every active product, newest first.
func (s *MemoryStorage) ListActiveProducts(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Status == models.ProductStatusActive {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
	return products, nil
}

// ListCategories returns categories by sort order, then name.
func (s *MemoryStorage) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]models.Category, len(s.categories))
	copy(categories, s.categories)
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// CreateProduct adds a new product.
func (s *MemoryStorage) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	if product.CreatedAt.IsZero() {
		// Strictly increasing so "newest first" is deterministic.
		s.seq++
		product.CreatedAt = time.Unix(0, 0).Add(time.Duration(s.seq) * time.Millisecond)
	}
	s.products[product.ID] = *product
	return nil
}

// UpdateProduct replaces a stored product.
func (s *MemoryStorage) UpdateProduct(product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrProductNotFound)
	}
	s.products[product.ID] = *product
	return nil
}

// DeleteProduct removes a product by its ID.
func (s *MemoryStorage) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrProductNotFound)
	}
	delete(s.products, id)
	return nil
}

// CreateCategory adds a new category.
func (s *MemoryStorage) CreateCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	s.categories = append(s.categories, *category)
	return nil
}

// Stats counts products and categories.
func (s *MemoryStorage) Stats(_ context.Context) (*models.CatalogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.CatalogStats{
		Products:   int64(len(s.products)),
		Categories: int64(len(s.categories)),
	}, nil
}

// InsertOrderAtomic stores the order with its items under a single lock.
func (s *MemoryStorage) InsertOrderAtomic(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInserts != nil {
		return fmt.Errorf("failed to insert order: %w", s.FailInserts)
	}
	key := checkoutKey{order.CartToken, order.CartVersion}
	if _, ok := s.checkouts[key]; ok {
		return ErrDuplicateCheckout
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	stored := *order
	stored.Items = make([]models.OrderItem, len(order.Items))
	copy(stored.Items, order.Items)
	for i := range stored.Items {
		stored.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = stored
	s.checkouts[key] = order.ID
	return nil
}

// FindOrderByCheckout returns the order placed from the given cart version.
func (s *MemoryStorage) FindOrderByCheckout(ctx context.Context, cartToken string, cartVersion int64) (*models.Order, error) {
	s.mu.RLock()
	id, ok := s.checkouts[checkoutKey{cartToken, cartVersion}]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	return s.GetOrderByID(ctx, id)
}

// GetOrderByID returns an order by its ID.
func (s *MemoryStorage) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return &order, nil
}

// OrderCount returns the number of stored orders.
func (s *MemoryStorage) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
