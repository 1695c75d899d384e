package services

import (
	"context"
	"sort"

	"organica/internal/models"
	"organica/internal/repositories"
)

const (
	defaultPageSize = 24
	maxPageSize     = 48
	topProductCount = 9
)

// topProductSlugs is the curated order of the storefront's top products.
var topProductSlugs = []string{
	"fresh-orangey", "key-lime", "fresh-watermelon", "pomagranate-fruit",
	"lens-results-broccoli", "lens-results-spinach", "leaf-lettuce",
	"beef-steak", "salmon-fillet",
}

// ProductService handles catalog browsing.
type ProductService struct {
	repo repositories.CatalogRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.CatalogRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns one page of active products. page starts at 1; limit
// defaults to 24 and is capped at 48.
func (s *ProductService) ListProducts(ctx context.Context, category string, page, limit int) ([]models.ProductCard, error) {
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page < 1 {
		page = 1
	}

	products, err := s.repo.ListProducts(ctx, models.ProductQuery{
		CategorySlug: category,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return toCards(products), nil
}

// TopProducts returns up to nine active products in curated slug order.
// Uncurated products follow, newest id first.
func (s *ProductService) TopProducts(ctx context.Context) ([]models.ProductCard, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}

	rank := make(map[string]int, len(topProductSlugs))
	for i, slug := range topProductSlugs {
		rank[slug] = i
	}
	rankOf := func(p models.Product) int {
		if r, ok := rank[p.Slug]; ok {
			return r
		}
		return len(topProductSlugs)
	}

	sort.SliceStable(products, func(i, j int) bool {
		ri, rj := rankOf(products[i]), rankOf(products[j])
		if ri != rj {
			return ri < rj
		}
		return products[i].ID > products[j].ID
	})
	if len(products) > topProductCount {
		products = products[:topProductCount]
	}
	return toCards(products), nil
}

// ListCategories returns all categories.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}

// Stats counts the catalog for the health check.
func (s *ProductService) Stats(ctx context.Context) (*models.CatalogStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, storageErr("count catalog", err)
	}
	return stats, nil
}

func toCards(products []models.Product) []models.ProductCard {
	cards := make([]models.ProductCard, 0, len(products))
	for i := range products {
		cards = append(cards, products[i].Card())
	}
	return cards
}
