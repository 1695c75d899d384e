package services

import (
	"context"
	"fmt"

	"organica/internal/models"
	"organica/internal/repositories"

	"go.uber.org/zap"
)

func usd(v float64) *float64 { return &v }

var seedCategories = []models.Category{
	{Name: "Fruits", Slug: "fruits", SortOrder: 1},
	{Name: "Vegetables", Slug: "vegetables", SortOrder: 2},
	{Name: "Meat & Fish", Slug: "meat-fish", SortOrder: 3},
}

var seedProducts = []models.Product{
	{Name: "Fresh Orangey", Slug: "fresh-orangey", Price: 85.00, CompareAt: usd(75.00), Image: "./assets/images/product-1.png", CategorySlug: "fruits"},
	{Name: "Key Lime", Slug: "key-lime", Price: 85.00, CompareAt: usd(75.00), Image: "./assets/images/product-2.png", CategorySlug: "fruits"},
	{Name: "Fresh Watermelon", Slug: "fresh-watermelon", Price: 85.00, CompareAt: usd(75.00), Image: "./assets/images/product-3.png", CategorySlug: "fruits"},
	{Name: "Pomagranate Fruit", Slug: "pomagranate-fruit", Price: 85.00, CompareAt: usd(75.00), Image: "./assets/images/product-4.png", CategorySlug: "fruits"},
	{Name: "Lens Results Broccoli", Slug: "lens-results-broccoli", Price: 85.00, Image: "./assets/images/product-5.png", CategorySlug: "vegetables"},
	{Name: "Lens Results Spinach", Slug: "lens-results-spinach", Price: 85.00, Image: "./assets/images/product-6.png", CategorySlug: "vegetables"},
	{Name: "Leaf Lettuce", Slug: "leaf-lettuce", Price: 85.00, Image: "./assets/images/product-7.png", CategorySlug: "vegetables"},
	{Name: "Beef Steak", Slug: "beef-steak", Price: 85.00, Image: "./assets/images/product-8.png", CategorySlug: "meat-fish"},
	{Name: "Salmon Fillet", Slug: "salmon-fillet", Price: 85.00, Image: "./assets/images/product-9.png", CategorySlug: "meat-fish"},
}

// SeedCatalog fills an empty catalog with the demo categories and products.
// A catalog that already has products is left alone.
func SeedCatalog(ctx context.Context, repo repositories.CatalogRepository, logger *zap.Logger) error {
	stats, err := repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to count catalog: %w", err)
	}
	if stats.Products > 0 {
		logger.Info("catalog already seeded", zap.Int64("products", stats.Products))
		return nil
	}

	for i := range seedCategories {
		category := seedCategories[i]
		if err := repo.CreateCategory(ctx, &category); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", category.Slug, err)
		}
	}
	for i := range seedProducts {
		product := seedProducts[i]
		if err := repo.CreateProduct(ctx, &product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", product.Slug, err)
		}
		logger.Debug("seeded product", zap.String("slug", product.Slug), zap.String("id", product.ID))
	}
	logger.Info("catalog seeded", zap.Int("products", len(seedProducts)), zap.Int("categories", len(seedCategories)))
	return nil
}
