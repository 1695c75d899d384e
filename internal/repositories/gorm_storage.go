package repositories

import (
	"context"
	"errors"
	"fmt"

	"organica/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// OpenGORM opens a relational database for the given driver ("postgres" or "sqlite").
func OpenGORM(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// GORMStorage is the relational implementation of Storage.
type GORMStorage struct {
	db *gorm.DB
}

// NewGORMStorage creates a new instance of GORMStorage.
func NewGORMStorage(db *gorm.DB) *GORMStorage {
	return &GORMStorage{
		db: db,
	}
}

// AutoMigrate creates or updates the tables used by the storefront.
func (s *GORMStorage) AutoMigrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Product{},
		&models.Category{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func (s *GORMStorage) Name() string { return "gorm:" + s.db.Dialector.Name() }

// Close closes the underlying connection pool.
func (s *GORMStorage) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// LookupProduct retrieves an active product by its ID.
func (s *GORMStorage) LookupProduct(ctx context.Context, productID string) (*models.ProductSnapshot, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		First(&product, "id = ? AND status = ?", productID, models.ProductStatusActive).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", productID, err)
	}
	return product.Snapshot(), nil
}

// ListProducts returns one page of active products, newest first.
func (s *GORMStorage) ListProducts(ctx context.Context, query models.ProductQuery) ([]models.Product, error) {
	tx := s.db.WithContext(ctx).Where("status = ?", models.ProductStatusActive)
	if query.CategorySlug != "" {
		tx = tx.Where("category_slug = ?", query.CategorySlug)
	}

	var products []models.Product
	err := tx.Order("created_at DESC").Order("id DESC").
		Offset(query.Offset).Limit(query.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListActiveProducts returns every active product, newest first.
func (s *GORMStorage) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ProductStatusActive).
		Order("created_at DESC").Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	return products, nil
}

// ListCategories returns categories by sort order, then name.
func (s *GORMStorage) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a new product in the database.
func (s *GORMStorage) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// CreateCategory creates a new category in the database.
func (s *GORMStorage) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Stats counts products and categories.
func (s *GORMStorage) Stats(ctx context.Context) (*models.CatalogStats, error) {
	var stats models.CatalogStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Product{}).Count(&stats.Products).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := db.Model(&models.Category{}).Count(&stats.Categories).Error; err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	return &stats, nil
}

// InsertOrderAtomic writes the order row and its item rows in one transaction.
func (s *GORMStorage) InsertOrderAtomic(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Order{}).
			Where("cart_token = ? AND cart_version = ?", order.CartToken, order.CartVersion).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateCheckout
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(order.Items) > 0 {
			if err := tx.Create(&order.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		order.ID = ""
		if errors.Is(err, ErrDuplicateCheckout) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// FindOrderByCheckout returns the order placed from the given cart version.
func (s *GORMStorage) FindOrderByCheckout(ctx context.Context, cartToken string, cartVersion int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "cart_token = ? AND cart_version = ?", cartToken, cartVersion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order for cart %s: %w", cartToken, err)
	}
	return &order, nil
}

// GetOrderByID retrieves an order with its items.
func (s *GORMStorage) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}
