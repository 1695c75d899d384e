package models

import "time"

// DefaultProductImage is served for products stored without an image.
const DefaultProductImage = "./assets/images/product-1.png"

// Product statuses. Only active products are listed in the catalog.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product represents a catalog product.
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(200)" validate:"required,min=2,max=200"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;type:varchar(200)" validate:"required"`
	Price        float64   `json:"price" validate:"gte=0"`
	CompareAt    *float64  `json:"compareAt"`
	Image        string    `json:"image"`
	CategorySlug string    `json:"categorySlug" gorm:"index;type:varchar(100)"`
	Status       string    `json:"status" gorm:"index;type:varchar(20);default:active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ImageOrDefault returns the product image, falling back to DefaultProductImage.
func (p *Product) ImageOrDefault() string {
	if p.Image == "" {
		return DefaultProductImage
	}
	return p.Image
}

// Snapshot returns the point-in-time view used for pricing.
func (p *Product) Snapshot() *ProductSnapshot {
	return &ProductSnapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Price:     p.Price,
		ImageRef:  p.ImageOrDefault(),
	}
}

// Card returns the shape the storefront renders product tiles from.
func (p *Product) Card() ProductCard {
	return ProductCard{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CompareAt: p.CompareAt,
		Image:     p.ImageOrDefault(),
		Slug:      p.Slug,
	}
}

// ProductSnapshot is a read of a product's price, name and image at the
// moment of pricing. It is never cached.
type ProductSnapshot struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Price     float64 `json:"price"`
	ImageRef  string  `json:"image"`
}

// ProductCard is a product as listed by the catalog endpoints.
type ProductCard struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	CompareAt *float64 `json:"compareAt"`
	Image     string   `json:"image"`
	Slug      string   `json:"slug"`
}

// Category groups products by slug.
type Category struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string `json:"name" gorm:"type:varchar(100)"`
	Slug      string `json:"slug" gorm:"uniqueIndex;type:varchar(100)"`
	SortOrder int    `json:"-"`
}

// ProductQuery filters a catalog listing.
type ProductQuery struct {
	CategorySlug string
	Offset       int
	Limit        int
}

// CatalogStats is reported by the health check.
type CatalogStats struct {
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
}
