package services

import (
	"context"
	"errors"

	"organica/internal/models"
	"organica/internal/repositories"
	"organica/internal/sessions"
)

// WishlistService handles the session wishlist.
type WishlistService struct {
	catalog  repositories.ProductLookup
	sessions sessions.Store
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(catalog repositories.ProductLookup, store sessions.Store) *WishlistService {
	return &WishlistService{
		catalog:  catalog,
		sessions: store,
	}
}

// Get lists the wishlist at current catalog prices.
func (s *WishlistService) Get(ctx context.Context, sessionID string) (*models.WishlistSummary, error) {
	wishlist, err := s.sessions.LoadWishlist(ctx, sessionID)
	if err != nil {
		return nil, storageErr("load wishlist", err)
	}
	return s.summarize(ctx, wishlist)
}

// Add saves productID. The product must exist; adding twice is a no-op.
func (s *WishlistService) Add(ctx context.Context, sessionID, productID string) (*models.WishlistSummary, error) {
	if productID == "" {
		return nil, ErrMissingProductID
	}
	if _, err := s.catalog.LookupProduct(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("look up product", err)
	}
	return s.mutate(ctx, sessionID, func(w *models.WishlistState) { w.Add(productID) })
}

// Remove drops productID if present.
func (s *WishlistService) Remove(ctx context.Context, sessionID, productID string) (*models.WishlistSummary, error) {
	return s.mutate(ctx, sessionID, func(w *models.WishlistState) { w.Remove(productID) })
}

// Clear empties the wishlist.
func (s *WishlistService) Clear(ctx context.Context, sessionID string) (*models.WishlistSummary, error) {
	return s.mutate(ctx, sessionID, func(w *models.WishlistState) { w.Reset() })
}

func (s *WishlistService) mutate(ctx context.Context, sessionID string, change func(*models.WishlistState)) (*models.WishlistSummary, error) {
	wishlist, err := s.sessions.LoadWishlist(ctx, sessionID)
	if err != nil {
		return nil, storageErr("load wishlist", err)
	}
	change(wishlist)
	if err := s.sessions.SaveWishlist(ctx, sessionID, wishlist); err != nil {
		return nil, storageErr("save wishlist", err)
	}
	return s.summarize(ctx, wishlist)
}

func (s *WishlistService) summarize(ctx context.Context, wishlist *models.WishlistState) (*models.WishlistSummary, error) {
	summary := &models.WishlistSummary{Items: []models.WishlistItem{}}
	for _, id := range wishlist.ProductIDs {
		product, err := s.catalog.LookupProduct(ctx, id)
		if errors.Is(err, repositories.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, storageErr("look up product", err)
		}
		summary.Items = append(summary.Items, models.WishlistItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     product.ImageRef,
			Price:     product.Price,
		})
	}
	return summary, nil
}
