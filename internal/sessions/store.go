// Package sessions keeps per-session cart and wishlist state keyed by an
// opaque session id.
//
// Writes replace the whole state, so two concurrent mutations of one
// session resolve as last writer wins. The only conditional write is
// ClearCartIfVersion, used by checkout.
package sessions

import (
	"context"
	"time"

	"organica/internal/models"
)

// DefaultTTL matches the lifetime of the session cookie.
const DefaultTTL = 4 * time.Hour

// Store defines session state persistence.
type Store interface {
	// LoadCart returns the session's cart, or an empty cart if none exists.
	LoadCart(ctx context.Context, sessionID string) (*models.CartState, error)
	SaveCart(ctx context.Context, sessionID string, cart *models.CartState) error
	// ClearCartIfVersion empties the cart only if the stored cart still has
	// token and version, and reports whether it did.
	ClearCartIfVersion(ctx context.Context, sessionID, token string, version int64) (bool, error)

	// LoadWishlist returns the session's wishlist, or an empty one.
	LoadWishlist(ctx context.Context, sessionID string) (*models.WishlistState, error)
	SaveWishlist(ctx context.Context, sessionID string, wishlist *models.WishlistState) error
}
