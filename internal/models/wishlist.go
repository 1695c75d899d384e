package models

// WishlistState is the ordered set of product ids a session saved for later.
type WishlistState struct {
	ProductIDs []string `json:"productIds"`
}

// NewWishlistState returns an empty wishlist.
func NewWishlistState() *WishlistState {
	return &WishlistState{ProductIDs: []string{}}
}

// Contains reports whether productID is in the wishlist.
func (w *WishlistState) Contains(productID string) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Add inserts productID unless already present.
func (w *WishlistState) Add(productID string) {
	if w.Contains(productID) {
		return
	}
	w.ProductIDs = append(w.ProductIDs, productID)
}

// Remove deletes productID if present.
func (w *WishlistState) Remove(productID string) {
	for i, id := range w.ProductIDs {
		if id == productID {
			w.ProductIDs = append(w.ProductIDs[:i], w.ProductIDs[i+1:]...)
			return
		}
	}
}

// Reset empties the wishlist.
func (w *WishlistState) Reset() {
	w.ProductIDs = []string{}
}

// WishlistItem is a wishlist product at current catalog price.
type WishlistItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
}

// WishlistSummary lists the products a wishlist currently refers to.
type WishlistSummary struct {
	Items []WishlistItem `json:"items"`
}
