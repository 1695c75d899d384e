package models

import "github.com/google/uuid"

// CartLine is one requested product in a cart.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartState maps product ids to requested quantities for one session.
// Lines keep the order in which products were first added. A removed
// product has no line; quantities are never stored below 1.
//
// Version grows on every change, including Reset, so that a checkout can
// tell whether the cart it priced is still the current one. Token is random
// and replaced on Reset; orders are keyed by (Token, Version), which stays
// unique even when session state is lost and Version starts over.
type CartState struct {
	Lines   []CartLine `json:"lines"`
	Version int64      `json:"version"`
	Token   string     `json:"token"`
}

// NewCartState returns an empty cart with a fresh token.
func NewCartState() *CartState {
	return &CartState{Lines: []CartLine{}, Token: uuid.NewString()}
}

// IsEmpty reports whether the cart has no lines.
func (c *CartState) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity returns the stored quantity for productID.
func (c *CartState) Quantity(productID string) (int, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity, true
		}
	}
	return 0, false
}

// Set stores qty for productID, clamped to at least 1. An existing line
// keeps its position; a new one is appended.
func (c *CartState) Set(productID string, qty int) {
	if qty < 1 {
		qty = 1
	}
	c.Version++
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = qty
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: qty})
}

// Delete removes productID and reports whether it was present.
func (c *CartState) Delete(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.Version++
			return true
		}
	}
	return false
}

// Reset empties the cart.
func (c *CartState) Reset() {
	c.Lines = []CartLine{}
	c.Version++
	c.Token = uuid.NewString()
}

// Clone returns a deep copy.
func (c *CartState) Clone() *CartState {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return &CartState{Lines: lines, Version: c.Version, Token: c.Token}
}

// LineItem is one priced row of a CartSummary.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

// CartSummary is the priced view of a CartState.
type CartSummary struct {
	Items    []LineItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Shipping float64    `json:"shipping"`
	Total    float64    `json:"total"`
}
