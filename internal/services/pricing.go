package services

import (
	"context"
	"errors"
	"math"

	"organica/internal/models"
	"organica/internal/repositories"
)

// FlatShipping is charged once for any non-empty cart.
const FlatShipping = 10.00

// round2 rounds half away from zero to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PriceCart turns cart into a CartSummary using current catalog prices.
//
// Lines whose product no longer exists are left out of the summary but not
// removed from cart. Quantities below 1 are read as 1. Line totals, the
// subtotal and the total are each rounded to cents, in that order.
// PriceCart never writes.
func PriceCart(ctx context.Context, lookup repositories.ProductLookup, cart *models.CartState) (*models.CartSummary, error) {
	summary := &models.CartSummary{Items: []models.LineItem{}}

	var subtotal float64
	for _, line := range cart.Lines {
		product, err := lookup.LookupProduct(ctx, line.ProductID)
		if errors.Is(err, repositories.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, storageErr("price cart", err)
		}

		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		lineTotal := round2(product.Price * float64(qty))
		subtotal += lineTotal

		summary.Items = append(summary.Items, models.LineItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     product.ImageRef,
			Price:     product.Price,
			Quantity:  qty,
			LineTotal: lineTotal,
		})
	}

	summary.Subtotal = round2(subtotal)
	if len(summary.Items) > 0 {
		summary.Shipping = FlatShipping
	}
	summary.Total = round2(summary.Subtotal + summary.Shipping)
	return summary, nil
}
