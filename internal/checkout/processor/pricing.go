package processor

import (
	"commerce-server/internal/store"

	"github.com/shopspring/decimal"
)

// Totals is the monetary breakdown of a checkout.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ResolveTotals computes order totals from the offer/product snapshot, or
// honors totals an earlier pricing step already computed. Pure function:
// a zero-value offer/product yields zero totals and the caller decides
// whether that is acceptable.
func ResolveTotals(offer store.Offer, product store.Product, supplied *Totals) Totals {
	if supplied != nil {
		totals := *supplied
		if totals.Total.IsZero() {
			totals.Total = totals.Subtotal.Sub(totals.Discount).Add(totals.Shipping).Add(totals.Tax)
		}
		return totals
	}

	subtotal := product.Price
	if offer.PriceOverride != nil {
		subtotal = *offer.PriceOverride
	}

	shipping := product.ShippingCost
	if offer.ShipPrice != nil {
		shipping = *offer.ShipPrice
	}

	totals := Totals{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Shipping: shipping,
		Tax:      decimal.Zero,
	}
	totals.Total = totals.Subtotal.Sub(totals.Discount).Add(totals.Shipping).Add(totals.Tax)
	return totals
}
