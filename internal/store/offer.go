package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer references a product with campaign-specific pricing overrides
type Offer struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	CampaignID    uuid.UUID        `db:"campaign_id" json:"campaign_id"`
	ProductID     uuid.UUID        `db:"product_id" json:"product_id"`
	GatewayID     *uuid.UUID       `db:"gateway_id" json:"gateway_id,omitempty"`
	Name          string           `db:"name" json:"name"`
	PriceOverride *decimal.Decimal `db:"price_override" json:"price_override,omitempty"`
	ShipPrice     *decimal.Decimal `db:"ship_price" json:"ship_price,omitempty"`
	QtyPerOrder   int              `db:"qty_per_order" json:"qty_per_order"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// Product is the catalog item an offer sells
type Product struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	SKU          string          `db:"sku" json:"sku"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ShippingCost decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

const sqlGetOfferByID = `
	SELECT id, campaign_id, product_id, gateway_id, name, price_override, ship_price,
	       qty_per_order, created_at, updated_at
	FROM offers
	WHERE id = $1;
`

// GetOfferByID retrieves an offer by ID
func (s *Store) GetOfferByID(ctx context.Context, offerID uuid.UUID) (Offer, error) {
	var offer Offer
	err := s.db.GetContext(ctx, &offer, sqlGetOfferByID, offerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Offer{}, ErrNotFound
		}
		return Offer{}, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

const sqlGetProductByID = `
	SELECT id, name, sku, price, shipping_cost, created_at, updated_at
	FROM products
	WHERE id = $1;
`

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, productID uuid.UUID) (Product, error) {
	var product Product
	err := s.db.GetContext(ctx, &product, sqlGetProductByID, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}
