package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status constants
const (
	OrderStatusProcessing = "processing"

	OrderPaymentStatusAuthorized = "authorized"
	OrderPaymentStatusPaid       = "paid"

	OrderFulfillmentStatusUnfulfilled = "unfulfilled"
)

// Order represents a committed checkout order
type Order struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OrderNumber string    `db:"order_number" json:"order_number"`
	DisplayID   int64     `db:"display_id" json:"display_id"`

	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	OfferID    uuid.UUID `db:"offer_id" json:"offer_id"`

	Status            string `db:"status" json:"status"`
	PaymentStatus     string `db:"payment_status" json:"payment_status"`
	FulfillmentStatus string `db:"fulfillment_status" json:"fulfillment_status"`

	Subtotal decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount decimal.Decimal `db:"discount" json:"discount"`
	Shipping decimal.Decimal `db:"shipping" json:"shipping"`
	Tax      decimal.Decimal `db:"tax" json:"tax"`
	Total    decimal.Decimal `db:"total" json:"total"`
	Currency string          `db:"currency" json:"currency"`

	ShippingAddressID uuid.UUID `db:"shipping_address_id" json:"shipping_address_id"`
	BillingAddressID  uuid.UUID `db:"billing_address_id" json:"billing_address_id"`
	PaymentMethodID   uuid.UUID `db:"payment_method_id" json:"payment_method_id"`

	Metadata JSONB `db:"metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is the product/offer snapshot line of an order
type OrderItem struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	OrderID   uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID uuid.UUID       `db:"product_id" json:"product_id"`
	OfferID   uuid.UUID       `db:"offer_id" json:"offer_id"`
	Name      string          `db:"name" json:"name"`
	SKU       string          `db:"sku" json:"sku"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Display ids come from a sequence seeded above 1000, so order numbers are
// unique under concurrent commits. The funnel this replaces computed
// max(display_id)+1 in application code, which could hand the same number
// to two simultaneous orders.
const sqlNextOrderDisplayID = `SELECT nextval('order_display_id_seq');`

const sqlCreateOrder = `
	INSERT INTO orders (order_number, display_id, customer_id, campaign_id, offer_id,
	                    status, payment_status, fulfillment_status,
	                    subtotal, discount, shipping, tax, total, currency,
	                    shipping_address_id, billing_address_id, payment_method_id, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING id, order_number, display_id, customer_id, campaign_id, offer_id,
	          status, payment_status, fulfillment_status,
	          subtotal, discount, shipping, tax, total, currency,
	          shipping_address_id, billing_address_id, payment_method_id, metadata,
	          created_at, updated_at;
`

const sqlCreateOrderItem = `
	INSERT INTO order_items (order_id, product_id, offer_id, name, sku, quantity, unit_price, total)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, order_id, product_id, offer_id, name, sku, quantity, unit_price, total, created_at;
`

// CommitOrderParams carries everything the commit sequence materializes
// after an approved gateway result.
type CommitOrderParams struct {
	Customer   Customer
	CampaignID uuid.UUID
	OfferID    uuid.UUID
	GatewayID  uuid.UUID

	// Item snapshot
	ProductID uuid.UUID
	ItemName  string
	ItemSKU   string
	Quantity  int
	UnitPrice decimal.Decimal

	// Totals
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Currency string

	// authorize vs purchase outcome
	PaymentStatus   string
	TransactionType string

	// Tokenized payment method
	PaymentToken string
	CardType     string
	CardLast4    string
	CardExpMonth int
	CardExpYear  int

	// Gateway response metadata for the succeeded transaction row
	GatewayTxnToken *string
	ResponseCode    *string
	ResponseMessage *string
	AVSCode         *string
	CVVCode         *string

	RetryAttempt  *int
	OrderMetadata JSONB
}

// CommitOrderResult aggregates every row the commit created
type CommitOrderResult struct {
	Order           Order
	Item            OrderItem
	Transaction     Transaction
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   PaymentMethod
}

// CommitOrder materializes the full order cascade in one database
// transaction: addresses, payment method, order, line item, succeeded
// transaction, customer conversion and the daily campaign rollup. Any
// failure rolls the whole cascade back so an approved charge can never
// leave half the records behind.
func (s *Store) CommitOrder(ctx context.Context, params CommitOrderParams) (CommitOrderResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	customer := params.Customer

	shippingAddress, err := createAddress(ctx, tx, CreateAddressParams{
		CustomerID: customer.ID,
		Kind:       AddressKindShipping,
		FirstName:  customer.ShipFirstName,
		LastName:   customer.ShipLastName,
		Address1:   customer.ShipAddress1,
		Address2:   customer.ShipAddress2,
		City:       customer.ShipCity,
		State:      customer.ShipState,
		PostalCode: customer.ShipPostalCode,
		Country:    customer.ShipCountry,
	})
	if err != nil {
		return CommitOrderResult{}, err
	}

	// Billing aliases the shipping row unless the customer entered a
	// separate billing address during the funnel steps.
	billingAddress := shippingAddress
	if !customer.BillSameAsShip {
		billingAddress, err = createAddress(ctx, tx, CreateAddressParams{
			CustomerID: customer.ID,
			Kind:       AddressKindBilling,
			FirstName:  stringOrEmpty(customer.BillFirstName),
			LastName:   stringOrEmpty(customer.BillLastName),
			Address1:   stringOrEmpty(customer.BillAddress1),
			Address2:   customer.BillAddress2,
			City:       stringOrEmpty(customer.BillCity),
			State:      stringOrEmpty(customer.BillState),
			PostalCode: stringOrEmpty(customer.BillPostalCode),
			Country:    stringOrEmpty(customer.BillCountry),
		})
		if err != nil {
			return CommitOrderResult{}, err
		}
	}

	paymentMethod, err := createPaymentMethod(ctx, tx, CreatePaymentMethodParams{
		CustomerID:   customer.ID,
		Token:        params.PaymentToken,
		CardType:     params.CardType,
		CardLast4:    params.CardLast4,
		CardExpMonth: params.CardExpMonth,
		CardExpYear:  params.CardExpYear,
	})
	if err != nil {
		return CommitOrderResult{}, err
	}

	var displayID int64
	if err := tx.GetContext(ctx, &displayID, sqlNextOrderDisplayID); err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to get next order display id: %w", err)
	}
	orderNumber := FormatOrderNumber(displayID)

	var order Order
	err = tx.GetContext(ctx, &order, sqlCreateOrder,
		orderNumber,
		displayID,
		customer.ID,
		params.CampaignID,
		params.OfferID,
		OrderStatusProcessing,
		params.PaymentStatus,
		OrderFulfillmentStatusUnfulfilled,
		params.Subtotal,
		params.Discount,
		params.Shipping,
		params.Tax,
		params.Total,
		params.Currency,
		shippingAddress.ID,
		billingAddress.ID,
		paymentMethod.ID,
		params.OrderMetadata,
	)
	if err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	var item OrderItem
	err = tx.GetContext(ctx, &item, sqlCreateOrderItem,
		order.ID,
		params.ProductID,
		params.OfferID,
		params.ItemName,
		params.ItemSKU,
		params.Quantity,
		params.UnitPrice,
		params.UnitPrice.Mul(decimal.NewFromInt(int64(params.Quantity))),
	)
	if err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to create order item: %w", err)
	}

	txn, err := createTransaction(ctx, tx, CreateTransactionParams{
		OrderID:         &order.ID,
		CustomerID:      customer.ID,
		GatewayID:       params.GatewayID,
		Type:            params.TransactionType,
		Status:          TransactionStatusSucceeded,
		Amount:          params.Total,
		Currency:        params.Currency,
		GatewayTxnToken: params.GatewayTxnToken,
		ResponseCode:    params.ResponseCode,
		ResponseMessage: params.ResponseMessage,
		AVSCode:         params.AVSCode,
		CVVCode:         params.CVVCode,
		RetryAttempt:    params.RetryAttempt,
	})
	if err != nil {
		return CommitOrderResult{}, err
	}

	// Conversion is guarded on the processing permit and on first_order_id
	// being unset. Zero rows here means another request converted this
	// customer first; the whole cascade rolls back.
	result, err := tx.ExecContext(ctx, sqlConvertCustomer,
		CustomerStatusCustomer,
		order.ID,
		params.Total,
		customer.ID,
		CustomerStatusProcessing,
	)
	if err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to convert customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return CommitOrderResult{}, ErrStatusConflict
	}

	_, err = tx.ExecContext(ctx, sqlIncrementDailyOrderStats,
		params.CampaignID,
		time.Now().UTC().Truncate(24*time.Hour),
		params.Total,
	)
	if err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to increment daily order stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CommitOrderResult{}, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return CommitOrderResult{
		Order:           order,
		Item:            item,
		Transaction:     txn,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		PaymentMethod:   paymentMethod,
	}, nil
}

// FormatOrderNumber renders a display id as a customer-facing order number,
// e.g. ORD-00001001.
func FormatOrderNumber(displayID int64) string {
	return fmt.Sprintf("ORD-%08d", displayID)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
