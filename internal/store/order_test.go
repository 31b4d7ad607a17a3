package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFixture() CommitOrderParams {
	customerID := uuid.New()
	return CommitOrderParams{
		Customer: Customer{
			ID:             customerID,
			Email:          "jane@example.com",
			Status:         CustomerStatusPartial,
			ShipFirstName:  "Jane",
			ShipLastName:   "Doe",
			ShipAddress1:   "1 Main St",
			ShipCity:       "Austin",
			ShipState:      "TX",
			ShipPostalCode: "78701",
			ShipCountry:    "US",
			BillSameAsShip: true,
		},
		CampaignID: uuid.New(),
		OfferID:    uuid.New(),
		GatewayID:  uuid.New(),

		ProductID: uuid.New(),
		ItemName:  "Starter Kit",
		ItemSKU:   "KIT-001",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("29.99"),

		Subtotal: decimal.RequireFromString("29.99"),
		Discount: decimal.Zero,
		Shipping: decimal.RequireFromString("5.00"),
		Tax:      decimal.Zero,
		Total:    decimal.RequireFromString("34.99"),
		Currency: "USD",

		PaymentStatus:   OrderPaymentStatusPaid,
		TransactionType: TransactionTypePurchase,

		PaymentToken: "tok_4242424242421111",
		CardType:     "visa",
		CardLast4:    "1111",
		CardExpMonth: 12,
		CardExpYear:  2028,
	}
}

// expectCommitCascade queues every statement of the commit transaction up to
// and including the succeeded transaction insert.
func expectCommitCascade(mock sqlmock.Sqlmock, params CommitOrderParams) (orderID uuid.UUID) {
	now := time.Now()
	customer := params.Customer
	addressID := uuid.New()
	paymentMethodID := uuid.New()
	orderID = uuid.New()

	mock.ExpectBegin()

	mock.ExpectQuery("INSERT INTO addresses").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "kind", "first_name", "last_name", "address1", "address2",
			"city", "state", "postal_code", "country", "created_at",
		}).AddRow(addressID.String(), customer.ID.String(), AddressKindShipping,
			customer.ShipFirstName, customer.ShipLastName, customer.ShipAddress1, nil,
			customer.ShipCity, customer.ShipState, customer.ShipPostalCode, customer.ShipCountry, now))

	mock.ExpectQuery("INSERT INTO payment_methods").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "token", "card_type", "card_last4", "card_exp_month",
			"card_exp_year", "is_default", "is_active", "created_at", "updated_at",
		}).AddRow(paymentMethodID.String(), customer.ID.String(), params.PaymentToken,
			params.CardType, params.CardLast4, params.CardExpMonth, params.CardExpYear,
			true, true, now, now))

	mock.ExpectQuery("SELECT nextval").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(1001)))

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_number", "display_id", "customer_id", "campaign_id", "offer_id",
			"status", "payment_status", "fulfillment_status",
			"subtotal", "discount", "shipping", "tax", "total", "currency",
			"shipping_address_id", "billing_address_id", "payment_method_id", "metadata",
			"created_at", "updated_at",
		}).AddRow(orderID.String(), "ORD-00001001", int64(1001), customer.ID.String(),
			params.CampaignID.String(), params.OfferID.String(),
			OrderStatusProcessing, params.PaymentStatus, OrderFulfillmentStatusUnfulfilled,
			"29.99", "0", "5.00", "0", "34.99", "USD",
			addressID.String(), addressID.String(), paymentMethodID.String(), nil,
			now, now))

	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "product_id", "offer_id", "name", "sku",
			"quantity", "unit_price", "total", "created_at",
		}).AddRow(uuid.New().String(), orderID.String(), params.ProductID.String(),
			params.OfferID.String(), params.ItemName, params.ItemSKU,
			params.Quantity, "29.99", "29.99", now))

	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "customer_id", "gateway_id", "type", "status", "amount", "currency",
			"gateway_txn_token", "response_code", "response_message", "avs_code", "cvv_code",
			"error_detail", "retry_attempt", "metadata", "created_at",
		}).AddRow(uuid.New().String(), orderID.String(), customer.ID.String(), params.GatewayID.String(),
			params.TransactionType, TransactionStatusSucceeded, "34.99", "USD",
			nil, nil, nil, nil, nil, nil, nil, nil, now))

	return orderID
}

func TestCommitOrder(t *testing.T) {
	s, mock := newMockStore(t)
	params := commitFixture()

	orderID := expectCommitCascade(mock, params)

	mock.ExpectExec("UPDATE customers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO campaign_analytics").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := s.CommitOrder(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, orderID.String(), result.Order.ID.String())
	assert.Equal(t, "ORD-00001001", result.Order.OrderNumber)
	assert.Equal(t, TransactionStatusSucceeded, result.Transaction.Status)
	// BillSameAsShip aliases the billing address to the shipping row.
	assert.Equal(t, result.ShippingAddress.ID, result.BillingAddress.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitOrderConversionConflictRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	params := commitFixture()

	expectCommitCascade(mock, params)

	// Another request already converted this customer; the guarded update
	// matches nothing and the whole cascade must roll back.
	mock.ExpectExec("UPDATE customers").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.CommitOrder(context.Background(), params)
	assert.ErrorIs(t, err, ErrStatusConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-00001001", FormatOrderNumber(1001))
	assert.Equal(t, "ORD-00000001", FormatOrderNumber(1))
	assert.Equal(t, "ORD-123456789", FormatOrderNumber(123456789))
}
