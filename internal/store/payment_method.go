package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PaymentMethod is a tokenized card reference. The raw PAN never touches
// this system; only the processor token plus display metadata is stored.
type PaymentMethod struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CustomerID   uuid.UUID `db:"customer_id" json:"customer_id"`
	Token        string    `db:"token" json:"-"`
	CardType     string    `db:"card_type" json:"card_type"`
	CardLast4    string    `db:"card_last4" json:"card_last4"`
	CardExpMonth int       `db:"card_exp_month" json:"card_exp_month"`
	CardExpYear  int       `db:"card_exp_year" json:"card_exp_year"`
	IsDefault    bool      `db:"is_default" json:"is_default"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CreatePaymentMethodParams represents the parameters used to create a payment method
type CreatePaymentMethodParams struct {
	CustomerID   uuid.UUID
	Token        string
	CardType     string
	CardLast4    string
	CardExpMonth int
	CardExpYear  int
}

const sqlCreatePaymentMethod = `
	INSERT INTO payment_methods (customer_id, token, card_type, card_last4, card_exp_month, card_exp_year, is_default, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, true, true)
	RETURNING id, customer_id, token, card_type, card_last4, card_exp_month, card_exp_year, is_default, is_active, created_at, updated_at;
`

// createPaymentMethod inserts a payment method using the given executor so
// it can run inside the order commit transaction.
func createPaymentMethod(ctx context.Context, ext sqlx.ExtContext, params CreatePaymentMethodParams) (PaymentMethod, error) {
	var paymentMethod PaymentMethod
	err := sqlx.GetContext(ctx, ext, &paymentMethod, sqlCreatePaymentMethod,
		params.CustomerID,
		params.Token,
		params.CardType,
		params.CardLast4,
		params.CardExpMonth,
		params.CardExpYear,
	)
	if err != nil {
		return PaymentMethod{}, fmt.Errorf("failed to create payment method: %w", err)
	}
	return paymentMethod, nil
}
