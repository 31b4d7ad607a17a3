package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Transaction type constants
const (
	TransactionTypeAuthorize = "authorize"
	TransactionTypePurchase  = "purchase"
)

// Transaction status constants
const (
	TransactionStatusSucceeded = "succeeded"
	TransactionStatusDeclined  = "declined"
)

// Transaction is an immutable audit record of one gateway attempt. Every
// attempt writes exactly one row; only succeeded rows carry an order id.
type Transaction struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	OrderID    *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	CustomerID uuid.UUID  `db:"customer_id" json:"customer_id"`
	GatewayID  uuid.UUID  `db:"gateway_id" json:"gateway_id"`

	Type   string          `db:"type" json:"type"`
	Status string          `db:"status" json:"status"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
	Currency string        `db:"currency" json:"currency"`

	GatewayTxnToken *string `db:"gateway_txn_token" json:"gateway_txn_token,omitempty"`
	ResponseCode    *string `db:"response_code" json:"response_code,omitempty"`
	ResponseMessage *string `db:"response_message" json:"response_message,omitempty"`
	AVSCode         *string `db:"avs_code" json:"avs_code,omitempty"`
	CVVCode         *string `db:"cvv_code" json:"cvv_code,omitempty"`
	ErrorDetail     *string `db:"error_detail" json:"error_detail,omitempty"`

	RetryAttempt *int  `db:"retry_attempt" json:"retry_attempt,omitempty"`
	Metadata     JSONB `db:"metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateTransactionParams represents the parameters used to create a transaction
type CreateTransactionParams struct {
	OrderID    *uuid.UUID
	CustomerID uuid.UUID
	GatewayID  uuid.UUID

	Type     string
	Status   string
	Amount   decimal.Decimal
	Currency string

	GatewayTxnToken *string
	ResponseCode    *string
	ResponseMessage *string
	AVSCode         *string
	CVVCode         *string
	ErrorDetail     *string

	RetryAttempt *int
	Metadata     JSONB
}

const sqlCreateTransaction = `
	INSERT INTO transactions (order_id, customer_id, gateway_id, type, status, amount, currency,
	                          gateway_txn_token, response_code, response_message, avs_code, cvv_code,
	                          error_detail, retry_attempt, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id, order_id, customer_id, gateway_id, type, status, amount, currency,
	          gateway_txn_token, response_code, response_message, avs_code, cvv_code,
	          error_detail, retry_attempt, metadata, created_at;
`

func createTransaction(ctx context.Context, ext sqlx.ExtContext, params CreateTransactionParams) (Transaction, error) {
	var txn Transaction
	err := sqlx.GetContext(ctx, ext, &txn, sqlCreateTransaction,
		params.OrderID,
		params.CustomerID,
		params.GatewayID,
		params.Type,
		params.Status,
		params.Amount,
		params.Currency,
		params.GatewayTxnToken,
		params.ResponseCode,
		params.ResponseMessage,
		params.AVSCode,
		params.CVVCode,
		params.ErrorDetail,
		params.RetryAttempt,
		params.Metadata,
	)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}
	return txn, nil
}

// CreateTransaction writes a standalone gateway-attempt record. Declined
// attempts use this path; succeeded attempts are written inside CommitOrder.
func (s *Store) CreateTransaction(ctx context.Context, params CreateTransactionParams) (Transaction, error) {
	return createTransaction(ctx, s.db, params)
}

const sqlListTransactionsByCustomer = `
	SELECT id, order_id, customer_id, gateway_id, type, status, amount, currency,
	       gateway_txn_token, response_code, response_message, avs_code, cvv_code,
	       error_detail, retry_attempt, metadata, created_at
	FROM transactions
	WHERE customer_id = $1
	ORDER BY created_at DESC;
`

// ListTransactionsByCustomer retrieves all gateway attempts for a customer,
// newest first.
func (s *Store) ListTransactionsByCustomer(ctx context.Context, customerID uuid.UUID) ([]Transaction, error) {
	var transactions []Transaction
	err := s.db.SelectContext(ctx, &transactions, sqlListTransactionsByCustomer, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
