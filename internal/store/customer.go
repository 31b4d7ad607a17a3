package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer funnel status constants
const (
	CustomerStatusProspect  = "prospect"
	CustomerStatusLead      = "lead"
	CustomerStatusPartial   = "partial"
	CustomerStatusCustomer  = "customer"
	CustomerStatusDeclined  = "declined"
	CustomerStatusCancelled = "cancelled"
	CustomerStatusRefunded  = "refunded"

	// CustomerStatusProcessing is a transient state held only while a
	// checkout attempt is in flight. It acts as the permit that keeps two
	// concurrent attempts for the same customer from both reaching the
	// gateway.
	CustomerStatusProcessing = "processing"
)

// Customer represents a lead/customer record moving through the checkout funnel
type Customer struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Email string    `db:"email" json:"email"`

	Status            string  `db:"status" json:"status"`
	DeclineCount      int     `db:"decline_count" json:"decline_count"`
	LastDeclineReason *string `db:"last_decline_reason" json:"last_decline_reason,omitempty"`
	LastDeclineCode   *string `db:"last_decline_code" json:"last_decline_code,omitempty"`

	SourceCampaignID uuid.UUID  `db:"source_campaign_id" json:"source_campaign_id"`
	SourceOfferID    uuid.UUID  `db:"source_offer_id" json:"source_offer_id"`
	IPAddress        *string    `db:"ip_address" json:"ip_address,omitempty"`

	// Address snapshot captured during the lead-capture steps
	ShipFirstName  string  `db:"ship_first_name" json:"ship_first_name"`
	ShipLastName   string  `db:"ship_last_name" json:"ship_last_name"`
	ShipAddress1   string  `db:"ship_address1" json:"ship_address1"`
	ShipAddress2   *string `db:"ship_address2" json:"ship_address2,omitempty"`
	ShipCity       string  `db:"ship_city" json:"ship_city"`
	ShipState      string  `db:"ship_state" json:"ship_state"`
	ShipPostalCode string  `db:"ship_postal_code" json:"ship_postal_code"`
	ShipCountry    string  `db:"ship_country" json:"ship_country"`

	BillSameAsShip bool    `db:"bill_same_as_ship" json:"bill_same_as_ship"`
	BillFirstName  *string `db:"bill_first_name" json:"bill_first_name,omitempty"`
	BillLastName   *string `db:"bill_last_name" json:"bill_last_name,omitempty"`
	BillAddress1   *string `db:"bill_address1" json:"bill_address1,omitempty"`
	BillAddress2   *string `db:"bill_address2" json:"bill_address2,omitempty"`
	BillCity       *string `db:"bill_city" json:"bill_city,omitempty"`
	BillState      *string `db:"bill_state" json:"bill_state,omitempty"`
	BillPostalCode *string `db:"bill_postal_code" json:"bill_postal_code,omitempty"`
	BillCountry    *string `db:"bill_country" json:"bill_country,omitempty"`

	FirstOrderID  *uuid.UUID      `db:"first_order_id" json:"first_order_id,omitempty"`
	ConvertedAt   *time.Time      `db:"converted_at" json:"converted_at,omitempty"`
	LifetimeValue decimal.Decimal `db:"lifetime_value" json:"lifetime_value"`
	TotalOrders   int             `db:"total_orders" json:"total_orders"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const customerColumns = `id, email, status, decline_count, last_decline_reason, last_decline_code,
       source_campaign_id, source_offer_id, ip_address,
       ship_first_name, ship_last_name, ship_address1, ship_address2, ship_city, ship_state,
       ship_postal_code, ship_country,
       bill_same_as_ship, bill_first_name, bill_last_name, bill_address1, bill_address2, bill_city,
       bill_state, bill_postal_code, bill_country,
       first_order_id, converted_at, lifetime_value, total_orders, created_at, updated_at`

const sqlGetCustomerByID = `
	SELECT ` + customerColumns + `
	FROM customers
	WHERE id = $1;
`

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, customerID uuid.UUID) (Customer, error) {
	var customer Customer
	err := s.db.GetContext(ctx, &customer, sqlGetCustomerByID, customerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

const sqlBeginCheckout = `
	UPDATE customers
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3;
`

// BeginCheckout moves a customer from the expected funnel status into the
// transient processing status. The conditional update is the double-submit
// guard: whichever request loses the race sees zero affected rows and gets
// ErrStatusConflict.
func (s *Store) BeginCheckout(ctx context.Context, customerID uuid.UUID, expectedStatus string) error {
	result, err := s.db.ExecContext(ctx, sqlBeginCheckout, CustomerStatusProcessing, customerID, expectedStatus)
	if err != nil {
		return fmt.Errorf("failed to begin checkout: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

const sqlRestoreCheckoutStatus = `
	UPDATE customers
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3;
`

// RestoreCheckoutStatus returns a customer from processing to a prior status
// without touching decline bookkeeping. Used when an attempt aborts before
// any gateway call was made.
func (s *Store) RestoreCheckoutStatus(ctx context.Context, customerID uuid.UUID, status string) error {
	result, err := s.db.ExecContext(ctx, sqlRestoreCheckoutStatus, status, customerID, CustomerStatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to restore checkout status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

const sqlRecordDecline = `
	UPDATE customers
	SET status = $1,
	    decline_count = decline_count + 1,
	    last_decline_reason = $2,
	    last_decline_code = $3,
	    updated_at = NOW()
	WHERE id = $4
	RETURNING decline_count;
`

// RecordDecline marks a customer declined and bumps the decline counter.
// decline_count only ever increases; there is no reset path.
func (s *Store) RecordDecline(ctx context.Context, customerID uuid.UUID, reason, code string) (int, error) {
	var declineCount int
	err := s.db.GetContext(ctx, &declineCount, sqlRecordDecline, CustomerStatusDeclined, reason, code, customerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to record decline: %w", err)
	}
	return declineCount, nil
}

const sqlConvertCustomer = `
	UPDATE customers
	SET status = $1,
	    first_order_id = $2,
	    converted_at = NOW(),
	    lifetime_value = $3,
	    total_orders = 1,
	    updated_at = NOW()
	WHERE id = $4 AND status = $5 AND first_order_id IS NULL;
`

// Conversion happens inside the order commit transaction; see CommitOrder.
// lifetime_value/total_orders are written, not accumulated: the status and
// first_order_id guards make this statement reachable at most once per
// customer, so the two are equivalent here.
