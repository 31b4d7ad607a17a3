package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Address kind constants
const (
	AddressKindShipping = "shipping"
	AddressKindBilling  = "billing"
)

// Address is a point-in-time copy of the customer's address, created fresh
// on every successful commit.
type Address struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	Kind       string    `db:"kind" json:"kind"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Address1   string    `db:"address1" json:"address1"`
	Address2   *string   `db:"address2" json:"address2,omitempty"`
	City       string    `db:"city" json:"city"`
	State      string    `db:"state" json:"state"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	Country    string    `db:"country" json:"country"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CreateAddressParams represents the parameters used to create an address
type CreateAddressParams struct {
	CustomerID uuid.UUID
	Kind       string
	FirstName  string
	LastName   string
	Address1   string
	Address2   *string
	City       string
	State      string
	PostalCode string
	Country    string
}

const sqlCreateAddress = `
	INSERT INTO addresses (customer_id, kind, first_name, last_name, address1, address2, city, state, postal_code, country)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, customer_id, kind, first_name, last_name, address1, address2, city, state, postal_code, country, created_at;
`

// createAddress inserts an address using the given executor so it can run
// inside the order commit transaction.
func createAddress(ctx context.Context, ext sqlx.ExtContext, params CreateAddressParams) (Address, error) {
	var address Address
	err := sqlx.GetContext(ctx, ext, &address, sqlCreateAddress,
		params.CustomerID,
		params.Kind,
		params.FirstName,
		params.LastName,
		params.Address1,
		params.Address2,
		params.City,
		params.State,
		params.PostalCode,
		params.Country,
	)
	if err != nil {
		return Address{}, fmt.Errorf("failed to create %s address: %w", params.Kind, err)
	}
	return address, nil
}
