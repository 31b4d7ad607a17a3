package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gateway is a payment processor configuration row
type Gateway struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Token     string    `db:"token" json:"-"` // Processor credential, never exposed
	Priority  int       `db:"priority" json:"priority"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const sqlGetGatewayByID = `
	SELECT id, name, token, priority, active, created_at, updated_at
	FROM gateways
	WHERE id = $1;
`

// GetGatewayByID retrieves a gateway by ID
func (s *Store) GetGatewayByID(ctx context.Context, gatewayID uuid.UUID) (Gateway, error) {
	var gateway Gateway
	err := s.db.GetContext(ctx, &gateway, sqlGetGatewayByID, gatewayID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Gateway{}, ErrNotFound
		}
		return Gateway{}, fmt.Errorf("failed to get gateway: %w", err)
	}
	return gateway, nil
}

const sqlGetDefaultGateway = `
	SELECT id, name, token, priority, active, created_at, updated_at
	FROM gateways
	WHERE active = true
	ORDER BY priority DESC, created_at ASC
	LIMIT 1;
`

// GetDefaultGateway returns the highest-priority active gateway. ErrNotFound
// here means the install has no usable processor at all, which callers treat
// as an operator configuration error.
func (s *Store) GetDefaultGateway(ctx context.Context) (Gateway, error) {
	var gateway Gateway
	err := s.db.GetContext(ctx, &gateway, sqlGetDefaultGateway)
	if err != nil {
		if err == sql.ErrNoRows {
			return Gateway{}, ErrNotFound
		}
		return Gateway{}, fmt.Errorf("failed to get default gateway: %w", err)
	}
	return gateway, nil
}
