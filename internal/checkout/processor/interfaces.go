package processor

import (
	"context"

	"commerce-server/internal/store"

	"github.com/google/uuid"
)

// CheckoutStore defines the database operations required by CheckoutProcessor
type CheckoutStore interface {
	GetCustomerByID(ctx context.Context, customerID uuid.UUID) (store.Customer, error)
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error)
	GetOfferByID(ctx context.Context, offerID uuid.UUID) (store.Offer, error)
	GetProductByID(ctx context.Context, productID uuid.UUID) (store.Product, error)
	GetGatewayByID(ctx context.Context, gatewayID uuid.UUID) (store.Gateway, error)
	GetDefaultGateway(ctx context.Context) (store.Gateway, error)

	BeginCheckout(ctx context.Context, customerID uuid.UUID, expectedStatus string) error
	RestoreCheckoutStatus(ctx context.Context, customerID uuid.UUID, status string) error
	RecordDecline(ctx context.Context, customerID uuid.UUID, reason, code string) (int, error)

	CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (store.Transaction, error)
	CommitOrder(ctx context.Context, params store.CommitOrderParams) (store.CommitOrderResult, error)
	ListTransactionsByCustomer(ctx context.Context, customerID uuid.UUID) ([]store.Transaction, error)
}
