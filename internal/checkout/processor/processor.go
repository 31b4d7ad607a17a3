package processor

import (
	"context"
	"errors"
	"fmt"

	"commerce-server/internal/email"
	"commerce-server/internal/gateway"
	"commerce-server/internal/idempotency"
	"commerce-server/internal/observability"
	"commerce-server/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRequest     = errors.New("customer id and payment token are required")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrAlreadyConverted   = errors.New("customer already converted")
	ErrStepsIncomplete    = errors.New("checkout steps not completed")
	ErrRetryUnavailable   = errors.New("no declined checkout to retry")
	ErrRetryLimitExceeded = errors.New("maximum retry attempts reached")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNoActiveGateway    = errors.New("no active payment gateway configured")
	ErrCommitFailed       = errors.New("failed to record order after approved payment")
)

// MaxCheckoutRetries bounds how many declined attempts a customer may retry.
const MaxCheckoutRetries = 5

// declineCodeGatewayError tags declines caused by the gateway call itself
// failing (network, credentials) rather than the processor saying no.
const declineCodeGatewayError = "GATEWAY_ERROR"

// Outcome status values
const (
	OutcomePaid     = "paid"
	OutcomeDeclined = "declined"
)

// AttemptKind distinguishes a first checkout attempt from a customer-facing
// retry. The two share one code path; only the precondition table differs.
type AttemptKind string

const (
	AttemptInitial AttemptKind = "initial"
	AttemptRetry   AttemptKind = "retry"
)

// CardDetails is the display metadata of a tokenized card.
type CardDetails struct {
	Type     string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// ChargeRequest is one checkout payment attempt.
type ChargeRequest struct {
	CustomerID     uuid.UUID
	PaymentToken   string
	Card           CardDetails
	SuppliedTotals *Totals
}

// Outcome is the business result of an attempt. Declines are outcomes, not
// errors: callers only get an error for validation, precondition, or
// infrastructure failures.
type Outcome struct {
	Status        string
	CustomerID    uuid.UUID
	OrderID       *uuid.UUID
	OrderNumber   string
	DeclineReason string
	DeclineCode   string
	DeclineCount  int
}

// CheckoutProcessor drives the payment funnel state machine: preconditions,
// gateway charge, and the order commit or decline bookkeeping that follows.
type CheckoutProcessor struct {
	store        CheckoutStore
	gateway      gateway.Port
	lock         *idempotency.CheckoutLock
	confirmation *email.ConfirmationService
	logger       *observability.Logger
}

func New(checkoutStore CheckoutStore, gatewayPort gateway.Port, lock *idempotency.CheckoutLock,
	confirmation *email.ConfirmationService, logger *observability.Logger) CheckoutProcessor {
	return CheckoutProcessor{
		store:        checkoutStore,
		gateway:      gatewayPort,
		lock:         lock,
		confirmation: confirmation,
		logger:       logger,
	}
}

// Pay runs a first checkout attempt for a customer in the partial or
// declined funnel state.
func (p *CheckoutProcessor) Pay(ctx context.Context, req ChargeRequest) (Outcome, error) {
	return p.charge(ctx, AttemptInitial, req)
}

// Retry re-runs checkout for a declined customer, bounded by
// MaxCheckoutRetries. Once the bound is hit no gateway call is made.
func (p *CheckoutProcessor) Retry(ctx context.Context, req ChargeRequest) (Outcome, error) {
	return p.charge(ctx, AttemptRetry, req)
}

func (p *CheckoutProcessor) charge(ctx context.Context, kind AttemptKind, req ChargeRequest) (Outcome, error) {
	if req.CustomerID == uuid.Nil || req.PaymentToken == "" {
		return Outcome{}, ErrInvalidRequest
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "customer_id", Value: req.CustomerID.String()},
		observability.Field{Key: "attempt_kind", Value: string(kind)},
	)

	customer, err := p.store.GetCustomerByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Outcome{}, ErrCustomerNotFound
		}
		p.logger.Error(ctx, "failed to load customer", err)
		return Outcome{}, fmt.Errorf("failed to load customer: %w", err)
	}

	// Precondition table. Once a customer converts, this workflow is closed
	// to them for good.
	if customer.Status == store.CustomerStatusCustomer {
		return Outcome{}, ErrAlreadyConverted
	}
	switch kind {
	case AttemptInitial:
		if customer.Status != store.CustomerStatusPartial && customer.Status != store.CustomerStatusDeclined {
			return Outcome{}, ErrStepsIncomplete
		}
	case AttemptRetry:
		if customer.Status != store.CustomerStatusDeclined {
			return Outcome{}, ErrRetryUnavailable
		}
		if customer.DeclineCount >= MaxCheckoutRetries {
			return Outcome{}, ErrRetryLimitExceeded
		}
	}

	if !p.lock.Acquire(ctx, customer.ID) {
		return Outcome{}, ErrCheckoutInProgress
	}
	defer p.lock.Release(ctx, customer.ID)

	// The status CAS is the authoritative double-submit guard: only one
	// request can move the row into processing.
	if err := p.store.BeginCheckout(ctx, customer.ID, customer.Status); err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return Outcome{}, ErrCheckoutInProgress
		}
		p.logger.Error(ctx, "failed to begin checkout", err)
		return Outcome{}, fmt.Errorf("failed to begin checkout: %w", err)
	}

	campaign, offer, product, gw, err := p.resolveContext(ctx, customer)
	if err != nil {
		// Nothing was charged and nothing written; hand the permit back.
		p.restore(ctx, customer)
		return Outcome{}, err
	}

	totals := ResolveTotals(offer, product, req.SuppliedTotals)
	currency := campaign.Currency
	if currency == "" {
		currency = "USD"
	}

	mode := gateway.ModePurchase
	txnType := store.TransactionTypePurchase
	paymentStatus := store.OrderPaymentStatusPaid
	if campaign.PreauthOnly {
		mode = gateway.ModeAuthorize
		txnType = store.TransactionTypeAuthorize
		paymentStatus = store.OrderPaymentStatusAuthorized
	}

	var retryAttempt *int
	if kind == AttemptRetry {
		attempt := customer.DeclineCount + 1
		retryAttempt = &attempt
	}

	// (customer, attempt) keys the charge so a duplicate submit of the same
	// attempt is recognizable at the processor.
	orderRef := fmt.Sprintf("%s-%d", customer.ID, customer.DeclineCount+1)

	var ip string
	if customer.IPAddress != nil {
		ip = *customer.IPAddress
	}

	result, chargeErr := p.gateway.Charge(ctx, mode, gw.Token, gateway.ChargeRequest{
		AmountCents:        totals.Total.Shift(2).Round(0).IntPart(),
		Currency:           currency,
		PaymentMethodToken: req.PaymentToken,
		OrderRef:           orderRef,
		Description:        offer.Name,
		Email:              customer.Email,
		IP:                 ip,
		RetainOnSuccess:    true,
	})
	if chargeErr != nil {
		p.logger.Error(ctx, "gateway call failed", chargeErr)
		errDetail := chargeErr.Error()
		return p.recordDeclined(ctx, customer, store.CreateTransactionParams{
			CustomerID:   customer.ID,
			GatewayID:    gw.ID,
			Type:         txnType,
			Status:       store.TransactionStatusDeclined,
			Amount:       totals.Total,
			Currency:     currency,
			ResponseCode: strPtrIfNotEmpty(declineCodeGatewayError),
			ErrorDetail:  &errDetail,
			RetryAttempt: retryAttempt,
		}, "Payment could not be processed", declineCodeGatewayError)
	}

	if !result.Approved {
		txn := result.Transaction
		return p.recordDeclined(ctx, customer, store.CreateTransactionParams{
			CustomerID:      customer.ID,
			GatewayID:       gw.ID,
			Type:            txnType,
			Status:          store.TransactionStatusDeclined,
			Amount:          totals.Total,
			Currency:        currency,
			ResponseCode:    strPtrIfNotEmpty(txn.ResponseCode),
			ResponseMessage: strPtrIfNotEmpty(txn.Message),
			AVSCode:         strPtrIfNotEmpty(txn.AVSCode),
			CVVCode:         strPtrIfNotEmpty(txn.CVVCode),
			RetryAttempt:    retryAttempt,
		}, txn.Message, txn.ResponseCode)
	}

	var orderMetadata store.JSONB
	if kind == AttemptRetry {
		orderMetadata = store.JSONB{"retry_conversion": true}
	}

	// The subtotal prices the whole line, so the per-unit price divides it
	// back out; item total recomputed from unit price and quantity must land
	// on the subtotal again.
	quantity := offer.QtyPerOrder
	if quantity < 1 {
		quantity = 1
	}
	unitPrice := totals.Subtotal.Div(decimal.NewFromInt(int64(quantity)))

	commit, err := p.store.CommitOrder(ctx, store.CommitOrderParams{
		Customer:   customer,
		CampaignID: campaign.ID,
		OfferID:    offer.ID,
		GatewayID:  gw.ID,

		ProductID: product.ID,
		ItemName:  offer.Name,
		ItemSKU:   product.SKU,
		Quantity:  quantity,
		UnitPrice: unitPrice,

		Subtotal: totals.Subtotal,
		Discount: totals.Discount,
		Shipping: totals.Shipping,
		Tax:      totals.Tax,
		Total:    totals.Total,
		Currency: currency,

		PaymentStatus:   paymentStatus,
		TransactionType: txnType,

		PaymentToken: req.PaymentToken,
		CardType:     req.Card.Type,
		CardLast4:    req.Card.Last4,
		CardExpMonth: req.Card.ExpMonth,
		CardExpYear:  req.Card.ExpYear,

		GatewayTxnToken: strPtrIfNotEmpty(result.Transaction.Token),
		ResponseCode:    strPtrIfNotEmpty(result.Transaction.ResponseCode),
		ResponseMessage: strPtrIfNotEmpty(result.Transaction.Message),
		AVSCode:         strPtrIfNotEmpty(result.Transaction.AVSCode),
		CVVCode:         strPtrIfNotEmpty(result.Transaction.CVVCode),

		RetryAttempt:  retryAttempt,
		OrderMetadata: orderMetadata,
	})
	if err != nil {
		// Money moved but no order exists. The customer is deliberately
		// left in processing so another attempt cannot charge them again;
		// this state is an explicit operator reconciliation signal.
		p.logger.Error(ctx, "order commit failed after approved payment", err)
		return Outcome{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "order_id", Value: commit.Order.ID.String()},
		observability.Field{Key: "order_number", Value: commit.Order.OrderNumber},
	)
	p.logger.Info(ctx, "checkout paid")

	p.confirmation.SendOrderConfirmation(ctx, customer.Email, commit.Order.OrderNumber, commit.Order.Total, currency)

	orderID := commit.Order.ID
	return Outcome{
		Status:      OutcomePaid,
		CustomerID:  customer.ID,
		OrderID:     &orderID,
		OrderNumber: commit.Order.OrderNumber,
	}, nil
}

// resolveContext loads the pricing/policy context for the attempt. A
// missing gateway is the one expected failure; everything else indicates a
// broken install.
func (p *CheckoutProcessor) resolveContext(ctx context.Context, customer store.Customer) (store.Campaign, store.Offer, store.Product, store.Gateway, error) {
	campaign, err := p.store.GetCampaignByID(ctx, customer.SourceCampaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to load campaign", err)
		return store.Campaign{}, store.Offer{}, store.Product{}, store.Gateway{}, fmt.Errorf("failed to load campaign: %w", err)
	}

	offer, err := p.store.GetOfferByID(ctx, customer.SourceOfferID)
	if err != nil {
		p.logger.Error(ctx, "failed to load offer", err)
		return store.Campaign{}, store.Offer{}, store.Product{}, store.Gateway{}, fmt.Errorf("failed to load offer: %w", err)
	}

	product, err := p.store.GetProductByID(ctx, offer.ProductID)
	if err != nil {
		p.logger.Error(ctx, "failed to load product", err)
		return store.Campaign{}, store.Offer{}, store.Product{}, store.Gateway{}, fmt.Errorf("failed to load product: %w", err)
	}

	var gw store.Gateway
	if offer.GatewayID != nil {
		gw, err = p.store.GetGatewayByID(ctx, *offer.GatewayID)
	} else {
		gw, err = p.store.GetDefaultGateway(ctx)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Error(ctx, "no active payment gateway configured", err)
			return store.Campaign{}, store.Offer{}, store.Product{}, store.Gateway{}, ErrNoActiveGateway
		}
		p.logger.Error(ctx, "failed to load gateway", err)
		return store.Campaign{}, store.Offer{}, store.Product{}, store.Gateway{}, fmt.Errorf("failed to load gateway: %w", err)
	}

	return campaign, offer, product, gw, nil
}

// recordDeclined writes the attempt's transaction row and the customer's
// decline bookkeeping, then reports the decline as a normal outcome.
func (p *CheckoutProcessor) recordDeclined(ctx context.Context, customer store.Customer,
	txnParams store.CreateTransactionParams, reason, code string) (Outcome, error) {
	if _, err := p.store.CreateTransaction(ctx, txnParams); err != nil {
		p.logger.Error(ctx, "failed to record declined transaction", err)
		p.restore(ctx, customer)
		return Outcome{}, fmt.Errorf("failed to record declined transaction: %w", err)
	}

	declineCount, err := p.store.RecordDecline(ctx, customer.ID, reason, code)
	if err != nil {
		p.logger.Error(ctx, "failed to record decline", err)
		p.restore(ctx, customer)
		return Outcome{}, fmt.Errorf("failed to record decline: %w", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "decline_code", Value: code},
		observability.Field{Key: "decline_count", Value: declineCount},
	)
	p.logger.Info(ctx, "checkout declined")

	return Outcome{
		Status:        OutcomeDeclined,
		CustomerID:    customer.ID,
		DeclineReason: reason,
		DeclineCode:   code,
		DeclineCount:  declineCount,
	}, nil
}

// restore hands the processing permit back after an attempt aborted without
// a gateway outcome.
func (p *CheckoutProcessor) restore(ctx context.Context, customer store.Customer) {
	if err := p.store.RestoreCheckoutStatus(ctx, customer.ID, customer.Status); err != nil {
		p.logger.Error(ctx, "failed to restore customer status", err)
	}
}

// ListAttempts returns every gateway attempt recorded for a customer,
// newest first.
func (p *CheckoutProcessor) ListAttempts(ctx context.Context, customerID uuid.UUID) ([]store.Transaction, error) {
	if _, err := p.store.GetCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	transactions, err := p.store.ListTransactionsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	// A customer with no attempts yields an empty list, not JSON null.
	if transactions == nil {
		transactions = []store.Transaction{}
	}
	return transactions, nil
}

func strPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
