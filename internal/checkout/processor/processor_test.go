package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"commerce-server/internal/email"
	"commerce-server/internal/gateway"
	"commerce-server/internal/idempotency"
	"commerce-server/internal/observability"
	"commerce-server/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	customer store.Customer
	campaign store.Campaign
	offer    store.Offer
	product  store.Product
	gateway  store.Gateway

	customerErr       error
	gatewayLookupErr  error
	beginErr          error
	commitErr         error
	createTxnErr      error
	recordDeclineErr  error

	beginCalls   int
	restoreCalls int
	restoredTo   string

	declineCalls  int
	declineReason string
	declineCode   string

	createdTxns  []store.CreateTransactionParams
	commitParams *store.CommitOrderParams
	commitResult store.CommitOrderResult

	transactions []store.Transaction
}

func newFakeStore() *fakeStore {
	customerID := uuid.New()
	campaignID := uuid.New()
	offerID := uuid.New()
	productID := uuid.New()
	gatewayID := uuid.New()

	orderID := uuid.New()
	f := &fakeStore{
		customer: store.Customer{
			ID:               customerID,
			Email:            "jane@example.com",
			Status:           store.CustomerStatusPartial,
			SourceCampaignID: campaignID,
			SourceOfferID:    offerID,
			ShipFirstName:    "Jane",
			ShipLastName:     "Doe",
			ShipAddress1:     "1 Main St",
			ShipCity:         "Austin",
			ShipState:        "TX",
			ShipPostalCode:   "78701",
			ShipCountry:      "US",
			BillSameAsShip:   true,
		},
		campaign: store.Campaign{ID: campaignID, Name: "Spring Launch", Currency: "USD"},
		offer:    store.Offer{ID: offerID, CampaignID: campaignID, ProductID: productID, Name: "Starter Kit", QtyPerOrder: 1},
		product: store.Product{
			ID:           productID,
			Name:         "Starter Kit",
			SKU:          "KIT-001",
			Price:        decimal.RequireFromString("29.99"),
			ShippingCost: decimal.RequireFromString("5.00"),
		},
		gateway: store.Gateway{ID: gatewayID, Name: "primary", Token: "sk_test_token", Priority: 10, Active: true},
	}
	f.commitResult = store.CommitOrderResult{
		Order: store.Order{
			ID:          orderID,
			OrderNumber: "ORD-00001001",
			DisplayID:   1001,
			CustomerID:  customerID,
			Total:       decimal.RequireFromString("34.99"),
		},
	}
	return f
}

func (f *fakeStore) GetCustomerByID(ctx context.Context, customerID uuid.UUID) (store.Customer, error) {
	if f.customerErr != nil {
		return store.Customer{}, f.customerErr
	}
	return f.customer, nil
}

func (f *fakeStore) GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error) {
	return f.campaign, nil
}

func (f *fakeStore) GetOfferByID(ctx context.Context, offerID uuid.UUID) (store.Offer, error) {
	return f.offer, nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, productID uuid.UUID) (store.Product, error) {
	return f.product, nil
}

func (f *fakeStore) GetGatewayByID(ctx context.Context, gatewayID uuid.UUID) (store.Gateway, error) {
	if f.gatewayLookupErr != nil {
		return store.Gateway{}, f.gatewayLookupErr
	}
	return f.gateway, nil
}

func (f *fakeStore) GetDefaultGateway(ctx context.Context) (store.Gateway, error) {
	if f.gatewayLookupErr != nil {
		return store.Gateway{}, f.gatewayLookupErr
	}
	return f.gateway, nil
}

func (f *fakeStore) BeginCheckout(ctx context.Context, customerID uuid.UUID, expectedStatus string) error {
	f.beginCalls++
	return f.beginErr
}

func (f *fakeStore) RestoreCheckoutStatus(ctx context.Context, customerID uuid.UUID, status string) error {
	f.restoreCalls++
	f.restoredTo = status
	return nil
}

func (f *fakeStore) RecordDecline(ctx context.Context, customerID uuid.UUID, reason, code string) (int, error) {
	if f.recordDeclineErr != nil {
		return 0, f.recordDeclineErr
	}
	f.declineCalls++
	f.declineReason = reason
	f.declineCode = code
	f.customer.DeclineCount++
	return f.customer.DeclineCount, nil
}

func (f *fakeStore) CreateTransaction(ctx context.Context, params store.CreateTransactionParams) (store.Transaction, error) {
	if f.createTxnErr != nil {
		return store.Transaction{}, f.createTxnErr
	}
	f.createdTxns = append(f.createdTxns, params)
	return store.Transaction{ID: uuid.New(), CustomerID: params.CustomerID, Status: params.Status}, nil
}

func (f *fakeStore) CommitOrder(ctx context.Context, params store.CommitOrderParams) (store.CommitOrderResult, error) {
	if f.commitErr != nil {
		return store.CommitOrderResult{}, f.commitErr
	}
	f.commitParams = &params
	return f.commitResult, nil
}

func (f *fakeStore) ListTransactionsByCustomer(ctx context.Context, customerID uuid.UUID) ([]store.Transaction, error) {
	return f.transactions, nil
}

type fakeGateway struct {
	calls     int
	lastMode  gateway.Mode
	lastToken string
	lastReq   gateway.ChargeRequest
	result    gateway.ChargeResult
	err       error
}

func approvedResult() gateway.ChargeResult {
	return gateway.ChargeResult{
		Approved: true,
		Transaction: gateway.Transaction{
			Token:        "txn_abc123",
			Succeeded:    true,
			Message:      "Approved",
			ResponseCode: "100",
			AVSCode:      "Y",
			CVVCode:      "M",
		},
	}
}

func (g *fakeGateway) Charge(ctx context.Context, mode gateway.Mode, gatewayToken string, req gateway.ChargeRequest) (gateway.ChargeResult, error) {
	g.calls++
	g.lastMode = mode
	g.lastToken = gatewayToken
	g.lastReq = req
	if g.err != nil {
		return gateway.ChargeResult{}, g.err
	}
	return g.result, nil
}

func newTestProcessor(t *testing.T, st CheckoutStore, gw gateway.Port) CheckoutProcessor {
	t.Helper()
	logger := observability.NewLogger()
	lock := idempotency.NewCheckoutLock(nil, logger)
	confirmation := email.NewConfirmationService(nil, "", logger)
	return New(st, gw, lock, confirmation, logger)
}

func cardRequest(customerID uuid.UUID, token string) ChargeRequest {
	return ChargeRequest{
		CustomerID:   customerID,
		PaymentToken: token,
		Card:         CardDetails{Type: "visa", Last4: token[len(token)-4:], ExpMonth: 12, ExpYear: 2028},
	}
}

func TestPayApproved(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_4242424242421111"))
	if err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}

	if outcome.Status != OutcomePaid {
		t.Errorf("expected status %q, got %q", OutcomePaid, outcome.Status)
	}
	if outcome.OrderID == nil || *outcome.OrderID != st.commitResult.Order.ID {
		t.Errorf("expected order id %s, got %v", st.commitResult.Order.ID, outcome.OrderID)
	}
	if outcome.OrderNumber != "ORD-00001001" {
		t.Errorf("expected order number ORD-00001001, got %q", outcome.OrderNumber)
	}

	if gw.calls != 1 {
		t.Fatalf("expected 1 gateway call, got %d", gw.calls)
	}
	if gw.lastMode != gateway.ModePurchase {
		t.Errorf("expected purchase mode, got %q", gw.lastMode)
	}
	if gw.lastToken != st.gateway.Token {
		t.Errorf("expected gateway credential to be passed through")
	}
	if gw.lastReq.AmountCents != 3499 {
		t.Errorf("expected 3499 cents (29.99 + 5.00 shipping), got %d", gw.lastReq.AmountCents)
	}
	if gw.lastReq.Currency != "USD" {
		t.Errorf("expected USD, got %q", gw.lastReq.Currency)
	}
	if !gw.lastReq.RetainOnSuccess {
		t.Errorf("expected token retention to be requested")
	}

	if st.commitParams == nil {
		t.Fatal("expected order commit")
	}
	if !st.commitParams.Total.Equal(decimal.RequireFromString("34.99")) {
		t.Errorf("expected commit total 34.99, got %s", st.commitParams.Total)
	}
	if st.commitParams.PaymentStatus != store.OrderPaymentStatusPaid {
		t.Errorf("expected payment status paid, got %q", st.commitParams.PaymentStatus)
	}
	if st.commitParams.RetryAttempt != nil {
		t.Errorf("initial attempt should not carry a retry attempt number")
	}
	if st.declineCalls != 0 {
		t.Errorf("approved charge should not record a decline")
	}
	if st.restoreCalls != 0 {
		t.Errorf("approved charge should not restore status")
	}
}

func TestPayMultiUnitOfferItemPricing(t *testing.T) {
	st := newFakeStore()
	st.offer.QtyPerOrder = 2
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}
	if outcome.Status != OutcomePaid {
		t.Fatalf("expected paid outcome, got %q", outcome.Status)
	}

	if st.commitParams.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", st.commitParams.Quantity)
	}
	// The line prices the whole offer: unit price times quantity must land
	// back on the order subtotal, never multiply past it.
	lineTotal := st.commitParams.UnitPrice.Mul(decimal.NewFromInt(int64(st.commitParams.Quantity)))
	if !lineTotal.Equal(st.commitParams.Subtotal) {
		t.Errorf("item total %s != subtotal %s (unit_price=%s quantity=%d)",
			lineTotal, st.commitParams.Subtotal, st.commitParams.UnitPrice, st.commitParams.Quantity)
	}
	if !st.commitParams.Subtotal.Equal(decimal.RequireFromString("29.99")) {
		t.Errorf("expected subtotal 29.99, got %s", st.commitParams.Subtotal)
	}
}

func TestPayZeroQuantityOfferDefaultsToOne(t *testing.T) {
	st := newFakeStore()
	st.offer.QtyPerOrder = 0
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	if _, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111")); err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}

	if st.commitParams.Quantity != 1 {
		t.Errorf("expected quantity clamped to 1, got %d", st.commitParams.Quantity)
	}
	if !st.commitParams.UnitPrice.Equal(st.commitParams.Subtotal) {
		t.Errorf("expected unit price %s to equal subtotal %s", st.commitParams.UnitPrice, st.commitParams.Subtotal)
	}
}

func TestPayPreauthCampaign(t *testing.T) {
	st := newFakeStore()
	st.campaign.PreauthOnly = true
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if err != nil {
		t.Fatalf("Pay returned error: %v", err)
	}
	if outcome.Status != OutcomePaid {
		t.Fatalf("expected paid outcome, got %q", outcome.Status)
	}

	if gw.lastMode != gateway.ModeAuthorize {
		t.Errorf("preauth campaign should authorize, got %q", gw.lastMode)
	}
	if st.commitParams.PaymentStatus != store.OrderPaymentStatusAuthorized {
		t.Errorf("expected payment status authorized, got %q", st.commitParams.PaymentStatus)
	}
	if st.commitParams.TransactionType != store.TransactionTypeAuthorize {
		t.Errorf("expected authorize transaction type, got %q", st.commitParams.TransactionType)
	}
}

func TestPayDeclined(t *testing.T) {
	st := newFakeStore()
	gw := gateway.NewDemoGateway(observability.NewLogger())
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_0002"))
	if err != nil {
		t.Fatalf("decline should be an outcome, not an error: %v", err)
	}

	if outcome.Status != OutcomeDeclined {
		t.Fatalf("expected declined outcome, got %q", outcome.Status)
	}
	if outcome.DeclineCode != gateway.DemoResponseDeclined {
		t.Errorf("expected code %q, got %q", gateway.DemoResponseDeclined, outcome.DeclineCode)
	}
	if outcome.DeclineReason != "Card declined" {
		t.Errorf("expected reason %q, got %q", "Card declined", outcome.DeclineReason)
	}
	if outcome.DeclineCount != 1 {
		t.Errorf("expected decline count 1, got %d", outcome.DeclineCount)
	}

	if len(st.createdTxns) != 1 {
		t.Fatalf("expected one declined transaction record, got %d", len(st.createdTxns))
	}
	txn := st.createdTxns[0]
	if txn.Status != store.TransactionStatusDeclined {
		t.Errorf("expected declined transaction status, got %q", txn.Status)
	}
	if txn.ResponseCode == nil || *txn.ResponseCode != gateway.DemoResponseDeclined {
		t.Errorf("expected response code on transaction record")
	}
	if st.commitParams != nil {
		t.Errorf("declined charge must not commit an order")
	}
}

func TestPayGatewayTransportFailure(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{err: errors.New("connection refused")}
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if err != nil {
		t.Fatalf("transport failure should surface as a decline outcome: %v", err)
	}

	if outcome.Status != OutcomeDeclined {
		t.Fatalf("expected declined outcome, got %q", outcome.Status)
	}
	if outcome.DeclineCode != "GATEWAY_ERROR" {
		t.Errorf("expected GATEWAY_ERROR code, got %q", outcome.DeclineCode)
	}
	if len(st.createdTxns) != 1 {
		t.Fatalf("expected one transaction record, got %d", len(st.createdTxns))
	}
	if st.createdTxns[0].ErrorDetail == nil || *st.createdTxns[0].ErrorDetail != "connection refused" {
		t.Errorf("expected error detail on transaction record")
	}
	// The audit row carries the same code written to the customer, so
	// transport failures can be told apart from processor declines.
	if st.createdTxns[0].ResponseCode == nil || *st.createdTxns[0].ResponseCode != "GATEWAY_ERROR" {
		t.Errorf("expected GATEWAY_ERROR response code on transaction record, got %v", st.createdTxns[0].ResponseCode)
	}
}

func TestPayAlreadyConverted(t *testing.T) {
	st := newFakeStore()
	st.customer.Status = store.CustomerStatusCustomer
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	_, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrAlreadyConverted) {
		t.Fatalf("expected ErrAlreadyConverted, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("converted customer must never reach the gateway")
	}
	if st.beginCalls != 0 {
		t.Errorf("converted customer must not enter processing")
	}
}

func TestPayStepsIncomplete(t *testing.T) {
	for _, status := range []string{store.CustomerStatusProspect, store.CustomerStatusLead, store.CustomerStatusProcessing} {
		st := newFakeStore()
		st.customer.Status = status
		gw := &fakeGateway{result: approvedResult()}
		p := newTestProcessor(t, st, gw)

		_, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
		if !errors.Is(err, ErrStepsIncomplete) {
			t.Errorf("status %q: expected ErrStepsIncomplete, got %v", status, err)
		}
		if gw.calls != 0 {
			t.Errorf("status %q: must not reach the gateway", status)
		}
	}
}

func TestPayFromDeclinedStatus(t *testing.T) {
	st := newFakeStore()
	st.customer.Status = store.CustomerStatusDeclined
	st.customer.DeclineCount = 2
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if err != nil {
		t.Fatalf("declined customers may pay again through the initial path: %v", err)
	}
	if outcome.Status != OutcomePaid {
		t.Fatalf("expected paid outcome, got %q", outcome.Status)
	}
}

func TestPayCustomerNotFound(t *testing.T) {
	st := newFakeStore()
	st.customerErr = store.ErrNotFound
	p := newTestProcessor(t, st, &fakeGateway{})

	_, err := p.Pay(context.Background(), cardRequest(uuid.New(), "tok_1111"))
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestPayInvalidRequest(t *testing.T) {
	st := newFakeStore()
	p := newTestProcessor(t, st, &fakeGateway{})

	if _, err := p.Pay(context.Background(), ChargeRequest{PaymentToken: "tok_1111"}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("missing customer id: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := p.Pay(context.Background(), ChargeRequest{CustomerID: uuid.New()}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("missing payment token: expected ErrInvalidRequest, got %v", err)
	}
}

func TestPayConcurrentAttemptLosesRace(t *testing.T) {
	st := newFakeStore()
	st.beginErr = store.ErrStatusConflict
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	_, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("losing the status race must not reach the gateway")
	}
}

func TestPayNoActiveGateway(t *testing.T) {
	st := newFakeStore()
	st.gatewayLookupErr = store.ErrNotFound
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	_, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrNoActiveGateway) {
		t.Fatalf("expected ErrNoActiveGateway, got %v", err)
	}
	if st.restoreCalls != 1 {
		t.Fatalf("aborting before the gateway must restore the customer status")
	}
	if st.restoredTo != store.CustomerStatusPartial {
		t.Errorf("expected restore to partial, got %q", st.restoredTo)
	}
}

func TestPayCommitFailureAfterApproval(t *testing.T) {
	st := newFakeStore()
	st.commitErr = errors.New("deadlock detected")
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	_, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrCommitFailed) {
		t.Fatalf("expected ErrCommitFailed, got %v", err)
	}
	// The customer stays in processing so a second attempt cannot charge
	// the approved card again.
	if st.restoreCalls != 0 {
		t.Errorf("commit failure must not restore the customer to a chargeable status")
	}
	if st.declineCalls != 0 {
		t.Errorf("commit failure is not a decline")
	}
}

func TestRetryApproved(t *testing.T) {
	st := newFakeStore()
	st.customer.Status = store.CustomerStatusDeclined
	st.customer.DeclineCount = 2
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	outcome, err := p.Retry(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if outcome.Status != OutcomePaid {
		t.Fatalf("expected paid outcome, got %q", outcome.Status)
	}

	wantRef := fmt.Sprintf("%s-3", st.customer.ID)
	if gw.lastReq.OrderRef != wantRef {
		t.Errorf("expected order ref %q, got %q", wantRef, gw.lastReq.OrderRef)
	}
	if st.commitParams.RetryAttempt == nil || *st.commitParams.RetryAttempt != 3 {
		t.Errorf("expected retry attempt 3 on commit, got %v", st.commitParams.RetryAttempt)
	}
	if st.commitParams.OrderMetadata == nil || st.commitParams.OrderMetadata["retry_conversion"] != true {
		t.Errorf("expected retry_conversion metadata on the order")
	}
}

func TestRetryRequiresDeclinedStatus(t *testing.T) {
	st := newFakeStore()
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	_, err := p.Retry(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrRetryUnavailable) {
		t.Fatalf("expected ErrRetryUnavailable for partial customer, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("must not reach the gateway")
	}
}

func TestRetryLimitExceeded(t *testing.T) {
	st := newFakeStore()
	st.customer.Status = store.CustomerStatusDeclined
	st.customer.DeclineCount = MaxCheckoutRetries
	gw := &fakeGateway{result: approvedResult()}
	p := newTestProcessor(t, st, gw)

	_, err := p.Retry(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrRetryLimitExceeded) {
		t.Fatalf("expected ErrRetryLimitExceeded, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("exhausted customers must never reach the gateway")
	}
	if st.beginCalls != 0 {
		t.Errorf("exhausted customers must not enter processing")
	}
}

func TestRetryOnConvertedCustomer(t *testing.T) {
	st := newFakeStore()
	st.customer.Status = store.CustomerStatusCustomer
	p := newTestProcessor(t, st, &fakeGateway{})

	_, err := p.Retry(context.Background(), cardRequest(st.customer.ID, "tok_1111"))
	if !errors.Is(err, ErrAlreadyConverted) {
		t.Fatalf("expected ErrAlreadyConverted, got %v", err)
	}
}

func TestRecordDeclineFailureRestoresStatus(t *testing.T) {
	st := newFakeStore()
	st.recordDeclineErr = errors.New("connection reset")
	gw := gateway.NewDemoGateway(observability.NewLogger())
	p := newTestProcessor(t, st, gw)

	_, err := p.Pay(context.Background(), cardRequest(st.customer.ID, "tok_0002"))
	if err == nil {
		t.Fatal("expected error when decline bookkeeping fails")
	}
	if st.restoreCalls != 1 {
		t.Errorf("failed bookkeeping must hand the processing permit back")
	}
}

func TestListAttempts(t *testing.T) {
	st := newFakeStore()
	st.transactions = []store.Transaction{
		{ID: uuid.New(), CustomerID: st.customer.ID, Status: store.TransactionStatusDeclined},
		{ID: uuid.New(), CustomerID: st.customer.ID, Status: store.TransactionStatusSucceeded},
	}
	p := newTestProcessor(t, st, &fakeGateway{})

	attempts, err := p.ListAttempts(context.Background(), st.customer.ID)
	if err != nil {
		t.Fatalf("ListAttempts returned error: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
}

func TestListAttemptsEmpty(t *testing.T) {
	st := newFakeStore()
	p := newTestProcessor(t, st, &fakeGateway{})

	attempts, err := p.ListAttempts(context.Background(), st.customer.ID)
	if err != nil {
		t.Fatalf("ListAttempts returned error: %v", err)
	}
	if attempts == nil {
		t.Fatal("expected an empty slice, not nil")
	}
	if len(attempts) != 0 {
		t.Fatalf("expected no attempts, got %d", len(attempts))
	}
}

func TestListAttemptsCustomerNotFound(t *testing.T) {
	st := newFakeStore()
	st.customerErr = store.ErrNotFound
	p := newTestProcessor(t, st, &fakeGateway{})

	_, err := p.ListAttempts(context.Background(), uuid.New())
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
