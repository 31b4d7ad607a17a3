// Package gateway defines the payment processor port the checkout workflow
// charges against, plus its production and simulated implementations. The
// orchestrator only ever sees the Port interface; which implementation is
// live gets decided once at bootstrap.
package gateway

import "context"

// Mode selects between a pre-authorization and an immediate capture.
type Mode string

const (
	ModeAuthorize Mode = "authorize"
	ModePurchase  Mode = "purchase"
)

// ChargeRequest is the processor-agnostic charge payload.
type ChargeRequest struct {
	AmountCents        int64
	Currency           string
	PaymentMethodToken string
	OrderRef           string
	Description        string
	Email              string
	IP                 string
	RetainOnSuccess    bool
}

// Transaction is the processor's view of one attempt.
type Transaction struct {
	Token        string
	Succeeded    bool
	Message      string
	ResponseCode string
	AVSCode      string
	CVVCode      string
}

// ChargeResult is returned whenever the processor could be reached and gave
// a business answer, approved or declined. Transport and credential
// failures surface as the error return of Charge instead.
type ChargeResult struct {
	Approved    bool
	Transaction Transaction
}

// Port is the abstract capability the orchestrator charges against.
type Port interface {
	Charge(ctx context.Context, mode Mode, gatewayToken string, req ChargeRequest) (ChargeResult, error)
}
